// memory.go defines the buffer memory allocator.

package hw

import (
	"context"

	"github.com/xaionaro-go/camif/geometry"
)

// Buffer is a device-visible buffer.
type Buffer interface {
	geometry.Buffer

	// IsCapture is true for buffers the hardware writes into.
	IsCapture() bool
	PlaneSize(plane int) uint32
}

// Memory allocates device-visible buffers.
type Memory interface {
	Alloc(ctx context.Context, capture bool, planeSizes ...uint32) (Buffer, error)
	Free(ctx context.Context, buf Buffer) error

	// SetProtected switches the allocator into (or out of) the protected
	// content mode.
	SetProtected(ctx context.Context, enable bool) error

	// Sync performs cache maintenance on the given plane regions before
	// the hardware writes into them.
	Sync(ctx context.Context, regions geometry.PlaneBuckets) error

	Suspend(ctx context.Context) error
	Resume(ctx context.Context) error
}
