// registers.go defines the register block of a hardware unit.

package hw

import (
	"context"

	"github.com/xaionaro-go/camif/geometry"
)

// Registers is the register block of a hardware unit.
type Registers interface {
	// Reset performs a software reset; all committed state is lost.
	Reset(ctx context.Context) error

	// ClearIRQ acknowledges the pending interrupt.
	ClearIRQ(ctx context.Context)

	// Commit programs the whole parameter set.
	Commit(ctx context.Context, cfg *Config) error

	// SetAddresses programs the input and output plane addresses.
	SetAddresses(ctx context.Context, in, out geometry.AddressSet) error

	// Start starts the operation configured by the last Commit. The
	// completion is signalled through the InterruptSource.
	Start(ctx context.Context, mode Mode) error

	// Dump returns a human readable snapshot of the registers for
	// diagnostics.
	Dump(ctx context.Context) string
}

// InterruptSource is the interrupt line of a hardware unit.
type InterruptSource interface {
	// SetInterruptHandler installs the handler; nil detaches it. The
	// handler is never invoked concurrently with itself.
	SetInterruptHandler(handler func(ctx context.Context))
}
