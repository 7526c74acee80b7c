// power.go defines the runtime power management of a unit.

package hw

import (
	"context"
)

// RuntimePM is implemented by the device: the callbacks are invoked
// when the unit is powered up or down.
type RuntimePM interface {
	RuntimeSuspend(ctx context.Context) error
	RuntimeResume(ctx context.Context) error
}

// Power keeps the unit powered while references are held. The unit
// starts suspended once runtime power management is enabled.
type Power interface {
	Enable(ctx context.Context, pm RuntimePM) error
	// Disable suspends the unit if it is active.
	Disable(ctx context.Context) error

	// GetSync takes a reference, resuming the unit on the first one.
	GetSync(ctx context.Context) error
	// PutSync drops a reference, suspending the unit on the last one.
	PutSync(ctx context.Context) error
}
