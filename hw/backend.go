// backend.go bundles the platform capabilities of a single unit.

package hw

import (
	"fmt"
)

// Backend is everything a device needs from the platform.
type Backend struct {
	Registers  Registers
	Interrupts InterruptSource
	Memory     Memory
	Clocks     Clocks
	Power      Power
}

// Validate checks that every capability is provided.
func (b Backend) Validate() error {
	switch {
	case b.Registers == nil:
		return fmt.Errorf("registers are not set")
	case b.Interrupts == nil:
		return fmt.Errorf("interrupt source is not set")
	case b.Memory == nil:
		return fmt.Errorf("memory is not set")
	case b.Clocks == nil:
		return fmt.Errorf("clocks are not set")
	case b.Power == nil:
		return fmt.Errorf("power is not set")
	}
	return nil
}
