// clock.go defines the clock tree access.

package hw

import (
	"context"
)

const (
	// ClockGate is the name of the clock gating the unit.
	ClockGate = "sclk_fimc"
	// ClockBus is the name of the bus clock of the unit.
	ClockBus = "fimc"
	// DefaultParentClock is the parent the bus clock is re-parented to.
	DefaultParentClock = "sclk_mpll"
)

// Clock is a single clock of the clock tree.
type Clock interface {
	Name() string
	Prepare(ctx context.Context) error
	Unprepare(ctx context.Context)
	Enable(ctx context.Context) error
	Disable(ctx context.Context)
	SetParent(ctx context.Context, parent Clock) error
	SetRate(ctx context.Context, hz uint64) error
	Rate() uint64
}

// Clocks gives access to the clock tree.
type Clocks interface {
	Get(ctx context.Context, name string) (Clock, error)
	Put(ctx context.Context, clk Clock)
}
