// option.go defines functional options for configuring a device.

package device

import (
	"context"
	"time"

	"github.com/xaionaro-go/camif/hw"
)

// DefaultShutdownTimeout bounds the waits for the hardware to drain.
const DefaultShutdownTimeout = 100 * time.Millisecond

// FuncOnControlChange is called after a control of a context is applied.
type FuncOnControlChange func(ctx context.Context, c *Context, id ControlID, value int32)

type config struct {
	UnitID          int
	ShutdownTimeout time.Duration
	ParentClock     string
	BusClockRate    uint64
	OnControlChange FuncOnControlChange
}

var defaultConfig = config{
	ShutdownTimeout: DefaultShutdownTimeout,
	ParentClock:     hw.DefaultParentClock,
}

type Option interface {
	apply(*config)
}

type Options []Option

func (s Options) apply(cfg *config) {
	for _, opt := range s {
		opt.apply(cfg)
	}
}

func (s Options) config() config {
	cfg := defaultConfig
	s.apply(&cfg)
	return cfg
}

type OptionUnitID int

func (opt OptionUnitID) apply(cfg *config) {
	cfg.UnitID = int(opt)
}

// OptionShutdownTimeout bounds how long suspends and shutdowns wait for
// the hardware to finish the operation in flight.
type OptionShutdownTimeout time.Duration

func (opt OptionShutdownTimeout) apply(cfg *config) {
	cfg.ShutdownTimeout = time.Duration(opt)
}

// OptionParentClock is the clock the bus clock is re-parented to on Open.
type OptionParentClock string

func (opt OptionParentClock) apply(cfg *config) {
	cfg.ParentClock = string(opt)
}

// OptionBusClockRate is the bus clock rate set on Open, in Hz. Zero
// keeps the current rate.
type OptionBusClockRate uint64

func (opt OptionBusClockRate) apply(cfg *config) {
	cfg.BusClockRate = uint64(opt)
}

type OptionOnControlChange FuncOnControlChange

func (opt OptionOnControlChange) apply(cfg *config) {
	cfg.OnControlChange = FuncOnControlChange(opt)
}
