// option.go defines functional options for configuring the simulator.

package hwsim

import (
	"time"
)

type config struct {
	Latency          time.Duration
	ManualCompletion bool
	MissingClocks    []string
	BaseAddr         uint32
}

var defaultConfig = config{
	Latency:  time.Millisecond,
	BaseAddr: 0x40000000,
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

// OptionLatency is how long an operation takes before its completion
// interrupt is raised.
type OptionLatency time.Duration

func (opt OptionLatency) apply(cfg *config) {
	cfg.Latency = time.Duration(opt)
}

// OptionManualCompletion disables automatic completions: operations
// complete only when Registers.Complete is called.
type OptionManualCompletion bool

func (opt OptionManualCompletion) apply(cfg *config) {
	cfg.ManualCompletion = bool(opt)
}

// OptionMissingClock makes the clock tree fail lookups of the given
// clock.
type OptionMissingClock string

func (opt OptionMissingClock) apply(cfg *config) {
	cfg.MissingClocks = append(cfg.MissingClocks, string(opt))
}

// OptionBaseAddr is the first device address handed out by the
// allocator.
type OptionBaseAddr uint32

func (opt OptionBaseAddr) apply(cfg *config) {
	cfg.BaseAddr = uint32(opt)
}
