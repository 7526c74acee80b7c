// simulator.go provides the simulated hardware unit bundling all the capabilities.

// Package hwsim is an in-memory hardware unit: it implements every
// capability of package hw and raises completion interrupts from its
// own goroutines.
package hwsim

import (
	"context"

	"github.com/xaionaro-go/camif/helpers/closuresignaler"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
)

type Simulator struct {
	Registers *Registers
	Memory    *Memory
	Clocks    *Clocks
	Power     *Power

	closer *closuresignaler.ClosureSignaler
}

var _ hw.Registers = (*Registers)(nil)
var _ hw.InterruptSource = (*Registers)(nil)
var _ hw.Memory = (*Memory)(nil)
var _ hw.Clocks = (*Clocks)(nil)
var _ hw.Power = (*Power)(nil)

// New returns a simulated unit. Completion goroutines are bound to ctx
// and stop when ctx is done or Close is called.
func New(ctx context.Context, opts ...Option) *Simulator {
	cfg := Options(opts).config()
	s := &Simulator{
		closer: closuresignaler.New(),
	}
	s.Clocks = newClocks(cfg.MissingClocks)
	s.Power = newPower()
	s.Memory = newMemory(cfg.BaseAddr)
	s.Registers = newRegisters(
		ctx,
		s.closer,
		cfg.Latency,
		cfg.ManualCompletion,
		s.isOperational,
	)
	logger.Debugf(ctx, "simulated unit created: latency:%v manual:%v", cfg.Latency, cfg.ManualCompletion)
	return s
}

// Backend returns the simulated unit as a set of capabilities.
func (s *Simulator) Backend() hw.Backend {
	return hw.Backend{
		Registers:  s.Registers,
		Interrupts: s.Registers,
		Memory:     s.Memory,
		Clocks:     s.Clocks,
		Power:      s.Power,
	}
}

// isOperational is true when the unit may run an operation: it is
// powered and its gate clock is running.
func (s *Simulator) isOperational(ctx context.Context) bool {
	return s.Power.IsActive(ctx) && s.Clocks.IsEnabled(ctx, hw.ClockGate)
}

// Close stops all in-flight completions.
func (s *Simulator) Close(ctx context.Context) error {
	logger.Debugf(ctx, "Close")
	defer logger.Debugf(ctx, "/Close")
	s.closer.Close(ctx)
	return nil
}

// Stats is a snapshot of the simulator counters.
type Stats struct {
	Resets      uint64 `json:"resets"`
	Commits     uint64 `json:"commits"`
	Starts      uint64 `json:"starts"`
	Interrupts  uint64 `json:"interrupts"`
	Aborted     uint64 `json:"aborted"`
	ClearIRQs   uint64 `json:"clear_irqs"`
	Allocs      uint64 `json:"allocs"`
	Frees       uint64 `json:"frees"`
	Syncs       uint64 `json:"syncs"`
	SyncedBytes uint64 `json:"synced_bytes"`
	PowerGets   uint64 `json:"power_gets"`
	PowerPuts   uint64 `json:"power_puts"`
}

func (s *Simulator) Stats() Stats {
	return Stats{
		Resets:      s.Registers.resets.Load(),
		Commits:     s.Registers.commits.Load(),
		Starts:      s.Registers.starts.Load(),
		Interrupts:  s.Registers.interrupts.Load(),
		Aborted:     s.Registers.aborted.Load(),
		ClearIRQs:   s.Registers.clearIRQs.Load(),
		Allocs:      s.Memory.allocs.Load(),
		Frees:       s.Memory.frees.Load(),
		Syncs:       s.Memory.syncs.Load(),
		SyncedBytes: s.Memory.syncedBytes.Load(),
		PowerGets:   s.Power.gets.Load(),
		PowerPuts:   s.Power.puts.Load(),
	}
}
