// registers.go implements the simulated register block and interrupt line.

package hwsim

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/camif/geometry"
	"github.com/xaionaro-go/camif/helpers/closuresignaler"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

type Registers struct {
	ctx           context.Context
	closer        *closuresignaler.ClosureSignaler
	isOperational func(ctx context.Context) bool

	latency          atomic.Duration
	manualCompletion atomic.Bool

	locker      xsync.Mutex
	config      *hw.Config
	inAddr      geometry.AddressSet
	outAddr     geometry.AddressSet
	runningMode hw.Mode
	irqPending  bool
	generation  uint64
	handler     func(ctx context.Context)

	// handlerLocker serializes the interrupt handler invocations.
	handlerLocker xsync.Mutex

	resets     atomic.Uint64
	commits    atomic.Uint64
	starts     atomic.Uint64
	interrupts atomic.Uint64
	aborted    atomic.Uint64
	clearIRQs  atomic.Uint64
}

func newRegisters(
	ctx context.Context,
	closer *closuresignaler.ClosureSignaler,
	latency time.Duration,
	manualCompletion bool,
	isOperational func(ctx context.Context) bool,
) *Registers {
	r := &Registers{
		ctx:           ctx,
		closer:        closer,
		isOperational: isOperational,
	}
	r.latency.Store(latency)
	r.manualCompletion.Store(manualCompletion)
	return r
}

// SetLatency changes the latency of the operations started afterwards.
func (r *Registers) SetLatency(latency time.Duration) {
	r.latency.Store(latency)
}

// SetManualCompletion switches between automatic completions and
// completions triggered by Complete only. With manual completions an
// operation that is never completed simulates hung hardware.
func (r *Registers) SetManualCompletion(manual bool) {
	r.manualCompletion.Store(manual)
}

func (r *Registers) SetInterruptHandler(handler func(ctx context.Context)) {
	r.locker.Do(context.Background(), func() {
		r.handler = handler
	})
}

func (r *Registers) Reset(ctx context.Context) error {
	logger.Debugf(ctx, "Reset")
	defer logger.Debugf(ctx, "/Reset")
	r.locker.Do(ctx, func() {
		if r.runningMode != hw.ModeUndefined {
			r.aborted.Inc()
		}
		r.generation++
		r.config = nil
		r.inAddr = geometry.AddressSet{}
		r.outAddr = geometry.AddressSet{}
		r.runningMode = hw.ModeUndefined
		r.irqPending = false
		r.resets.Inc()
	})
	return nil
}

func (r *Registers) ClearIRQ(ctx context.Context) {
	logger.Tracef(ctx, "ClearIRQ")
	r.locker.Do(ctx, func() {
		r.irqPending = false
		r.clearIRQs.Inc()
	})
}

func (r *Registers) Commit(ctx context.Context, cfg *hw.Config) (_err error) {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	logger.Debugf(ctx, "Commit: %s", cfg.Mode)
	defer func() { logger.Debugf(ctx, "/Commit: %v", _err) }()
	return xsync.DoR1(ctx, &r.locker, func() error {
		if r.runningMode != hw.ModeUndefined {
			return fmt.Errorf("cannot reconfigure while a %s operation is running", r.runningMode)
		}
		cfgCopy := *cfg
		r.config = &cfgCopy
		r.commits.Inc()
		return nil
	})
}

func (r *Registers) SetAddresses(ctx context.Context, in, out geometry.AddressSet) error {
	logger.Tracef(ctx, "SetAddresses: in:%s out:%s", in, out)
	r.locker.Do(ctx, func() {
		r.inAddr, r.outAddr = in, out
	})
	return nil
}

func (r *Registers) Start(ctx context.Context, mode hw.Mode) (_err error) {
	logger.Debugf(ctx, "Start: %s", mode)
	defer func() { logger.Debugf(ctx, "/Start: %v", _err) }()

	if !r.isOperational(ctx) {
		return fmt.Errorf("the unit is not powered or its gate clock is disabled")
	}

	gen, err := xsync.DoR2(ctx, &r.locker, func() (uint64, error) {
		switch {
		case r.config == nil:
			return 0, fmt.Errorf("the registers are not configured")
		case r.config.Mode != mode:
			return 0, fmt.Errorf("the registers are configured for %s, not %s", r.config.Mode, mode)
		case r.runningMode != hw.ModeUndefined:
			return 0, fmt.Errorf("a %s operation is already running", r.runningMode)
		}
		r.runningMode = mode
		r.starts.Inc()
		return r.generation, nil
	})
	if err != nil {
		return err
	}

	if r.manualCompletion.Load() {
		return nil
	}

	latency := r.latency.Load()
	observability.Go(r.ctx, func(ctx context.Context) {
		if !r.closer.Sleep(ctx, latency) {
			return
		}
		r.complete(ctx, gen)
	})
	return nil
}

// Complete completes the running operation right away, invoking the
// interrupt handler on the calling goroutine. It returns false if
// nothing was running.
func (r *Registers) Complete(ctx context.Context) bool {
	gen, running := xsync.DoR2(ctx, &r.locker, func() (uint64, bool) {
		return r.generation, r.runningMode != hw.ModeUndefined
	})
	if !running {
		return false
	}
	return r.complete(ctx, gen)
}

// RaiseInterrupt invokes the handler without completing anything.
func (r *Registers) RaiseInterrupt(ctx context.Context) {
	handler := xsync.DoR1(ctx, &r.locker, func() func(context.Context) {
		r.irqPending = true
		r.interrupts.Inc()
		return r.handler
	})
	r.invoke(ctx, handler)
}

func (r *Registers) complete(ctx context.Context, gen uint64) bool {
	handler, ok := xsync.DoR2(ctx, &r.locker, func() (func(context.Context), bool) {
		if r.generation != gen || r.runningMode == hw.ModeUndefined {
			logger.Debugf(ctx, "the operation was aborted by a reset")
			return nil, false
		}
		r.runningMode = hw.ModeUndefined
		r.irqPending = true
		r.interrupts.Inc()
		return r.handler, true
	})
	if !ok {
		return false
	}
	r.invoke(ctx, handler)
	return true
}

func (r *Registers) invoke(ctx context.Context, handler func(context.Context)) {
	if handler == nil {
		logger.Warnf(ctx, "an interrupt is raised, but no handler is installed")
		return
	}
	r.handlerLocker.Do(ctx, func() {
		handler(ctx)
	})
}

// IsRunning reports if an operation has been started and not completed
// yet.
func (r *Registers) IsRunning(ctx context.Context) bool {
	return xsync.DoR1(ctx, &r.locker, func() bool {
		return r.runningMode != hw.ModeUndefined
	})
}

// IsIRQPending reports if the last interrupt was not acknowledged.
func (r *Registers) IsIRQPending(ctx context.Context) bool {
	return xsync.DoR1(ctx, &r.locker, func() bool {
		return r.irqPending
	})
}

// Config returns a copy of the last committed configuration.
func (r *Registers) Config(ctx context.Context) (hw.Config, bool) {
	return xsync.DoR2(ctx, &r.locker, func() (hw.Config, bool) {
		if r.config == nil {
			return hw.Config{}, false
		}
		return *r.config, true
	})
}

// Addresses returns the last programmed addresses.
func (r *Registers) Addresses(ctx context.Context) (in, out geometry.AddressSet) {
	return xsync.DoR2(ctx, &r.locker, func() (geometry.AddressSet, geometry.AddressSet) {
		return r.inAddr, r.outAddr
	})
}

func (r *Registers) Dump(ctx context.Context) string {
	return xsync.DoR1(ctx, &r.locker, func() string {
		var buf strings.Builder
		fmt.Fprintf(&buf, "running: %s\n", r.runningMode)
		fmt.Fprintf(&buf, "irq_pending: %v\n", r.irqPending)
		fmt.Fprintf(&buf, "in: %s\n", r.inAddr)
		fmt.Fprintf(&buf, "out: %s\n", r.outAddr)
		if r.config != nil {
			fmt.Fprintf(&buf, "config: %s", spew.Sdump(*r.config))
		}
		return buf.String()
	})
}
