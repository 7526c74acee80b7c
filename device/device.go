// device.go provides the Device: a single hardware unit with its clocks, power and operation state.

package device

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ng/xatomic"
	"github.com/google/uuid"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/camif/types"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

// Device is a single hardware unit shared by memory-to-memory processing
// contexts and a capture session.
//
// Locking: lock is the coarse lock of the long-lived configuration
// (contexts, clocks, protected content) and is always taken before
// slock. slock protects the operation state and is never held while
// calling back a consumer.
type Device struct {
	UnitID  int
	Variant types.Variant

	config  config
	backend hw.Backend

	// state is a State; it is read lock-free, but every
	// read-modify-write happens under slock.
	state atomic.Uint32
	slock xsync.Mutex

	stateChangeChan *chan struct{}

	// m2mConfigured is the context the registers were last configured
	// for; nil forces a full reconfiguration on the next job.
	m2mConfigured *Context
	// m2mCurrent is the context owning the job in flight.
	m2mCurrent *Context

	m2mStreaming int
	capture      *captureSession

	lock      xsync.Mutex
	contexts  map[uuid.UUID]*Context
	gateClock hw.Clock
	busClock  hw.Clock
	isOpen    bool

	protectionLocker xsync.Mutex
	protectionRefs   int
	protectedContent atomic.Bool

	stats stats
}

var _ hw.RuntimePM = (*Device)(nil)

// New returns a closed device driving the given backend.
func New(
	ctx context.Context,
	backend hw.Backend,
	variant types.Variant,
	opts ...Option,
) (*Device, error) {
	if err := backend.Validate(); err != nil {
		return nil, types.ErrInvalidArgument{Reason: "incomplete backend", Err: err}
	}
	cfg := Options(opts).config()
	if cfg.ShutdownTimeout <= 0 {
		return nil, types.ErrInvalidArgument{Reason: fmt.Sprintf("invalid shutdown timeout %v", cfg.ShutdownTimeout)}
	}
	d := &Device{
		UnitID:          cfg.UnitID,
		Variant:         variant,
		config:          cfg,
		backend:         backend,
		stateChangeChan: ptr(make(chan struct{})),
		contexts:        map[uuid.UUID]*Context{},
	}
	d.stats.init()
	logger.Debugf(ctx, "created device for unit %d", d.UnitID)
	return d, nil
}

func (d *Device) String() string {
	return fmt.Sprintf("fimc%d", d.UnitID)
}

// State returns the current operation state.
func (d *Device) State() State {
	return State(d.state.Load())
}

// IsM2MActive reports if a memory-to-memory job is in flight or a
// processing context is streaming.
func (d *Device) IsM2MActive() bool {
	return d.State().HasAny(StateM2MPending | StateM2MRunning)
}

// IsCaptureBusy reports if a capture session exists.
func (d *Device) IsCaptureBusy() bool {
	return d.State().Has(StateCaptureBusy)
}

// IsCapturePending reports if a capture frame is in flight.
func (d *Device) IsCapturePending() bool {
	return d.State().Has(StateCapturePending)
}

// The state modifiers below must be called with slock held.

func (d *Device) setState(mask State) {
	d.state.Store(d.state.Load() | uint32(mask))
}

func (d *Device) clearState(mask State) {
	d.state.Store(d.state.Load() &^ uint32(mask))
}

func (d *Device) testAndClearState(mask State) bool {
	old := State(d.state.Load())
	d.state.Store(uint32(old &^ mask))
	return old.HasAny(mask)
}

func (d *Device) testAndSetState(mask State) bool {
	old := State(d.state.Load())
	d.state.Store(uint32(old | mask))
	return old.HasAny(mask)
}

func (d *Device) getStateChangeChan() <-chan struct{} {
	return *xatomic.LoadPointer(&d.stateChangeChan)
}

// wakeUp wakes up everybody waiting for a state change; must be called
// with slock held.
func (d *Device) wakeUp() {
	close(*xatomic.SwapPointer(&d.stateChangeChan, ptr(make(chan struct{}))))
}

// waitFor blocks until cond (evaluated with slock held) becomes true,
// the shutdown timeout elapses or ctx is done.
func (d *Device) waitFor(
	ctx context.Context,
	operation string,
	cond func() bool,
) error {
	timeout := d.config.ShutdownTimeout
	t := time.NewTimer(timeout)
	defer t.Stop()
	for {
		ok, ch := xsync.DoR2(ctx, &d.slock, func() (bool, <-chan struct{}) {
			return cond(), d.getStateChangeChan()
		})
		if ok {
			return nil
		}
		select {
		case <-ch:
		case <-t.C:
			return types.ErrTimeout{Operation: operation, Timeout: timeout}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Open acquires the clocks, installs the interrupt handler and enables
// runtime power management.
func (d *Device) Open(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Open")
	defer func() { logger.Debugf(ctx, "/Open: %v", _err) }()
	return xsync.DoA1R1(ctx, &d.lock, d.openLocked, ctx)
}

func (d *Device) openLocked(ctx context.Context) error {
	if d.isOpen {
		return fmt.Errorf("%s is already open", d)
	}

	if err := d.clockGet(ctx); err != nil {
		return err
	}

	if err := d.setupBusClock(ctx); err != nil {
		d.clockPut(ctx)
		return err
	}

	d.backend.Interrupts.SetInterruptHandler(d.HandleInterrupt)

	if err := d.backend.Power.Enable(ctx, d); err != nil {
		d.backend.Interrupts.SetInterruptHandler(nil)
		d.busClock.Disable(ctx)
		d.clockPut(ctx)
		return fmt.Errorf("unable to enable runtime power management: %w", err)
	}

	d.isOpen = true
	logger.Infof(ctx, "%s opened", d)
	return nil
}

func (d *Device) clockGet(ctx context.Context) error {
	for _, spec := range []struct {
		name string
		clk  *hw.Clock
	}{
		{hw.ClockGate, &d.gateClock},
		{hw.ClockBus, &d.busClock},
	} {
		clk, err := d.backend.Clocks.Get(ctx, spec.name)
		if err != nil {
			d.clockPut(ctx)
			return fmt.Errorf("failed to get clock '%s': %w", spec.name, err)
		}
		if err := clk.Prepare(ctx); err != nil {
			d.backend.Clocks.Put(ctx, clk)
			d.clockPut(ctx)
			return fmt.Errorf("failed to prepare clock '%s': %w", spec.name, err)
		}
		*spec.clk = clk
	}
	return nil
}

func (d *Device) clockPut(ctx context.Context) {
	for _, clk := range []*hw.Clock{&d.gateClock, &d.busClock} {
		if *clk == nil {
			continue
		}
		(*clk).Unprepare(ctx)
		d.backend.Clocks.Put(ctx, *clk)
		*clk = nil
	}
}

func (d *Device) setupBusClock(ctx context.Context) error {
	parent, err := d.backend.Clocks.Get(ctx, d.config.ParentClock)
	if err != nil {
		return fmt.Errorf("failed to get the parent clock '%s': %w", d.config.ParentClock, err)
	}
	defer d.backend.Clocks.Put(ctx, parent)

	if err := d.busClock.SetParent(ctx, parent); err != nil {
		return fmt.Errorf("failed to set the parent clock '%s': %w", parent.Name(), err)
	}
	if d.config.BusClockRate != 0 {
		if err := d.busClock.SetRate(ctx, d.config.BusClockRate); err != nil {
			return fmt.Errorf("failed to set the bus clock rate to %d: %w", d.config.BusClockRate, err)
		}
	}
	if err := d.busClock.Enable(ctx); err != nil {
		return fmt.Errorf("failed to enable the bus clock: %w", err)
	}
	return nil
}

// Close disables runtime power management and releases the clocks. All
// the contexts must be released and the capture stopped before.
func (d *Device) Close(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close: %v", _err) }()
	return xsync.DoA1R1(ctx, &d.lock, d.closeLocked, ctx)
}

func (d *Device) closeLocked(ctx context.Context) error {
	if !d.isOpen {
		return nil
	}
	if len(d.contexts) > 0 {
		return types.ErrBusy{Reason: fmt.Sprintf("%d processing contexts are still open", len(d.contexts))}
	}
	if d.IsCaptureBusy() {
		return types.ErrBusy{Reason: "the capture session is still running"}
	}

	var result error
	if err := d.backend.Power.Disable(ctx); err != nil {
		result = fmt.Errorf("unable to disable runtime power management: %w", err)
	}
	d.backend.Interrupts.SetInterruptHandler(nil)
	d.busClock.Disable(ctx)
	d.clockPut(ctx)
	d.isOpen = false
	return result
}

// IsOpen reports if Open succeeded and Close was not called after.
func (d *Device) IsOpen(ctx context.Context) bool {
	return xsync.DoR1(ctx, &d.lock, func() bool {
		return d.isOpen
	})
}
