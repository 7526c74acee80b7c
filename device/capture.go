// capture.go implements the capture session: the streaming path fed by a live image sensor.

package device

import (
	"context"
	"fmt"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/geometry"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/camif/types"
	"github.com/xaionaro-go/xsync"
)

// CaptureConsumer receives the events of a capture session. It is
// never called with a device lock held.
type CaptureConsumer interface {
	// OnBufferDone returns a filled buffer. moreExpected is false
	// for the last buffer of a single-buffer JPEG session.
	OnBufferDone(ctx context.Context, buf hw.Buffer, moreExpected bool)
	OnSuspend(ctx context.Context)
	OnResume(ctx context.Context)
}

// CaptureParams are the parameters of a capture session.
type CaptureParams struct {
	JPEG             bool
	RequestedBuffers int
}

type captureSession struct {
	context  *Context
	consumer CaptureConsumer
	params   CaptureParams

	// protected by the device slock
	queue  []hw.Buffer
	active hw.Buffer
}

type captureCompletion struct {
	session      *captureSession
	buf          hw.Buffer
	moreExpected bool
}

// StartCapture starts a capture session configured by the formats and
// the controls of c. The session keeps the unit powered until
// StopCapture. Only one session may exist, and not while any
// memory-to-memory context is streaming.
func (d *Device) StartCapture(
	ctx context.Context,
	c *Context,
	consumer CaptureConsumer,
	params CaptureParams,
) (_err error) {
	logger.Debugf(ctx, "StartCapture: %#+v", params)
	defer func() { logger.Debugf(ctx, "/StartCapture: %v", _err) }()

	switch {
	case c == nil || c.device != d:
		return types.ErrInvalidArgument{Reason: "the context does not belong to the device"}
	case consumer == nil:
		return types.ErrInvalidArgument{Reason: "no capture consumer"}
	case params.RequestedBuffers < 1:
		return types.ErrInvalidArgument{Reason: fmt.Sprintf("invalid number of requested buffers: %d", params.RequestedBuffers)}
	}

	err := xsync.DoR1(ctx, &c.locker, func() error {
		switch {
		case c.released:
			return fmt.Errorf("%s is released", c)
		case c.streaming || c.capturing:
			return types.ErrBusy{Reason: fmt.Sprintf("%s is already in use", c)}
		}
		if !c.State(ctx).Has(ContextSourceFormat | ContextDestinationFormat) {
			return types.ErrInvalidArgument{Reason: "both formats have to be set before capturing"}
		}
		if dst := c.transform.Dst.Format; !dst.HasFlags(format.FlagCapture) {
			return types.ErrInvalidArgument{Reason: fmt.Sprintf("%s cannot be a capture destination", dst.Name)}
		}
		c.capturing = true
		return nil
	})
	if err != nil {
		return err
	}

	if err := d.backend.Power.GetSync(ctx); err != nil {
		c.locker.Do(ctx, func() { c.capturing = false })
		return fmt.Errorf("unable to power up: %w", err)
	}

	err = xsync.DoR1(ctx, &d.slock, func() error {
		state := d.State()
		switch {
		case state.Has(StateLowPower):
			return types.ErrBusy{Reason: "the unit is suspended"}
		case state.Has(StateCaptureBusy):
			return types.ErrBusy{Reason: "a capture session already exists"}
		case d.IsM2MActive():
			return types.ErrBusy{Reason: "the unit is used for memory-to-memory processing"}
		}
		d.capture = &captureSession{
			context:  c,
			consumer: consumer,
			params:   params,
		}
		// the capture configuration replaces any m2m one
		xatomic.StorePointer(&d.m2mConfigured, nil)
		d.setState(StateCaptureBusy | StateCaptureApplyConfig)
		if params.JPEG {
			d.setState(StateCaptureJPEG)
		}
		return nil
	})
	if err != nil {
		c.locker.Do(ctx, func() { c.capturing = false })
		if pErr := d.backend.Power.PutSync(ctx); pErr != nil {
			logger.Errorf(ctx, "unable to drop the power reference: %v", pErr)
		}
		return err
	}
	return nil
}

// ArmCapture queues a capture buffer to be filled.
func (d *Device) ArmCapture(ctx context.Context, buf hw.Buffer) (_err error) {
	logger.Tracef(ctx, "ArmCapture")
	defer func() { logger.Tracef(ctx, "/ArmCapture: %v", _err) }()

	if buf == nil || !buf.IsCapture() {
		return types.ErrInvalidArgument{Reason: "a capture buffer is required"}
	}
	err := xsync.DoR1(ctx, &d.slock, func() error {
		if d.capture == nil || !d.IsCaptureBusy() {
			return types.ErrInvalidArgument{Reason: "no capture session"}
		}
		d.capture.queue = append(d.capture.queue, buf)
		return nil
	})
	if err != nil {
		return err
	}
	return d.kickCapture(ctx)
}

// kickCapture starts the next capture frame if the hardware is idle and
// a buffer is queued.
func (d *Device) kickCapture(ctx context.Context) error {
	s := xsync.DoR1(ctx, &d.slock, func() *captureSession {
		return d.capture
	})
	if s == nil {
		return nil
	}
	return xsync.DoR1(ctx, &s.context.locker, func() error {
		return d.kickCaptureLocked(ctx, s)
	})
}

func (d *Device) kickCaptureLocked(ctx context.Context, s *captureSession) error {
	var (
		buf         hw.Buffer
		reconfigure bool
	)
	d.slock.Do(ctx, func() {
		state := d.State()
		switch {
		case d.capture != s:
		case !state.Has(StateCaptureBusy):
		case state.HasAny(StateCapturePending | StateCaptureSuspended | StateLowPower):
		case len(s.queue) == 0:
		default:
			buf = s.queue[0]
			s.queue = s.queue[1:]
			s.active = buf
			d.setState(StateCapturePending | StateCaptureRunning)
			reconfigure = d.testAndClearState(StateCaptureApplyConfig)
		}
	})
	if buf == nil {
		return nil
	}

	if err := d.programCapture(ctx, s, buf, reconfigure); err != nil {
		d.slock.Do(ctx, func() {
			d.clearState(StateCapturePending)
			if reconfigure {
				d.setState(StateCaptureApplyConfig)
			}
			if s.active == buf {
				s.active = nil
				s.queue = append([]hw.Buffer{buf}, s.queue...)
			}
			d.wakeUp()
		})
		return err
	}
	return nil
}

func (d *Device) programCapture(
	ctx context.Context,
	s *captureSession,
	buf hw.Buffer,
	reconfigure bool,
) error {
	c := s.context
	regs := d.backend.Registers

	if reconfigure {
		cfg, err := c.buildConfig(ctx, hw.ModeCapture)
		if err != nil {
			return err
		}
		if err := regs.Commit(ctx, cfg); err != nil {
			return fmt.Errorf("unable to commit the configuration: %w", err)
		}
		d.stats.reconfigurations.Inc()
	}

	out, err := geometry.PrepareAddr(buf, &c.transform.Dst, c.transform.Src.Format.Color)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if err := c.syncCaptureBuffer(ctx, &c.transform.Dst, out); err != nil {
		return err
	}
	if err := regs.SetAddresses(ctx, geometry.AddressSet{}, out); err != nil {
		return fmt.Errorf("unable to set the addresses: %w", err)
	}
	if err := regs.Start(ctx, hw.ModeCapture); err != nil {
		return fmt.Errorf("unable to start: %w", err)
	}
	return nil
}

// captureIRQ handles a capture completion; must be called with slock
// held.
func (d *Device) captureIRQ(ctx context.Context) *captureCompletion {
	d.clearState(StateCapturePending)
	d.stats.captureFrames.Inc()
	d.wakeUp()

	s := d.capture
	if s == nil || s.active == nil {
		logger.Warnf(ctx, "%s: a capture completion without a buffer in flight", d)
		return nil
	}
	buf := s.active
	s.active = nil
	return &captureCompletion{
		session:      s,
		buf:          buf,
		moreExpected: !(s.params.JPEG && s.params.RequestedBuffers == 1),
	}
}

// deliverCapture passes a capture completion to the consumer; must be
// called without device locks held.
func (d *Device) deliverCapture(ctx context.Context, cc *captureCompletion) {
	cc.session.consumer.OnBufferDone(ctx, cc.buf, cc.moreExpected)
	if !cc.moreExpected {
		return
	}
	if err := d.kickCapture(ctx); err != nil {
		logger.Errorf(ctx, "%s: unable to start the next capture frame: %v", d, err)
	}
}

// StopCapture ends the capture session. The queued buffers are dropped;
// the frame in flight (if any) is waited for and returned to the
// consumer. On timeout the hardware is reset.
func (d *Device) StopCapture(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "StopCapture")
	defer func() { logger.Debugf(ctx, "/StopCapture: %v", _err) }()

	s := xsync.DoR1(ctx, &d.slock, func() *captureSession {
		s := d.capture
		if s == nil {
			return nil
		}
		d.clearState(StateCaptureBusy)
		s.queue = nil
		return s
	})
	if s == nil {
		return nil
	}

	err := d.waitFor(ctx, "capture stop", func() bool {
		return !d.State().Has(StateCapturePending)
	})
	if err != nil {
		logger.Warnf(ctx, "%s: the capture frame in flight did not finish: %v", d, err)
		if rErr := d.backend.Registers.Reset(ctx); rErr != nil {
			logger.Errorf(ctx, "unable to reset the hardware: %v", rErr)
		}
	}

	d.slock.Do(ctx, func() {
		d.clearState(StateCapturePending | StateCaptureRunning | StateCaptureJPEG |
			StateCaptureApplyConfig | StateCaptureSuspended)
		d.capture = nil
		d.wakeUp()
	})
	s.context.locker.Do(ctx, func() {
		s.context.capturing = false
	})

	if pErr := d.backend.Power.PutSync(ctx); pErr != nil {
		logger.Errorf(ctx, "unable to drop the power reference: %v", pErr)
	}
	return err
}

func (d *Device) captureSuspend(ctx context.Context) error {
	s := xsync.DoR1(ctx, &d.slock, func() *captureSession {
		if d.capture == nil {
			return nil
		}
		d.setState(StateCaptureSuspended)
		return d.capture
	})
	if s == nil {
		return nil
	}

	err := d.waitFor(ctx, "capture suspend", func() bool {
		return !d.State().Has(StateCapturePending)
	})
	d.slock.Do(ctx, func() {
		d.clearState(StateCaptureRunning)
	})
	s.consumer.OnSuspend(ctx)
	return err
}

// captureResume restarts the session after the hardware was reset; a
// frame lost on the reset is queued again.
func (d *Device) captureResume(ctx context.Context) error {
	s := xsync.DoR1(ctx, &d.slock, func() *captureSession {
		s := d.capture
		if s == nil {
			return nil
		}
		d.clearState(StateCaptureSuspended)
		d.setState(StateCaptureApplyConfig)
		if d.testAndClearState(StateCapturePending) && s.active != nil {
			s.queue = append([]hw.Buffer{s.active}, s.queue...)
			s.active = nil
		}
		return s
	})
	if s == nil {
		return nil
	}
	s.consumer.OnResume(ctx)
	return d.kickCapture(ctx)
}
