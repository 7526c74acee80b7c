// context.go provides the processing Context: the per-user format and control state.

package device

import (
	"context"
	"fmt"

	"github.com/go-ng/xatomic"
	"github.com/google/uuid"
	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/geometry"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/internal"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/camif/types"
	"github.com/xaionaro-go/xsync"
)

// Queue selects a side of a transform.
type Queue uint8

const (
	QueueSource Queue = iota
	QueueDestination
)

func (q Queue) String() string {
	switch q {
	case QueueSource:
		return "source"
	case QueueDestination:
		return "destination"
	}
	return fmt.Sprintf("unknown_queue_%d", uint8(q))
}

func (q Queue) formatMask() format.Flags {
	if q == QueueSource {
		return format.FlagM2MIn
	}
	return format.FlagM2MOut | format.FlagCapture
}

// Context is a processing context: one user of the memory-to-memory
// path (or the configuration of the capture session).
//
// locker protects the frames, the transform and the controls; it is
// taken before the device slock. The state bits are protected by the
// device slock.
type Context struct {
	ID     uuid.UUID
	device *Device

	onJobFinish FuncOnJobFinish

	locker     xsync.Mutex
	transform  geometry.Transform
	controls   controlSet
	effect     hw.Effect
	csc        hw.CSC
	drmEnabled bool
	cacheable  bool
	streaming  bool
	capturing  bool
	released   bool

	// controlsInactive is set by ActivateControls(false)
	controlsInactive bool

	// holdsProtection is set when StreamOn enabled the protected
	// content mode.
	holdsProtection bool

	// protected by the device slock
	state      ContextState
	pendingJob *Job
	jobCount   uint64
}

// NewContext opens a processing context. onJobFinish is called for
// every job submitted through RunJob; it may submit the next job.
func (d *Device) NewContext(
	ctx context.Context,
	onJobFinish FuncOnJobFinish,
) (_ *Context, _err error) {
	logger.Debugf(ctx, "NewContext")
	defer func() { logger.Debugf(ctx, "/NewContext: %v", _err) }()

	c := &Context{
		ID:          uuid.New(),
		device:      d,
		onJobFinish: onJobFinish,
		transform:   *geometry.NewTransform(),
		controls:    newControlSet(d.Variant, 0),
		effect:      hw.Effect{Type: hw.EffectBypass},
	}
	c.applyStoredControls()

	err := xsync.DoR1(ctx, &d.lock, func() error {
		if !d.isOpen {
			return fmt.Errorf("%s is not open", d)
		}
		d.contexts[c.ID] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Context) String() string {
	return fmt.Sprintf("%s/ctx-%s", c.device, c.ID.String()[:8])
}

// Device returns the device the context belongs to.
func (c *Context) Device() *Device {
	return c.device
}

// State returns the context state bits.
func (c *Context) State(ctx context.Context) ContextState {
	return xsync.DoR1(ctx, &c.device.slock, func() ContextState {
		return c.state
	})
}

func (c *Context) frame(q Queue) *geometry.Frame {
	if q == QueueSource {
		return &c.transform.Src
	}
	return &c.transform.Dst
}

func (c *Context) checkSize(q Queue, width, height uint32) error {
	v := c.device.Variant
	minSize, maxWidth := v.MinInputPixSize, v.PixLimit.ScalerDisabledWidth
	if q == QueueDestination {
		minSize = v.MinOutputPixSize
		maxWidth = v.PixLimit.ScalerEnabledWidth
		if c.transform.Rotation.SwapsAxes() {
			maxWidth = v.PixLimit.OutputRotationEnabledWidth
		}
	}
	if width < minSize || height < minSize {
		return types.ErrInvalidArgument{Reason: fmt.Sprintf(
			"%s size %dx%d is below the minimum of %d", q, width, height, minSize,
		)}
	}
	if maxWidth != 0 && width > maxWidth {
		return types.ErrUnsupportedConfiguration{Reason: fmt.Sprintf(
			"%s width %d exceeds the limit of %d", q, width, maxWidth,
		)}
	}
	return nil
}

func (c *Context) tryFormat(
	q Queue,
	desc *format.Descriptor,
	width, height uint32,
) (format.MPlaneFormat, error) {
	if err := c.checkSize(q, width, height); err != nil {
		return format.MPlaneFormat{}, err
	}
	var pix format.MPlaneFormat
	format.Adjust(desc, width, height, &pix)
	return pix, nil
}

// TryFormat negotiates a format without applying it.
func (c *Context) TryFormat(
	ctx context.Context,
	q Queue,
	fourcc format.FourCC,
	width, height uint32,
) (_ format.MPlaneFormat, _err error) {
	logger.Debugf(ctx, "TryFormat: %s %s %dx%d", q, fourcc, width, height)
	defer func() { logger.Debugf(ctx, "/TryFormat: %v", _err) }()
	desc, err := format.FindByFourCC(fourcc, q.formatMask())
	if err != nil {
		return format.MPlaneFormat{}, types.ErrInvalidArgument{Reason: "unsupported format", Err: err}
	}
	return xsync.DoR2(ctx, &c.locker, func() (format.MPlaneFormat, error) {
		return c.tryFormat(q, desc, width, height)
	})
}

// SetFormat negotiates and applies a format for a side of the transform.
func (c *Context) SetFormat(
	ctx context.Context,
	q Queue,
	fourcc format.FourCC,
	width, height uint32,
) (_ format.MPlaneFormat, _err error) {
	logger.Debugf(ctx, "SetFormat: %s %s %dx%d", q, fourcc, width, height)
	defer func() { logger.Debugf(ctx, "/SetFormat: %v", _err) }()
	desc, err := format.FindByFourCC(fourcc, q.formatMask())
	if err != nil {
		return format.MPlaneFormat{}, types.ErrInvalidArgument{Reason: "unsupported format", Err: err}
	}
	return xsync.DoR2(ctx, &c.locker, func() (format.MPlaneFormat, error) {
		return c.setFormatLocked(ctx, q, desc, width, height)
	})
}

// SetSensorFormat selects the source format of a capture by the media
// bus code the sensor transmits.
func (c *Context) SetSensorFormat(
	ctx context.Context,
	busCode format.BusCode,
	width, height uint32,
) (_ format.MPlaneFormat, _err error) {
	logger.Debugf(ctx, "SetSensorFormat: %s %dx%d", busCode, width, height)
	defer func() { logger.Debugf(ctx, "/SetSensorFormat: %v", _err) }()
	desc, err := format.FindByBusCode(busCode, format.FlagCapture)
	if err != nil {
		return format.MPlaneFormat{}, types.ErrInvalidArgument{Reason: "unsupported bus format", Err: err}
	}
	return xsync.DoR2(ctx, &c.locker, func() (format.MPlaneFormat, error) {
		return c.setFormatLocked(ctx, QueueSource, desc, width, height)
	})
}

func (c *Context) setFormatLocked(
	ctx context.Context,
	q Queue,
	desc *format.Descriptor,
	width, height uint32,
) (format.MPlaneFormat, error) {
	if c.streaming || c.capturing {
		return format.MPlaneFormat{}, types.ErrBusy{Reason: "cannot change the format while streaming"}
	}
	pix, err := c.tryFormat(q, desc, width, height)
	if err != nil {
		return format.MPlaneFormat{}, err
	}

	f := c.frame(q)
	f.SetFormat(desc)
	if err := f.Fill(&pix); err != nil {
		return format.MPlaneFormat{}, err
	}

	flag := ContextSourceFormat
	if q == QueueDestination {
		flag = ContextDestinationFormat
		c.updateAlphaControlLocked(ctx)
	}
	c.device.slock.Do(ctx, func() {
		c.state |= flag | ContextParams
	})
	logger.Debugf(ctx, "%s: %s format: %s", c, q, f)
	return f.MPlaneFormat(), nil
}

// Format returns the negotiated format of a side of the transform.
func (c *Context) Format(ctx context.Context, q Queue) (format.MPlaneFormat, error) {
	return xsync.DoR2(ctx, &c.locker, func() (format.MPlaneFormat, error) {
		f := c.frame(q)
		if f.Format == nil {
			return format.MPlaneFormat{}, types.ErrInvalidArgument{Reason: fmt.Sprintf("no %s format is set", q)}
		}
		return f.MPlaneFormat(), nil
	})
}

// SetCrop moves the crop window of a side of the transform.
func (c *Context) SetCrop(
	ctx context.Context,
	q Queue,
	offsH, offsV, width, height uint32,
) (_err error) {
	logger.Debugf(ctx, "SetCrop: %s %dx%d@%d,%d", q, width, height, offsH, offsV)
	defer func() { logger.Debugf(ctx, "/SetCrop: %v", _err) }()
	return xsync.DoR1(ctx, &c.locker, func() error {
		f := c.frame(q)
		if f.Format == nil {
			return types.ErrInvalidArgument{Reason: fmt.Sprintf("no %s format is set", q)}
		}
		if align := c.device.Variant.HorOffsAlign; align > 1 && offsH%align != 0 {
			return types.ErrInvalidArgument{Reason: fmt.Sprintf(
				"horizontal offset %d is not aligned to %d", offsH, align,
			)}
		}
		if err := f.SetCrop(offsH, offsV, width, height); err != nil {
			return err
		}
		c.device.slock.Do(ctx, func() {
			c.state |= ContextParams
		})
		return nil
	})
}

// Frame returns a copy of the frame descriptor of a side of the
// transform.
func (c *Context) Frame(ctx context.Context, q Queue) geometry.Frame {
	return xsync.DoR1(ctx, &c.locker, func() geometry.Frame {
		return *c.frame(q)
	})
}

// StreamOn starts accepting jobs. It keeps the unit powered until
// StreamOff.
func (c *Context) StreamOn(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "StreamOn")
	defer func() { logger.Debugf(ctx, "/StreamOn: %v", _err) }()
	d := c.device

	drmEnabled, err := xsync.DoR2(ctx, &c.locker, func() (bool, error) {
		switch {
		case c.released:
			return false, fmt.Errorf("%s is released", c)
		case c.streaming:
			return false, types.ErrBusy{Reason: "already streaming"}
		case c.capturing:
			return false, types.ErrBusy{Reason: "the context is used for capture"}
		}
		state := xsync.DoR1(ctx, &d.slock, func() ContextState { return c.state })
		if !state.Has(ContextSourceFormat | ContextDestinationFormat) {
			return false, types.ErrInvalidArgument{Reason: "both formats have to be set before streaming"}
		}
		if src := c.transform.Src.Format; !src.HasFlags(format.FlagM2MIn) {
			return false, types.ErrInvalidArgument{Reason: fmt.Sprintf("%s cannot be a memory-to-memory source", src.Name)}
		}
		if dst := c.transform.Dst.Format; !dst.HasFlags(format.FlagM2MOut) {
			return false, types.ErrInvalidArgument{Reason: fmt.Sprintf("%s cannot be a memory-to-memory destination", dst.Name)}
		}
		c.streaming = true
		return c.drmEnabled, nil
	})
	if err != nil {
		return err
	}

	// no locks are held: the resume path may call back the consumers
	if err := d.backend.Power.GetSync(ctx); err != nil {
		c.locker.Do(ctx, func() { c.streaming = false })
		return fmt.Errorf("unable to power up: %w", err)
	}

	if drmEnabled {
		if err := d.acquireProtection(ctx); err != nil {
			logger.Errorf(ctx, "unable to enable the protected content mode: %v", err)
		} else {
			c.locker.Do(ctx, func() { c.holdsProtection = true })
		}
	}

	d.slock.Do(ctx, func() {
		d.m2mStreaming++
		d.setState(StateM2MRunning)
	})
	return nil
}

// StreamOff waits for the job in flight of the context (if any) to
// finish and drops the power reference taken by StreamOn.
func (c *Context) StreamOff(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "StreamOff")
	defer func() { logger.Debugf(ctx, "/StreamOff: %v", _err) }()
	d := c.device

	holdsProtection, streaming := xsync.DoR2(ctx, &c.locker, func() (bool, bool) {
		streaming, holdsProtection := c.streaming, c.holdsProtection
		c.streaming, c.holdsProtection = false, false
		return holdsProtection, streaming
	})
	if !streaming {
		return nil
	}

	shutdownErr := c.shutdown(ctx)

	d.slock.Do(ctx, func() {
		d.m2mStreaming--
		internal.Assert(ctx, d.m2mStreaming >= 0, "streaming contexts count went negative")
		if d.m2mStreaming == 0 {
			d.clearState(StateM2MRunning)
		}
	})

	if holdsProtection {
		if err := d.releaseProtection(ctx); err != nil {
			logger.Errorf(ctx, "unable to disable the protected content mode: %v", err)
		}
	}

	if err := d.backend.Power.PutSync(ctx); err != nil {
		logger.Errorf(ctx, "unable to drop the power reference: %v", err)
	}
	return shutdownErr
}

// shutdown waits for the job in flight of the context.
func (c *Context) shutdown(ctx context.Context) error {
	d := c.device
	mustWait := xsync.DoR1(ctx, &d.slock, func() bool {
		if !d.State().Has(StateM2MPending) || xatomic.LoadPointer(&d.m2mCurrent) != c {
			return false
		}
		c.state |= ContextShut
		return true
	})
	if !mustWait {
		return nil
	}
	err := d.waitFor(ctx, "context shutdown", func() bool {
		return c.state&ContextShut == 0
	})
	if err != nil {
		d.slock.Do(ctx, func() {
			c.state &^= ContextShut
		})
	}
	return err
}

// Release stops streaming (or the capture session configured by the
// context) and closes the context.
func (c *Context) Release(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Release")
	defer func() { logger.Debugf(ctx, "/Release: %v", _err) }()
	d := c.device

	err := c.StreamOff(ctx)
	capturing := xsync.DoR1(ctx, &c.locker, func() bool { return c.capturing })
	if capturing {
		if sErr := d.StopCapture(ctx); sErr != nil && err == nil {
			err = sErr
		}
	}
	d.slock.Do(ctx, func() {
		if xatomic.LoadPointer(&d.m2mConfigured) == c {
			xatomic.StorePointer(&d.m2mConfigured, nil)
		}
	})
	c.locker.Do(ctx, func() {
		c.released = true
	})
	d.lock.Do(ctx, func() {
		delete(d.contexts, c.ID)
	})
	return err
}
