// context_controls.go implements setting and activating the runtime controls of a context.

package device

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/geometry"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/camif/types"
	"github.com/xaionaro-go/xsync"
)

// SetControl applies a control value. Setting an inactive control is a
// successful no-op. A rejected rotation leaves the previous one.
func (c *Context) SetControl(
	ctx context.Context,
	id ControlID,
	value int32,
) (_err error) {
	logger.Debugf(ctx, "SetControl: %s=%d", id, value)
	defer func() { logger.Debugf(ctx, "/SetControl: %v", _err) }()

	applied, err := xsync.DoR2(ctx, &c.locker, func() (bool, error) {
		return c.setControlLocked(ctx, id, value)
	})
	if err != nil || !applied {
		return err
	}

	if onChange := c.device.config.OnControlChange; onChange != nil {
		onChange(ctx, c, id, value)
	}
	return nil
}

func (c *Context) setControlLocked(
	ctx context.Context,
	id ControlID,
	value int32,
) (bool, error) {
	ctrl, err := c.controls.get(id)
	if err != nil {
		return false, err
	}
	if err := ctrl.validate(id, value); err != nil {
		return false, err
	}
	if !ctrl.active {
		logger.Debugf(ctx, "%s: %s is inactive, ignoring", c, id)
		return false, nil
	}

	if err := c.applyControlLocked(id, value); err != nil {
		return false, err
	}
	ctrl.value = value

	d := c.device
	d.slock.Do(ctx, func() {
		c.state |= ContextParams
		if d.capture != nil && d.capture.context == c {
			d.setState(StateCaptureApplyConfig)
		}
	})
	return true, nil
}

func (c *Context) applyControlLocked(id ControlID, value int32) error {
	d := c.device
	tr := &c.transform

	switch id {
	case ControlRotate:
		rotation := geometry.Rotation(value)
		if rotation.SwapsAxes() && !d.Variant.HasOutputRotation {
			return types.ErrUnsupportedConfiguration{Reason: fmt.Sprintf("%s rotation is not supported by %s", rotation, d)}
		}
		// a side without a format counts as 0x0
		if d.IsCapturePending() || tr.Src.Format != nil || tr.Dst.Format != nil {
			err := geometry.CheckScalerRatio(
				tr.Scaler.Enabled,
				tr.Src.Width, tr.Src.Height,
				tr.Dst.Width, tr.Dst.Height,
				rotation,
			)
			if err != nil {
				return err
			}
		}
		tr.Rotation = rotation
	case ControlHFlip:
		tr.HFlip = value != 0
	case ControlVFlip:
		tr.VFlip = value != 0
	case ControlAlpha:
		tr.Dst.Alpha = uint32(value)
	case ControlColorFX:
		effect, err := ColorFX(value).Effect(c.controls[ControlColorFXCbCr].value)
		if err != nil {
			return err
		}
		c.effect = effect
	case ControlColorFXCbCr:
		fx := ColorFX(c.controls[ControlColorFX].value)
		if fx == ColorFXSetCbCr && c.controls[ControlColorFX].active {
			effect, err := fx.Effect(value)
			if err != nil {
				return err
			}
			c.effect = effect
		}
	case ControlCacheable:
		c.cacheable = value != 0
	case ControlContentProtection:
		c.drmEnabled = value != 0
	case ControlCSCEqMode:
		c.csc.EqualizerMode = value != 0
	case ControlCSCEq:
		c.csc.Equation = hw.ColorSpace(value)
	case ControlCSCRange:
		c.csc.WideRange = value != 0
	default:
		return types.ErrInvalidArgument{Reason: fmt.Sprintf("no control %s", id)}
	}
	return nil
}

// activatable returns true for the controls ActivateControls switches;
// the rest stay active.
func activatable(id ControlID) bool {
	switch id {
	case ControlRotate, ControlHFlip, ControlVFlip, ControlColorFX,
		ControlContentProtection, ControlAlpha:
		return true
	}
	return false
}

// ActivateControls activates or deactivates the geometry and effect
// controls. Deactivating resets them to the identity transform without
// forgetting the stored values; activating applies the stored values.
func (c *Context) ActivateControls(ctx context.Context, active bool) {
	logger.Debugf(ctx, "ActivateControls: %v", active)
	defer logger.Debugf(ctx, "/ActivateControls")

	c.locker.Do(ctx, func() {
		c.controlsInactive = !active
		hasAlpha := c.transform.Dst.Format != nil && c.transform.Dst.Format.HasFlags(format.FlagHasAlpha)
		for id := ControlID(0); id < numControls; id++ {
			if !activatable(id) {
				continue
			}
			c.controls[id].active = active
		}
		c.controls[ControlAlpha].active = active && hasAlpha

		if active {
			c.applyStoredControls()
		} else {
			c.effect = hw.Effect{Type: hw.EffectBypass}
			c.transform.Rotation = geometry.Rotation0
			c.transform.HFlip = false
			c.transform.VFlip = false
			c.drmEnabled = false
		}
		c.device.slock.Do(ctx, func() {
			c.state |= ContextParams
		})
	})
}

// applyStoredControls copies the stored control values into the
// transform; must be called with c.locker held (or before c is shared).
func (c *Context) applyStoredControls() {
	set := &c.controls
	effect, err := ColorFX(set[ControlColorFX].value).Effect(set[ControlColorFXCbCr].value)
	if err != nil {
		effect = hw.Effect{Type: hw.EffectBypass}
	}
	c.effect = effect
	c.transform.Rotation = geometry.Rotation(set[ControlRotate].value)
	c.transform.HFlip = set[ControlHFlip].value != 0
	c.transform.VFlip = set[ControlVFlip].value != 0
	c.drmEnabled = set[ControlContentProtection].value != 0
	c.cacheable = set[ControlCacheable].value != 0
	c.csc = hw.CSC{
		EqualizerMode: set[ControlCSCEqMode].value != 0,
		Equation:      hw.ColorSpace(set[ControlCSCEq].value),
		WideRange:     set[ControlCSCRange].value != 0,
	}
	if set[ControlAlpha].present {
		c.transform.Dst.Alpha = uint32(set[ControlAlpha].value)
	}
}

// UpdateAlphaControl bounds the alpha control by the alpha depth of the
// destination format, clamping the current value.
func (c *Context) UpdateAlphaControl(ctx context.Context) {
	c.locker.Do(ctx, func() {
		c.updateAlphaControlLocked(ctx)
	})
}

func (c *Context) updateAlphaControlLocked(ctx context.Context) {
	ctrl := &c.controls[ControlAlpha]
	if !ctrl.present {
		return
	}
	dst := c.transform.Dst.Format
	var alphaMax uint32
	if dst != nil {
		alphaMax = dst.AlphaMask()
	}
	ctrl.max = int32(alphaMax)
	if ctrl.value > ctrl.max {
		logger.Debugf(ctx, "%s: clamping the alpha %d to %d", c, ctrl.value, ctrl.max)
		ctrl.value = ctrl.max
	}
	ctrl.active = !c.controlsInactive && dst != nil && dst.HasFlags(format.FlagHasAlpha)
	c.transform.Dst.Alpha = uint32(ctrl.value)
}

// Controls returns a snapshot of the controls of the context.
func (c *Context) Controls(ctx context.Context) []Control {
	return xsync.DoR1(ctx, &c.locker, func() []Control {
		return c.controls.snapshot()
	})
}
