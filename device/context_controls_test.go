package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/geometry"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/types"
)

func findControl(t *testing.T, controls []Control, id ControlID) (Control, bool) {
	t.Helper()
	for _, ctrl := range controls {
		if ctrl.ID == id {
			return ctrl, true
		}
	}
	return Control{}, false
}

func controlValue(ctx context.Context, t *testing.T, c *Context, id ControlID) int32 {
	t.Helper()
	ctrl, ok := findControl(t, c.Controls(ctx), id)
	require.True(t, ok, id.String())
	return ctrl.Value
}

func TestControlIDString(t *testing.T) {
	for id := ControlID(0); id < numControls; id++ {
		parsed, err := ParseControlID(id.String())
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	}
	_, err := ParseControlID("brightness")
	require.Error(t, err)
}

func TestSetControlValidation(t *testing.T) {
	ctx := testCtx(t)
	_, dev := newTestDevice(ctx, t, testVariant())
	c := newFormattedContext(ctx, t, dev, nil)

	for _, tc := range []struct {
		id    ControlID
		value int32
	}{
		{ControlRotate, 45},
		{ControlRotate, 360},
		{ControlHFlip, 2},
		{ControlColorFX, int32(ColorFXSkyBlue)},
		{ControlColorFX, -1},
		{ControlCSCEq, int32(hw.ColorSpaceSRGB) + 1},
		{numControls, 0},
	} {
		var invalid types.ErrInvalidArgument
		require.ErrorAs(t, c.SetControl(ctx, tc.id, tc.value), &invalid, "%s=%d", tc.id, tc.value)
	}
}

func TestSetControlRotation(t *testing.T) {
	ctx := testCtx(t)

	t.Run("unsupported", func(t *testing.T) {
		v := testVariant()
		v.HasOutputRotation = false
		_, dev := newTestDevice(ctx, t, v)
		c, err := dev.NewContext(ctx, nil)
		require.NoError(t, err)

		var unsupported types.ErrUnsupportedConfiguration
		require.ErrorAs(t, c.SetControl(ctx, ControlRotate, 90), &unsupported)
		require.Zero(t, controlValue(ctx, t, c, ControlRotate))

		require.NoError(t, c.SetControl(ctx, ControlRotate, 180))
		require.Equal(t, int32(180), controlValue(ctx, t, c, ControlRotate))
		require.Equal(t, geometry.Rotation180, c.transform.Rotation)
	})

	t.Run("scaler_ratio", func(t *testing.T) {
		_, dev := newTestDevice(ctx, t, testVariant())
		c, err := dev.NewContext(ctx, nil)
		require.NoError(t, err)
		_, err = c.SetFormat(ctx, QueueSource, format.FourCCYUYV, 1024, 16)
		require.NoError(t, err)

		// the destination is still 0x0
		var unsupported types.ErrUnsupportedConfiguration
		require.ErrorAs(t, c.SetControl(ctx, ControlRotate, 90), &unsupported)
		require.Zero(t, controlValue(ctx, t, c, ControlRotate))
		require.Equal(t, geometry.Rotation0, c.transform.Rotation)

		_, err = c.SetFormat(ctx, QueueDestination, format.FourCCRGB565, 32, 16)
		require.NoError(t, err)

		require.ErrorAs(t, c.SetControl(ctx, ControlRotate, 270), &unsupported)
		require.Zero(t, controlValue(ctx, t, c, ControlRotate))
		require.Equal(t, geometry.Rotation0, c.transform.Rotation)

		require.NoError(t, c.SetControl(ctx, ControlRotate, 180))
	})
}

func TestSetControlColorFX(t *testing.T) {
	ctx := testCtx(t)
	_, dev := newTestDevice(ctx, t, testVariant())
	c := newFormattedContext(ctx, t, dev, nil)

	for _, tc := range []struct {
		fx     ColorFX
		effect hw.Effect
	}{
		{ColorFXBW, hw.Effect{Type: hw.EffectArbitrary, PatternCb: 128, PatternCr: 128}},
		{ColorFXSepia, hw.Effect{Type: hw.EffectArbitrary, PatternCb: 115, PatternCr: 145}},
		{ColorFXNegative, hw.Effect{Type: hw.EffectNegative}},
		{ColorFXEmboss, hw.Effect{Type: hw.EffectEmboss}},
		{ColorFXArtFreeze, hw.Effect{Type: hw.EffectArtFreeze}},
		{ColorFXSilhouette, hw.Effect{Type: hw.EffectSilhouette}},
		{ColorFXNone, hw.Effect{Type: hw.EffectBypass}},
	} {
		require.NoError(t, c.SetControl(ctx, ControlColorFX, int32(tc.fx)))
		require.Equal(t, tc.effect, c.effect, "%d", tc.fx)
	}

	require.NoError(t, c.SetControl(ctx, ControlColorFXCbCr, 0x1234))
	require.Equal(t, hw.EffectBypass, c.effect.Type)
	require.NoError(t, c.SetControl(ctx, ControlColorFX, int32(ColorFXSetCbCr)))
	require.Equal(t, hw.Effect{Type: hw.EffectArbitrary, PatternCb: 0x12, PatternCr: 0x34}, c.effect)
	require.NoError(t, c.SetControl(ctx, ControlColorFXCbCr, 0xabcd))
	require.Equal(t, hw.Effect{Type: hw.EffectArbitrary, PatternCb: 0xab, PatternCr: 0xcd}, c.effect)

	// offered, but not implemented by the hardware
	var invalid types.ErrInvalidArgument
	require.ErrorAs(t, c.SetControl(ctx, ControlColorFX, int32(ColorFXSketch)), &invalid)
	require.Equal(t, int32(ColorFXSetCbCr), controlValue(ctx, t, c, ControlColorFX))
}

func TestSetControlMarksParamsDirty(t *testing.T) {
	ctx := testCtx(t)

	var changes []ControlID
	_, dev := newTestDevice(ctx, t, testVariant(), OptionOnControlChange(
		func(ctx context.Context, c *Context, id ControlID, value int32) {
			changes = append(changes, id)
		},
	))
	c := newFormattedContext(ctx, t, dev, nil)
	c.device.slock.Do(ctx, func() {
		c.state &^= ContextParams
	})

	require.NoError(t, c.SetControl(ctx, ControlVFlip, 1))
	require.True(t, c.State(ctx).Has(ContextParams))
	require.True(t, c.transform.VFlip)

	require.NoError(t, c.SetControl(ctx, ControlCSCEq, int32(hw.ColorSpaceSMPTE170M)))
	require.NoError(t, c.SetControl(ctx, ControlCSCRange, 0))
	require.NoError(t, c.SetControl(ctx, ControlCacheable, 0))
	require.Equal(t, hw.CSC{EqualizerMode: true, Equation: hw.ColorSpaceSMPTE170M}, c.csc)
	require.False(t, c.cacheable)

	require.Equal(t, []ControlID{ControlVFlip, ControlCSCEq, ControlCSCRange, ControlCacheable}, changes)
}

func TestActivateControls(t *testing.T) {
	ctx := testCtx(t)
	_, dev := newTestDevice(ctx, t, testVariant())
	c := newFormattedContext(ctx, t, dev, nil)

	require.NoError(t, c.SetControl(ctx, ControlHFlip, 1))
	require.NoError(t, c.SetControl(ctx, ControlRotate, 180))
	require.NoError(t, c.SetControl(ctx, ControlColorFX, int32(ColorFXNegative)))

	c.ActivateControls(ctx, false)
	require.False(t, c.transform.HFlip)
	require.Equal(t, geometry.Rotation0, c.transform.Rotation)
	require.Equal(t, hw.EffectBypass, c.effect.Type)

	// inactive controls silently ignore the values
	require.NoError(t, c.SetControl(ctx, ControlHFlip, 0))
	require.Equal(t, int32(1), controlValue(ctx, t, c, ControlHFlip))
	ctrl, _ := findControl(t, c.Controls(ctx), ControlHFlip)
	require.False(t, ctrl.Active)

	// the rest stays active
	require.NoError(t, c.SetControl(ctx, ControlCacheable, 0))
	require.Zero(t, controlValue(ctx, t, c, ControlCacheable))

	c.ActivateControls(ctx, true)
	require.True(t, c.transform.HFlip)
	require.Equal(t, geometry.Rotation180, c.transform.Rotation)
	require.Equal(t, hw.EffectNegative, c.effect.Type)
}

func TestAlphaControl(t *testing.T) {
	ctx := testCtx(t)
	_, dev := newTestDevice(ctx, t, testVariant())
	c, err := dev.NewContext(ctx, nil)
	require.NoError(t, err)

	ctrl, ok := findControl(t, c.Controls(ctx), ControlAlpha)
	require.True(t, ok)
	require.False(t, ctrl.Active)

	_, err = c.SetFormat(ctx, QueueDestination, format.FourCCBGR32, 64, 64)
	require.NoError(t, err)
	ctrl, _ = findControl(t, c.Controls(ctx), ControlAlpha)
	require.True(t, ctrl.Active)
	require.Equal(t, int32(0xff), ctrl.Max)

	require.NoError(t, c.SetControl(ctx, ControlAlpha, 0x80))
	require.Equal(t, uint32(0x80), c.transform.Dst.Alpha)

	_, err = c.SetFormat(ctx, QueueDestination, format.FourCCRGB555, 64, 64)
	require.NoError(t, err)
	ctrl, _ = findControl(t, c.Controls(ctx), ControlAlpha)
	require.Equal(t, int32(1), ctrl.Max)
	require.Equal(t, int32(1), ctrl.Value)
	require.Equal(t, uint32(1), c.transform.Dst.Alpha)

	_, err = c.SetFormat(ctx, QueueDestination, format.FourCCRGB565, 64, 64)
	require.NoError(t, err)
	ctrl, _ = findControl(t, c.Controls(ctx), ControlAlpha)
	require.False(t, ctrl.Active)
	require.Zero(t, ctrl.Value)
	require.NoError(t, c.SetControl(ctx, ControlAlpha, 0))
}

func TestAlphaControlAbsent(t *testing.T) {
	ctx := testCtx(t)
	v := testVariant()
	v.HasAlpha = false
	_, dev := newTestDevice(ctx, t, v)
	c := newFormattedContext(ctx, t, dev, nil)

	_, ok := findControl(t, c.Controls(ctx), ControlAlpha)
	require.False(t, ok)
	var invalid types.ErrInvalidArgument
	require.ErrorAs(t, c.SetControl(ctx, ControlAlpha, 0), &invalid)
}
