package geometry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/types"
)

func mustFormat(t *testing.T, fourcc format.FourCC) *format.Descriptor {
	desc, err := format.FindByFourCC(fourcc, format.FlagM2M|format.FlagCapture)
	require.NoError(t, err)
	return desc
}

func newTestTransform(
	t *testing.T,
	srcFourCC format.FourCC, sw, sh uint32,
	dstFourCC format.FourCC, dw, dh uint32,
) *Transform {
	tr := NewTransform()
	tr.Src.SetFormat(mustFormat(t, srcFourCC))
	tr.Src.Width, tr.Src.Height = sw, sh
	tr.Dst.SetFormat(mustFormat(t, dstFourCC))
	tr.Dst.Width, tr.Dst.Height = dw, dh
	return tr
}

func TestScalerFactorMinimalShift(t *testing.T) {
	t.Parallel()

	for _, tar := range []uint32{1, 3, 16, 480, 641} {
		for src := tar; src < 64*tar; src += 1 + tar/7 {
			ratio, shift, err := ScalerFactor(src, tar)
			require.NoError(t, err, "%d -> %d", src, tar)
			require.Equal(t, uint32(1)<<shift, ratio)
			require.LessOrEqual(t, shift, uint32(5))
			require.GreaterOrEqual(t, src, tar*ratio, "%d -> %d", src, tar)
			for bigger := shift + 1; bigger <= 5; bigger++ {
				require.Less(t, src, tar<<bigger, "%d -> %d: shift %d also fits", src, tar, bigger)
			}
		}
	}
}

func TestScalerFactorLimits(t *testing.T) {
	t.Parallel()

	_, _, err := ScalerFactor(64*10, 10)
	require.Error(t, err)
	var unsupported types.ErrUnsupportedConfiguration
	require.True(t, errors.As(err, &unsupported))

	_, _, err = ScalerFactor(1000, 0)
	require.Error(t, err)

	ratio, shift, err := ScalerFactor(64*10-1, 10)
	require.NoError(t, err)
	require.Equal(t, uint32(32), ratio)
	require.Equal(t, uint32(5), shift)

	// upscaling does not need the pre-scaler
	ratio, shift, err = ScalerFactor(100, 400)
	require.NoError(t, err)
	require.Equal(t, uint32(1), ratio)
	require.Equal(t, uint32(0), shift)
}

func TestSetScalerInfo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tr := newTestTransform(t, format.FourCCYUYV, 1280, 720, format.FourCCNV12, 320, 240)
	require.NoError(t, tr.SetScalerInfo(ctx, types.Variant{}))
	sc := tr.Scaler
	require.Equal(t, uint32(4), sc.PreHRatio)
	require.Equal(t, uint32(2), sc.HFactor)
	require.Equal(t, uint32(2), sc.PreVRatio)
	require.Equal(t, uint32(1), sc.VFactor)
	require.Equal(t, uint32(320), sc.PreDstWidth)
	require.Equal(t, uint32(360), sc.PreDstHeight)
	require.Equal(t, uint32((1280<<8)/(320<<2)), sc.MainHRatio)
	require.Equal(t, uint32((720<<8)/(240<<1)), sc.MainVRatio)
	require.False(t, sc.ScaleUpH)
	require.False(t, sc.ScaleUpV)
	require.False(t, sc.CopyMode)
	require.Equal(t, uint32(1280), sc.RealWidth)
	require.Equal(t, uint32(720), sc.RealHeight)

	require.NoError(t, tr.SetScalerInfo(ctx, types.Variant{HasMainScalerExt: true}))
	require.Equal(t, uint32((1280<<14)/(320<<2)), tr.Scaler.MainHRatio)
	require.Equal(t, uint32((720<<14)/(240<<1)), tr.Scaler.MainVRatio)
}

func TestSetScalerInfoScaleUp(t *testing.T) {
	t.Parallel()

	tr := newTestTransform(t, format.FourCCNV12, 320, 240, format.FourCCNV12, 640, 240)
	require.NoError(t, tr.SetScalerInfo(context.Background(), types.Variant{}))
	require.True(t, tr.Scaler.ScaleUpH)
	require.True(t, tr.Scaler.ScaleUpV)
	require.Equal(t, uint32(1), tr.Scaler.PreHRatio)
	require.False(t, tr.Scaler.CopyMode)
}

func TestSetScalerInfoRotationSwapsTarget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	rotated := newTestTransform(t, format.FourCCYUYV, 1920, 1080, format.FourCCRGB565, 640, 480)
	rotated.Rotation = Rotation90
	require.NoError(t, rotated.SetScalerInfo(ctx, types.Variant{}))

	plain := newTestTransform(t, format.FourCCYUYV, 1920, 1080, format.FourCCRGB565, 480, 640)
	plain.Rotation = Rotation0
	require.NoError(t, plain.SetScalerInfo(ctx, types.Variant{}))

	require.Equal(t, plain.Scaler, rotated.Scaler)

	rotated.Rotation = Rotation270
	require.NoError(t, rotated.SetScalerInfo(ctx, types.Variant{}))
	require.Equal(t, plain.Scaler, rotated.Scaler)
}

func TestSetScalerInfoInvalid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var invalid types.ErrInvalidArgument

	tr := newTestTransform(t, format.FourCCNV12, 640, 480, format.FourCCNV12, 0, 480)
	err := tr.SetScalerInfo(ctx, types.Variant{})
	require.True(t, errors.As(err, &invalid))

	tr = newTestTransform(t, format.FourCCNV12, 640, 0, format.FourCCNV12, 640, 480)
	err = tr.SetScalerInfo(ctx, types.Variant{})
	require.True(t, errors.As(err, &invalid))

	var unsupported types.ErrUnsupportedConfiguration
	tr = newTestTransform(t, format.FourCCNV12, 640, 6400, format.FourCCNV12, 640, 100)
	err = tr.SetScalerInfo(ctx, types.Variant{})
	require.True(t, errors.As(err, &unsupported))
}

func TestCopyMode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		dst      format.FourCC
		dw, dh   uint32
		wantCopy bool
	}{
		{name: "identical", dst: format.FourCCNV12, dw: 640, dh: 480, wantCopy: true},
		{name: "width differs", dst: format.FourCCNV12, dw: 320, dh: 480},
		{name: "height differs", dst: format.FourCCNV12, dw: 640, dh: 240},
		{name: "format differs", dst: format.FourCCNV21, dw: 640, dh: 480},
		{name: "same color, other buffer layout", dst: format.FourCCNV12M, dw: 640, dh: 480},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tr := newTestTransform(t, format.FourCCNV12, 640, 480, tt.dst, tt.dw, tt.dh)
			require.NoError(t, tr.SetScalerInfo(ctx, types.Variant{}))
			require.Equal(t, tt.wantCopy, tr.Scaler.CopyMode)
		})
	}
}

func TestCheckScalerRatio(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckScalerRatio(true, 1920, 1080, 640, 480, Rotation0))
	require.Error(t, CheckScalerRatio(true, 6400, 480, 100, 480, Rotation0))
	// with rotation the 6400 pixels wide source is compared against the 480 tall target
	require.NoError(t, CheckScalerRatio(true, 6400, 480, 100, 480, Rotation90))

	require.NoError(t, CheckScalerRatio(false, 640, 480, 640, 480, Rotation0))
	require.Error(t, CheckScalerRatio(false, 640, 480, 640, 480, Rotation90))
	require.NoError(t, CheckScalerRatio(false, 640, 480, 480, 640, Rotation270))
}
