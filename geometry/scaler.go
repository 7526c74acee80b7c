// scaler.go implements the scaler ratio computation.

package geometry

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/camif/types"
)

const (
	// ScalerMaxHRatio and ScalerMaxVRatio is the downscaling limit:
	// the source must be strictly less than that many times the target.
	ScalerMaxHRatio = 64
	ScalerMaxVRatio = 64

	maxPreScalerShift = 5
)

// Scaler is the state of the scaler for a transform.
type Scaler struct {
	Enabled  bool
	ScaleUpH bool
	ScaleUpV bool
	CopyMode bool

	// PreHRatio and PreVRatio are the power-of-two pre-scaler divisors,
	// and HFactor and VFactor their base-2 logarithms.
	PreHRatio uint32
	PreVRatio uint32
	HFactor   uint32
	VFactor   uint32

	PreDstWidth  uint32
	PreDstHeight uint32

	// MainHRatio and MainVRatio are fixed point, see
	// types.Variant.MainScalerShift.
	MainHRatio uint32
	MainVRatio uint32

	RealWidth  uint32
	RealHeight uint32
}

// ScalerFactor returns the coarsest power-of-two pre-scaler divisor
// (up to 32) that does not shrink src below tar, along with its shift.
// If src is smaller than tar, no pre-scaling is needed and ratio 1,
// shift 0 is returned.
func ScalerFactor(src, tar uint32) (ratio, shift uint32, _err error) {
	if uint64(src) >= ScalerMaxHRatio*uint64(tar) {
		return 0, 0, types.ErrUnsupportedConfiguration{
			Reason: fmt.Sprintf("scaling %d to %d exceeds the %dx hardware limit", src, tar, ScalerMaxHRatio),
		}
	}

	for sh := int(maxPreScalerShift); sh >= 0; sh-- {
		tmp := uint64(1) << sh
		if uint64(src) >= uint64(tar)*tmp {
			return uint32(tmp), uint32(sh), nil
		}
	}
	return 1, 0, nil
}

// CheckScalerRatio validates that a source of sw x sh can be scaled into
// a target of dw x dh rotated by rotation.
func CheckScalerRatio(
	enabled bool,
	sw, sh, dw, dh uint32,
	rotation Rotation,
) error {
	if rotation.SwapsAxes() {
		dw, dh = dh, dw
	}

	if !enabled {
		if sw == dw && sh == dh {
			return nil
		}
		return types.ErrUnsupportedConfiguration{
			Reason: fmt.Sprintf("scaler is disabled, but %dx%d != %dx%d", sw, sh, dw, dh),
		}
	}

	if uint64(sw) >= ScalerMaxHRatio*uint64(dw) || uint64(sh) >= ScalerMaxVRatio*uint64(dh) {
		return types.ErrUnsupportedConfiguration{
			Reason: fmt.Sprintf("scaling %dx%d to %dx%d exceeds the hardware limit", sw, sh, dw, dh),
		}
	}
	return nil
}

// SetScalerInfo computes the scaler parameters from the source and
// destination frames and the rotation.
func (t *Transform) SetScalerInfo(
	ctx context.Context,
	v types.Variant,
) (_err error) {
	logger.Tracef(ctx, "SetScalerInfo")
	defer func() { logger.Tracef(ctx, "/SetScalerInfo: %v", _err) }()

	sc := &t.Scaler
	src, dst := &t.Src, &t.Dst

	tx, ty := dst.Width, dst.Height
	if t.Rotation.SwapsAxes() {
		tx, ty = ty, tx
	}
	if tx == 0 || ty == 0 {
		logger.Errorf(ctx, "invalid target size: %dx%d", tx, ty)
		return types.ErrInvalidArgument{Reason: fmt.Sprintf("invalid target size %dx%d", tx, ty)}
	}

	sx, sy := src.Width, src.Height
	if sx == 0 || sy == 0 {
		logger.Errorf(ctx, "invalid source size: %dx%d", sx, sy)
		return types.ErrInvalidArgument{Reason: fmt.Sprintf("invalid source size %dx%d", sx, sy)}
	}
	sc.RealWidth = sx
	sc.RealHeight = sy

	var err error
	sc.PreHRatio, sc.HFactor, err = ScalerFactor(sx, tx)
	if err != nil {
		return fmt.Errorf("horizontal: %w", err)
	}

	sc.PreVRatio, sc.VFactor, err = ScalerFactor(sy, ty)
	if err != nil {
		return fmt.Errorf("vertical: %w", err)
	}

	sc.PreDstWidth = sx / sc.PreHRatio
	sc.PreDstHeight = sy / sc.PreVRatio

	fixedPointBits := v.MainScalerShift()
	sc.MainHRatio = uint32((uint64(sx) << fixedPointBits) / (uint64(tx) << sc.HFactor))
	sc.MainVRatio = uint32((uint64(sy) << fixedPointBits) / (uint64(ty) << sc.VFactor))

	sc.ScaleUpH = tx >= sx
	sc.ScaleUpV = ty >= sy

	sc.CopyMode = src.Format != nil && dst.Format != nil &&
		src.Format.FourCC == dst.Format.FourCC &&
		src.Width == dst.Width &&
		src.Height == dst.Height

	logger.Debugf(ctx, "scaler: %s", spew.Sdump(*sc))
	return nil
}
