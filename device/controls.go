// controls.go defines the runtime controls of a processing context.

package device

import (
	"fmt"

	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/types"
)

type ControlID int

const (
	ControlRotate ControlID = iota
	ControlHFlip
	ControlVFlip
	ControlAlpha
	ControlColorFX
	ControlColorFXCbCr
	ControlCacheable
	ControlContentProtection
	ControlCSCEqMode
	ControlCSCEq
	ControlCSCRange

	numControls
)

func (id ControlID) String() string {
	switch id {
	case ControlRotate:
		return "rotate"
	case ControlHFlip:
		return "horizontal_flip"
	case ControlVFlip:
		return "vertical_flip"
	case ControlAlpha:
		return "alpha_component"
	case ControlColorFX:
		return "color_effects"
	case ControlColorFXCbCr:
		return "color_effects_cbcr"
	case ControlCacheable:
		return "cacheable"
	case ControlContentProtection:
		return "content_protection"
	case ControlCSCEqMode:
		return "csc_equation_mode"
	case ControlCSCEq:
		return "csc_equation"
	case ControlCSCRange:
		return "csc_range"
	}
	return fmt.Sprintf("unknown_control_%d", int(id))
}

// ParseControlID is the inverse of ControlID.String.
func ParseControlID(s string) (ControlID, error) {
	for id := ControlID(0); id < numControls; id++ {
		if id.String() == s {
			return id, nil
		}
	}
	return -1, types.ErrInvalidArgument{Reason: fmt.Sprintf("unknown control '%s'", s)}
}

// ColorFX is the color effect selection; the values follow the V4L2
// enumeration.
type ColorFX int32

const (
	ColorFXNone ColorFX = iota
	ColorFXBW
	ColorFXSepia
	ColorFXNegative
	ColorFXEmboss
	ColorFXSketch
	ColorFXSkyBlue
	ColorFXGrassGreen
	ColorFXSkinWhiten
	ColorFXVivid
	ColorFXAqua
	ColorFXArtFreeze
	ColorFXSilhouette
	ColorFXSolarization
	ColorFXAntique
	ColorFXSetCbCr
)

// colorFXMenu is the set of the menu items offered.
const colorFXMenu = 0x983f

func (fx ColorFX) inMenu() bool {
	return fx >= 0 && fx <= ColorFXSetCbCr && colorFXMenu&(1<<uint(fx)) != 0
}

// Effect maps the color effect to the hardware effect; cbcr is the
// chroma pair used by ColorFXSetCbCr (Cb in the high byte).
func (fx ColorFX) Effect(cbcr int32) (hw.Effect, error) {
	switch fx {
	case ColorFXNone:
		return hw.Effect{Type: hw.EffectBypass}, nil
	case ColorFXBW:
		return hw.Effect{Type: hw.EffectArbitrary, PatternCb: 128, PatternCr: 128}, nil
	case ColorFXSepia:
		return hw.Effect{Type: hw.EffectArbitrary, PatternCb: 115, PatternCr: 145}, nil
	case ColorFXNegative:
		return hw.Effect{Type: hw.EffectNegative}, nil
	case ColorFXEmboss:
		return hw.Effect{Type: hw.EffectEmboss}, nil
	case ColorFXArtFreeze:
		return hw.Effect{Type: hw.EffectArtFreeze}, nil
	case ColorFXSilhouette:
		return hw.Effect{Type: hw.EffectSilhouette}, nil
	case ColorFXSetCbCr:
		return hw.Effect{
			Type:      hw.EffectArbitrary,
			PatternCb: uint8(cbcr >> 8),
			PatternCr: uint8(cbcr & 0xff),
		}, nil
	}
	return hw.Effect{}, types.ErrInvalidArgument{Reason: fmt.Sprintf("color effect %d is not supported", int32(fx))}
}

// Control is a snapshot of a single control.
type Control struct {
	ID      ControlID
	Value   int32
	Min     int32
	Max     int32
	Step    int32
	Default int32
	Active  bool
}

type controlDef struct {
	min, max, step, def int32
}

// controlDefs are the definitions of the controls independent of the
// formats; the alpha maximum depends on the destination format.
var controlDefs = [numControls]controlDef{
	ControlRotate:            {min: 0, max: 270, step: 90, def: 0},
	ControlHFlip:             {min: 0, max: 1, step: 1, def: 0},
	ControlVFlip:             {min: 0, max: 1, step: 1, def: 0},
	ControlAlpha:             {min: 0, max: 0, step: 1, def: 0},
	ControlColorFX:           {min: 0, max: int32(ColorFXSetCbCr), step: 1, def: int32(ColorFXNone)},
	ControlColorFXCbCr:       {min: 0, max: 0xffff, step: 1, def: 0},
	ControlCacheable:         {min: 0, max: 1, step: 1, def: 1},
	ControlContentProtection: {min: 0, max: 1, step: 1, def: 0},
	ControlCSCEqMode:         {min: 0, max: 1, step: 1, def: 1},
	ControlCSCEq:             {min: 0, max: int32(hw.ColorSpaceSRGB), step: 1, def: int32(hw.ColorSpaceREC709)},
	ControlCSCRange:          {min: 0, max: 1, step: 1, def: 1},
}

type control struct {
	controlDef
	present bool
	active  bool
	value   int32
}

// controlSet is the controls of a single context.
type controlSet [numControls]control

func newControlSet(v types.Variant, alphaMax uint32) controlSet {
	var set controlSet
	for id := ControlID(0); id < numControls; id++ {
		set[id] = control{
			controlDef: controlDefs[id],
			present:    true,
			active:     true,
			value:      controlDefs[id].def,
		}
	}
	set[ControlAlpha].max = int32(alphaMax)
	set[ControlAlpha].present = v.HasAlpha
	set[ControlAlpha].active = false
	return set
}

func (set *controlSet) get(id ControlID) (*control, error) {
	if id < 0 || id >= numControls || !set[id].present {
		return nil, types.ErrInvalidArgument{Reason: fmt.Sprintf("no control %s", id)}
	}
	return &set[id], nil
}

func (c *control) validate(id ControlID, value int32) error {
	if value < c.min || value > c.max {
		return types.ErrInvalidArgument{Reason: fmt.Sprintf(
			"value %d of %s is out of range [%d, %d]", value, id, c.min, c.max,
		)}
	}
	if c.step > 1 && (value-c.min)%c.step != 0 {
		return types.ErrInvalidArgument{Reason: fmt.Sprintf(
			"value %d of %s is not a multiple of %d", value, id, c.step,
		)}
	}
	if id == ControlColorFX && !ColorFX(value).inMenu() {
		return types.ErrInvalidArgument{Reason: fmt.Sprintf("color effect %d is not offered", value)}
	}
	return nil
}

func (set *controlSet) snapshot() []Control {
	result := make([]Control, 0, numControls)
	for id := ControlID(0); id < numControls; id++ {
		c := &set[id]
		if !c.present {
			continue
		}
		result = append(result, Control{
			ID:      id,
			Value:   c.value,
			Min:     c.min,
			Max:     c.max,
			Step:    c.step,
			Default: c.def,
			Active:  c.active,
		})
	}
	return result
}
