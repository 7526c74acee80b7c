// config.go defines the parameter set committed into the register block.

package hw

import (
	"fmt"

	"github.com/xaionaro-go/camif/geometry"
)

// Mode is the kind of operation the registers are configured for.
type Mode uint8

const (
	ModeUndefined Mode = iota
	ModeM2M
	ModeCapture
)

func (m Mode) String() string {
	switch m {
	case ModeUndefined:
		return "undefined"
	case ModeM2M:
		return "m2m"
	case ModeCapture:
		return "capture"
	}
	return fmt.Sprintf("unknown_mode_%d", uint8(m))
}

// EffectType is the image effect applied by the output DMA.
type EffectType uint8

const (
	EffectBypass EffectType = iota
	EffectArbitrary
	EffectNegative
	EffectArtFreeze
	EffectEmboss
	EffectSilhouette
)

func (t EffectType) String() string {
	switch t {
	case EffectBypass:
		return "bypass"
	case EffectArbitrary:
		return "arbitrary"
	case EffectNegative:
		return "negative"
	case EffectArtFreeze:
		return "art_freeze"
	case EffectEmboss:
		return "emboss"
	case EffectSilhouette:
		return "silhouette"
	}
	return fmt.Sprintf("unknown_effect_%d", uint8(t))
}

// Effect is the effect type with its fixed chroma pattern, which is
// used by EffectArbitrary only.
type Effect struct {
	Type      EffectType
	PatternCb uint8
	PatternCr uint8
}

// ColorSpace is the color space code of the color space conversion
// equation; the values follow the V4L2 enumeration.
type ColorSpace uint8

const (
	ColorSpaceSMPTE170M ColorSpace = iota + 1
	ColorSpaceSMPTE240M
	ColorSpaceREC709
	ColorSpaceBT878
	ColorSpace470SystemM
	ColorSpace470SystemBG
	ColorSpaceJPEG
	ColorSpaceSRGB
)

// CSC is the color space conversion setup.
type CSC struct {
	// EqualizerMode selects the equation automatically by image size
	// when set.
	EqualizerMode bool
	Equation      ColorSpace
	WideRange     bool
}

// Config is everything committed into the registers before an
// operation is started.
type Config struct {
	Mode      Mode
	Transform geometry.Transform
	Effect    Effect
	CSC       CSC

	// Alpha is the alpha component written into RGB outputs.
	Alpha uint32

	InputOffset  geometry.DMAOffset
	OutputOffset geometry.DMAOffset
}
