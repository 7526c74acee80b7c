// descriptor.go defines the immutable description of a supported pixel format.

package format

import (
	"fmt"
)

// MaxPlanes is the maximal amount of planes (either memory or color) of
// a format.
const MaxPlanes = 3

// Descriptor describes a supported pixel format.
//
// MemPlanes and ColPlanes are independent: a three-component 4:2:0
// format may live in a single memory buffer (the chroma planes being
// computed offsets into it) or in three separately allocated buffers.
type Descriptor struct {
	Name    string
	FourCC  FourCC
	BusCode BusCode
	// Depth is the amount of bits per pixel, per plane.
	Depth     []uint8
	Color     Color
	MemPlanes uint8
	ColPlanes uint8
	// MetaDataPlanes is a bitmask of memory planes holding
	// frame meta data instead of pixels.
	MetaDataPlanes uint8
	Flags          Flags
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(%s)", d.FourCC, d.Name)
}

// HasFlags returns true if the format has any of the flags in the mask.
func (d *Descriptor) HasFlags(mask Flags) bool {
	return d.Flags&mask != 0
}

func (d *Descriptor) IsMetaDataPlane(plane int) bool {
	return d.MetaDataPlanes&(1<<plane) != 0
}

// PlaneDepth returns the depth of the plane, or zero if the format
// does not define it.
func (d *Descriptor) PlaneDepth(plane int) uint32 {
	if plane < 0 || plane >= len(d.Depth) {
		return 0
	}
	return uint32(d.Depth[plane])
}

// TotalDepth sums the depth of all color planes.
func (d *Descriptor) TotalDepth() uint32 {
	var depth uint32
	for i := 0; i < int(d.ColPlanes); i++ {
		depth += d.PlaneDepth(i)
	}
	return depth
}

// AlphaMask returns the maximal alpha value representable by the format.
func (d *Descriptor) AlphaMask() uint32 {
	switch d.Color {
	case ColorRGB888:
		return 0xff
	case ColorRGB555:
		return 0x01
	case ColorRGB444:
		return 0x0f
	}
	return 0
}

// IsChromaSwapped returns true for the Y/Cr/Cb planar formats, whose
// chroma plane addresses are swapped relative to the Y/Cb/Cr layout.
func (d *Descriptor) IsChromaSwapped() bool {
	switch d.FourCC {
	case FourCCYVU420, FourCCYVU420M, FourCCAYV12:
		return true
	}
	return false
}

// IsAligned420 returns true for the 4:2:0 planar formats whose
// chroma planes are laid out with the padded stride.
func (d *Descriptor) IsAligned420() bool {
	return d.FourCC == FourCCAYV12
}
