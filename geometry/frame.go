// frame.go defines the frame descriptor owned by a processing context.

package geometry

import (
	"fmt"

	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/types"
)

// DMAOffset is the per-plane position of the crop window inside the
// buffer, in the units the DMA engine expects.
type DMAOffset struct {
	YH, YV   uint32
	CbH, CbV uint32
	CrH, CrV uint32
}

// Frame describes one side (source or destination) of a transform.
type Frame struct {
	// Format is a reference into the format catalog.
	Format *format.Descriptor

	// FullWidth and FullHeight are the buffer dimensions in pixels
	// (i.e. the stride).
	FullWidth  uint32
	FullHeight uint32

	// OrigWidth and OrigHeight are the dimensions as negotiated.
	OrigWidth  uint32
	OrigHeight uint32

	// OffsH and OffsV is the top-left corner of the crop window.
	OffsH uint32
	OffsV uint32

	// Width and Height is the size of the crop window.
	Width  uint32
	Height uint32

	Payload [format.MaxPlanes]uint32
	Alpha   uint32

	dmaOffset      DMAOffset
	dmaOffsetValid bool
}

func (f *Frame) String() string {
	return fmt.Sprintf(
		"%s %dx%d@%d,%d in %dx%d",
		f.Format, f.Width, f.Height, f.OffsH, f.OffsV, f.FullWidth, f.FullHeight,
	)
}

// SetFormat selects a new pixel format and drops everything derived
// from the previous one.
func (f *Frame) SetFormat(desc *format.Descriptor) {
	f.Format = desc
	f.invalidate()
}

func (f *Frame) invalidate() {
	f.dmaOffset = DMAOffset{}
	f.dmaOffsetValid = false
}

func (f *Frame) PixelCount() uint32 {
	return f.Width * f.Height
}

// Fill configures the frame from a negotiated multi-plane format. The
// crop window is reset to the full image.
func (f *Frame) Fill(pix *format.MPlaneFormat) error {
	if f.Format == nil {
		return types.ErrInvalidArgument{Reason: "the frame has no format selected"}
	}
	if pix.Width == 0 || pix.Height == 0 {
		return types.ErrInvalidArgument{Reason: fmt.Sprintf("zero sized frame %dx%d", pix.Width, pix.Height)}
	}

	f.FullWidth = pix.Planes[0].BytesPerLine
	if f.Format.ColPlanes == 1 && f.Format.PlaneDepth(0) != 0 {
		f.FullWidth = (f.FullWidth * 8) / f.Format.PlaneDepth(0)
	}
	f.FullHeight = pix.Height
	f.Width = pix.Width
	f.Height = pix.Height
	f.OrigWidth = pix.Width
	f.OrigHeight = pix.Height
	f.OffsH = 0
	f.OffsV = 0
	for i := 0; i < int(f.Format.MemPlanes) && i < format.MaxPlanes; i++ {
		f.Payload[i] = pix.Planes[i].SizeImage
	}
	f.invalidate()
	return nil
}

// MPlaneFormat reports the frame as a multi-plane format.
func (f *Frame) MPlaneFormat() format.MPlaneFormat {
	pix := format.MPlaneFormat{
		Width:     f.OrigWidth,
		Height:    f.OrigHeight,
		FourCC:    f.Format.FourCC,
		NumPlanes: f.Format.MemPlanes,
	}

	for i := 0; i < int(pix.NumPlanes) && i < format.MaxPlanes; i++ {
		bpl := f.FullWidth
		if f.Format.ColPlanes == 1 { // packed formats
			bpl = (bpl * f.Format.PlaneDepth(0)) / 8
		}
		pix.Planes[i].BytesPerLine = bpl

		if f.Format.HasFlags(format.FlagCompressed) {
			pix.Planes[i].SizeImage = f.Payload[i]
			continue
		}
		pix.Planes[i].SizeImage = (f.OrigWidth * f.OrigHeight * f.Format.PlaneDepth(i)) / 8
	}
	return pix
}

// SetCrop moves the crop window; it must fit into the buffer.
func (f *Frame) SetCrop(offsH, offsV, width, height uint32) error {
	if width == 0 || height == 0 {
		return types.ErrInvalidArgument{Reason: fmt.Sprintf("zero sized crop %dx%d", width, height)}
	}
	if offsH+width > f.FullWidth || offsV+height > f.FullHeight {
		return types.ErrInvalidArgument{Reason: fmt.Sprintf(
			"crop %dx%d@%d,%d does not fit into %dx%d",
			width, height, offsH, offsV, f.FullWidth, f.FullHeight,
		)}
	}
	f.OffsH, f.OffsV = offsH, offsV
	f.Width, f.Height = width, height
	f.invalidate()
	return nil
}

// DMAOffset returns the cached offsets; ok is false if they have not been
// computed since the last format or crop change.
func (f *Frame) DMAOffset() (_ DMAOffset, ok bool) {
	return f.dmaOffset, f.dmaOffsetValid
}

// PrepareDMAOffset computes (and caches) the per-plane offsets of the
// crop window.
//
// On variants without native pixel offsets the horizontal luma offset
// is converted to bytes, and the chroma offsets are halved horizontally
// for three plane formats and vertically for 4:2:0 formats.
func (f *Frame) PrepareDMAOffset(v types.Variant) DMAOffset {
	depth := f.Format.TotalDepth()

	off := DMAOffset{
		YH:  f.OffsH,
		YV:  f.OffsV,
		CbH: f.OffsH,
		CbV: f.OffsV,
		CrH: f.OffsH,
		CrV: f.OffsV,
	}

	if !v.PixelHOffset {
		off.YH *= depth >> 3
		if f.Format.ColPlanes == 3 {
			off.CbH >>= 1
			off.CrH >>= 1
		}
		if f.Format.Color.IsYUV420() {
			off.CbV >>= 1
			off.CrV >>= 1
		}
	}

	f.dmaOffset = off
	f.dmaOffsetValid = true
	return off
}
