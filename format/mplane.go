// mplane.go implements the multi-plane format fitting.

package format

// PlaneFormat is the memory layout of a single memory plane.
type PlaneFormat struct {
	BytesPerLine uint32
	SizeImage    uint32
}

// MPlaneFormat is a negotiated multi-plane format as exchanged with the
// callers.
type MPlaneFormat struct {
	Width     uint32
	Height    uint32
	FourCC    FourCC
	NumPlanes uint8
	Planes    [MaxPlanes]PlaneFormat
}

// Adjust fits the requested per-plane layout to what the format
// needs for the given size: planar formats get at least width bytes
// per line, packed ones at least width*depth/8, every plane uses the
// bytes per line of plane 0 and the image size is raised to at least
// width*height*depth/8.
func Adjust(desc *Descriptor, width, height uint32, pix *MPlaneFormat) {
	var bytesPerLine uint32

	pix.NumPlanes = desc.MemPlanes
	pix.FourCC = desc.FourCC
	pix.Width = width
	pix.Height = height

	for i := 0; i < int(pix.NumPlanes) && i < MaxPlanes; i++ {
		plane := &pix.Planes[i]
		bpl := plane.BytesPerLine

		if desc.ColPlanes > 1 && (bpl == 0 || bpl < pix.Width) {
			bpl = pix.Width
		}

		if desc.ColPlanes == 1 {
			depth := desc.PlaneDepth(i)
			if bpl == 0 || depth == 0 || (bpl*8)/depth < pix.Width {
				bpl = (pix.Width * desc.PlaneDepth(0)) / 8
			}
		}

		if i == 0 {
			bytesPerLine = bpl
		}

		plane.BytesPerLine = bytesPerLine
		sizeImage := (pix.Width * pix.Height * desc.PlaneDepth(i)) / 8
		if plane.SizeImage < sizeImage {
			plane.SizeImage = sizeImage
		}
	}
}
