// address.go derives the per-plane DMA addresses of a buffer.

package geometry

import (
	"fmt"

	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/types"
)

// Buffer is the part of a device-visible buffer the geometry resolver
// needs.
type Buffer interface {
	NumPlanes() int
	// PlaneAddr returns the device-visible address of the plane.
	PlaneAddr(plane int) uint32
	// PlaneVAddr returns the CPU-visible address of the plane, if mapped.
	PlaneVAddr(plane int) uintptr
}

// AddressSet is the set of plane base addresses programmed into the
// DMA engine.
type AddressSet struct {
	Y  uint32
	Cb uint32
	Cr uint32

	// CbKVA is the CPU address of the second plane; it is set only when
	// the source produces interleaved data.
	CbKVA uintptr
}

func (a AddressSet) String() string {
	return fmt.Sprintf("y=0x%08X cb=0x%08X cr=0x%08X cb_kva=0x%X", a.Y, a.Cb, a.Cr, a.CbKVA)
}

func prepareAddrYUV420(frame *Frame, addr *AddressSet) {
	pixSize := frame.PixelCount()
	if frame.Format.IsAligned420() {
		lines := frame.OffsV + frame.Height
		addr.Cb = addr.Y + frame.FullWidth*lines
		addr.Cr = addr.Cb + (frame.FullWidth>>1)*(lines>>1)
		return
	}
	addr.Cb = addr.Y + pixSize
	addr.Cr = addr.Cb + (pixSize >> 2)
}

// PrepareAddr derives the plane addresses of buf holding a frame.
// srcColor is the color of the source frame of the transform; it
// matters for the interleaved capture case only.
func PrepareAddr(
	buf Buffer,
	frame *Frame,
	srcColor format.Color,
) (AddressSet, error) {
	var addr AddressSet
	if buf == nil || frame == nil || frame.Format == nil {
		return addr, types.ErrInvalidArgument{Reason: "a buffer and a frame with a format are required"}
	}
	desc := frame.Format
	pixSize := frame.PixelCount()

	addr.Y = buf.PlaneAddr(0)

	switch {
	case desc.MemPlanes == 1:
		switch desc.ColPlanes {
		case 1:
			addr.Cb = 0
			addr.Cr = 0
		case 2:
			// decompose Y into Y/Cb
			addr.Cb = addr.Y + pixSize
			addr.Cr = 0
		case 3:
			// decompose Y into Y/Cb/Cr
			if desc.Color.IsYUV420() {
				prepareAddrYUV420(frame, &addr)
			} else {
				addr.Cb = addr.Y + pixSize
				addr.Cr = addr.Cb + (pixSize >> 1)
			}
		default:
			return AddressSet{}, types.ErrInvalidArgument{
				Reason: fmt.Sprintf("invalid amount of color planes: %d", desc.ColPlanes),
			}
		}
	case desc.MetaDataPlanes == 0:
		if desc.MemPlanes >= 2 {
			if buf.NumPlanes() < int(desc.MemPlanes) {
				return AddressSet{}, types.ErrInvalidArgument{
					Reason: fmt.Sprintf("format %s needs %d planes, the buffer has %d", desc, desc.MemPlanes, buf.NumPlanes()),
				}
			}
			addr.Cb = buf.PlaneAddr(1)
			if srcColor.IsInterleaved() {
				addr.CbKVA = buf.PlaneVAddr(1)
			}
		}
		if desc.MemPlanes == 3 {
			addr.Cr = buf.PlaneAddr(2)
		}
	}

	if desc.IsChromaSwapped() {
		addr.Cb, addr.Cr = addr.Cr, addr.Cb
	}

	return addr, nil
}
