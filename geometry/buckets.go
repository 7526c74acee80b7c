// buckets.go computes the plane regions tracked by the protected-memory bookkeeping.

package geometry

import (
	"fmt"

	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/types"
)

// PlaneRegion is a device-visible memory range.
type PlaneRegion struct {
	Base uint32
	Size uint32
}

// PlaneBuckets are the luma and the two chroma regions of a capture
// buffer.
type PlaneBuckets [format.MaxPlanes]PlaneRegion

func (b PlaneBuckets) TotalSize() uint64 {
	var total uint64
	for _, r := range b {
		total += uint64(r.Size)
	}
	return total
}

// ComputePlaneBuckets returns the regions a frame occupies at the
// given addresses. Every color family is defined explicitly; a
// combination of family and plane count without a definition is
// rejected instead of being reported as empty.
func ComputePlaneBuckets(frame *Frame, addr AddressSet) (PlaneBuckets, error) {
	if frame == nil || frame.Format == nil {
		return PlaneBuckets{}, types.ErrInvalidArgument{Reason: "a frame with a format is required"}
	}
	desc := frame.Format
	pixSize := frame.PixelCount()

	var ySize, cbSize, crSize uint32
	unsupported := func() (PlaneBuckets, error) {
		return PlaneBuckets{}, types.ErrInvalidArgument{Reason: fmt.Sprintf(
			"no plane size definition for %s with %d color planes", desc.Color, desc.ColPlanes,
		)}
	}

	switch {
	case desc.HasFlags(format.FlagCompressed) || desc.Color.IsInterleaved():
		ySize = frame.Payload[0]
		if desc.MemPlanes > 1 && !desc.IsMetaDataPlane(1) {
			cbSize = frame.Payload[1]
		}
	case desc.Color.IsRGB():
		if desc.ColPlanes != 1 || desc.PlaneDepth(0) == 0 {
			return unsupported()
		}
		ySize = pixSize * desc.PlaneDepth(0) / 8
	case desc.Color.IsYUV422():
		switch desc.ColPlanes {
		case 1:
			ySize = pixSize << 1
		case 2:
			ySize, cbSize = pixSize, pixSize
		default:
			return unsupported()
		}
	case desc.Color.IsYUV420():
		switch desc.ColPlanes {
		case 2:
			ySize = pixSize
			cbSize = pixSize >> 1
		case 3:
			ySize = pixSize
			cbSize = pixSize >> 2
			crSize = pixSize >> 2
		default:
			return unsupported()
		}
	default:
		return unsupported()
	}

	return PlaneBuckets{
		{Base: addr.Y, Size: ySize},
		{Base: addr.Cb, Size: cbSize},
		{Base: addr.Cr, Size: crSize},
	}, nil
}
