// order.go implements the chroma channel order selection.

package geometry

import (
	"context"

	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/logger"
)

// ChannelOrder is the component order code programmed into the DMA
// engine. ChannelOrderDefault keeps the hardware default.
type ChannelOrder uint8

const (
	ChannelOrderDefault ChannelOrder = iota
	ChannelOrder422YCbYCr
	ChannelOrder422YCrYCb
	ChannelOrder422CbYCrY
	ChannelOrder422CrYCbY
	ChannelOrder2PLSBCbCr
	ChannelOrder2PLSBCrCb
)

func (o ChannelOrder) String() string {
	switch o {
	case ChannelOrderDefault:
		return "default"
	case ChannelOrder422YCbYCr:
		return "YCbYCr"
	case ChannelOrder422YCrYCb:
		return "YCrYCb"
	case ChannelOrder422CbYCrY:
		return "CbYCrY"
	case ChannelOrder422CrYCbY:
		return "CrYCbY"
	case ChannelOrder2PLSBCbCr:
		return "LSB_CbCr"
	case ChannelOrder2PLSBCrCb:
		return "LSB_CrCb"
	}
	return "unknown"
}

// ChannelOrders keeps the one-plane and two-plane order codes for both
// directions of a transform.
type ChannelOrders struct {
	In1P  ChannelOrder
	In2P  ChannelOrder
	Out1P ChannelOrder
	Out2P ChannelOrder
}

// ChannelOrderFor maps a color to its one-plane and two-plane order codes.
//
// The one-plane codes name the register's view of the byte order, which
// is the reverse of the memory order of the format.
func ChannelOrderFor(color format.Color) (order1P, order2P ChannelOrder) {
	switch color {
	case format.ColorYCrYCb422_1P:
		return ChannelOrder422CbYCrY, ChannelOrderDefault
	case format.ColorCbYCrY422_1P:
		return ChannelOrder422YCrYCb, ChannelOrderDefault
	case format.ColorCrYCbY422_1P:
		return ChannelOrder422YCbYCr, ChannelOrderDefault
	case format.ColorYCbYCr422_1P:
		return ChannelOrder422CrYCbY, ChannelOrderDefault
	case format.ColorYCbCr422_2P, format.ColorYCbCr420_2P:
		return ChannelOrderDefault, ChannelOrder2PLSBCbCr
	case format.ColorYCrCb422_2P, format.ColorYCrCb420_2P:
		return ChannelOrderDefault, ChannelOrder2PLSBCrCb
	}
	return ChannelOrderDefault, ChannelOrderDefault
}

// SetYUVOrder computes the channel orders of the input and output frames
// independently.
func (t *Transform) SetYUVOrder(ctx context.Context) {
	t.Order = ChannelOrders{}
	if t.Src.Format != nil {
		t.Order.In1P, t.Order.In2P = ChannelOrderFor(t.Src.Format.Color)
	}
	if t.Dst.Format != nil {
		t.Order.Out1P, t.Order.Out2P = ChannelOrderFor(t.Dst.Format.Color)
	}
	logger.Tracef(ctx, "channel orders: in %s/%s, out %s/%s",
		t.Order.In1P, t.Order.In2P, t.Order.Out1P, t.Order.Out2P)
}
