// color.go defines the color layouts understood by the hardware.

package format

import (
	"fmt"
)

// Color identifies a pixel layout as the hardware sees it: the color
// family plus the component order and the plane split.
type Color uint16

const (
	familyRGB         = 0x0100
	familyYUV422      = 0x0200
	familyYUV420      = 0x0400
	familyYUV444      = 0x0800
	familyJPEG        = 0x1000
	familyInterleaved = 0x2000
	familyMask        = 0xff00
)

const (
	ColorUndefined Color = 0

	ColorRGB444 Color = familyRGB | iota
	ColorRGB555
	ColorRGB565
	ColorRGB666
	ColorRGB888
)

const (
	ColorYCbYCr422_1P Color = familyYUV422 | iota
	ColorCbYCrY422_1P
	ColorCrYCbY422_1P
	ColorYCrYCb422_1P
	ColorYCbCr422_2P
	ColorYCrCb422_2P
)

const (
	ColorYCbCr420_2P Color = familyYUV420 | iota
	ColorYCrCb420_2P
	ColorYCbCr420_3P
	ColorYCrCb420_3P
)

const (
	ColorYCbCr444Local Color = familyYUV444
	ColorJPEG          Color = familyJPEG
	ColorYUYVJPEG      Color = familyJPEG | familyInterleaved
	ColorInterleaved   Color = familyInterleaved
)

func (c Color) IsRGB() bool {
	return c&familyMask == familyRGB
}

func (c Color) IsYUV422() bool {
	return c&familyMask == familyYUV422
}

func (c Color) IsYUV420() bool {
	return c&familyMask == familyYUV420
}

func (c Color) IsJPEG() bool {
	return c&familyJPEG != 0
}

func (c Color) IsInterleaved() bool {
	return c&familyInterleaved != 0
}

func (c Color) String() string {
	switch c {
	case ColorUndefined:
		return "undefined"
	case ColorRGB444:
		return "RGB444"
	case ColorRGB555:
		return "RGB555"
	case ColorRGB565:
		return "RGB565"
	case ColorRGB666:
		return "RGB666"
	case ColorRGB888:
		return "RGB888"
	case ColorYCbYCr422_1P:
		return "YCbYCr422_1P"
	case ColorCbYCrY422_1P:
		return "CbYCrY422_1P"
	case ColorCrYCbY422_1P:
		return "CrYCbY422_1P"
	case ColorYCrYCb422_1P:
		return "YCrYCb422_1P"
	case ColorYCbCr422_2P:
		return "YCbCr422_2P"
	case ColorYCrCb422_2P:
		return "YCrCb422_2P"
	case ColorYCbCr420_2P:
		return "YCbCr420_2P"
	case ColorYCrCb420_2P:
		return "YCrCb420_2P"
	case ColorYCbCr420_3P:
		return "YCbCr420_3P"
	case ColorYCrCb420_3P:
		return "YCrCb420_3P"
	case ColorYCbCr444Local:
		return "YCbCr444_LOCAL"
	case ColorJPEG:
		return "JPEG"
	case ColorYUYVJPEG:
		return "YUYV_JPEG"
	case ColorInterleaved:
		return "INTERLEAVED"
	}
	return fmt.Sprintf("Color(0x%04X)", uint16(c))
}
