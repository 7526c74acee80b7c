// fourcc.go defines the external pixel and media-bus codes.

package format

import (
	"fmt"
)

// FourCC is a V4L2-style four character pixel format code.
type FourCC uint32

func NewFourCC(a, b, c, d byte) FourCC {
	return FourCC(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

func (f FourCC) String() string {
	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08X", uint32(f))
		}
	}
	return string(b)
}

// ParseFourCC parses a four character code such as "NV12".
func ParseFourCC(s string) (FourCC, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("a fourcc must be exactly 4 characters long, got '%s'", s)
	}
	return NewFourCC(s[0], s[1], s[2], s[3]), nil
}

const (
	FourCCRGB565      FourCC = 'R' | 'G'<<8 | 'B'<<16 | 'P'<<24
	FourCCBGR666      FourCC = 'B' | 'G'<<8 | 'R'<<16 | 'H'<<24
	FourCCBGR32       FourCC = 'B' | 'G'<<8 | 'R'<<16 | '4'<<24
	FourCCRGB555      FourCC = 'R' | 'G'<<8 | 'B'<<16 | 'O'<<24
	FourCCRGB444      FourCC = 'R' | '4'<<8 | '4'<<16 | '4'<<24
	FourCCYUYV        FourCC = 'Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24
	FourCCUYVY        FourCC = 'U' | 'Y'<<8 | 'V'<<16 | 'Y'<<24
	FourCCVYUY        FourCC = 'V' | 'Y'<<8 | 'U'<<16 | 'Y'<<24
	FourCCYVYU        FourCC = 'Y' | 'V'<<8 | 'Y'<<16 | 'U'<<24
	FourCCNV16        FourCC = 'N' | 'V'<<8 | '1'<<16 | '6'<<24
	FourCCNV61        FourCC = 'N' | 'V'<<8 | '6'<<16 | '1'<<24
	FourCCYUV420      FourCC = 'Y' | 'U'<<8 | '1'<<16 | '2'<<24
	FourCCYVU420      FourCC = 'Y' | 'V'<<8 | '1'<<16 | '2'<<24
	FourCCAYV12       FourCC = 'A' | 'Y'<<8 | 'V'<<16 | '2'<<24
	FourCCNV12        FourCC = 'N' | 'V'<<8 | '1'<<16 | '2'<<24
	FourCCNV21        FourCC = 'N' | 'V'<<8 | '2'<<16 | '1'<<24
	FourCCNV12M       FourCC = 'N' | 'M'<<8 | '1'<<16 | '2'<<24
	FourCCNV21M       FourCC = 'N' | 'M'<<8 | '2'<<16 | '1'<<24
	FourCCYUV420M     FourCC = 'Y' | 'M'<<8 | '1'<<16 | '2'<<24
	FourCCYVU420M     FourCC = 'Y' | 'M'<<8 | '2'<<16 | '1'<<24
	FourCCNV12MT      FourCC = 'T' | 'M'<<8 | '1'<<16 | '2'<<24
	FourCCJPEG        FourCC = 'J' | 'P'<<8 | 'E'<<16 | 'G'<<24
	FourCCS5CUYVYJPG  FourCC = 'S' | '5'<<8 | 'C'<<16 | 'I'<<24
	FourCCInterleaved FourCC = 'I' | 'T'<<8 | 'L'<<16 | 'V'<<24
)

// BusCode is a media-bus format code, i.e. how a sensor transmits pixels.
type BusCode uint32

const (
	BusCodeNone            BusCode = 0
	BusCodeUYVY8_2X8       BusCode = 0x2006
	BusCodeVYUY8_2X8       BusCode = 0x2007
	BusCodeYUYV8_2X8       BusCode = 0x2008
	BusCodeYVYU8_2X8       BusCode = 0x2009
	BusCodeYUV8_1X24       BusCode = 0x2025
	BusCodeJPEG_1X8        BusCode = 0x4001
	BusCodeS5CUYVYJPEG_1X8 BusCode = 0x5001
	BusCodeInterleaved     BusCode = 0x5002
)

func (c BusCode) String() string {
	return fmt.Sprintf("0x%04X", uint32(c))
}
