package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdjust(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fourcc   FourCC
		width    uint32
		height   uint32
		in       MPlaneFormat
		wantBPL  []uint32
		wantSize []uint32
	}{
		{
			name:     "packed YUYV from scratch",
			fourcc:   FourCCYUYV,
			width:    640,
			height:   480,
			wantBPL:  []uint32{1280},
			wantSize: []uint32{640 * 480 * 2},
		},
		{
			name:   "packed RGB565 keeps a larger stride",
			fourcc: FourCCRGB565,
			width:  640,
			height: 480,
			in: MPlaneFormat{Planes: [MaxPlanes]PlaneFormat{
				{BytesPerLine: 2048},
			}},
			wantBPL:  []uint32{2048},
			wantSize: []uint32{640 * 480 * 2},
		},
		{
			name:     "planar NV12 single buffer",
			fourcc:   FourCCNV12,
			width:    640,
			height:   480,
			wantBPL:  []uint32{640},
			wantSize: []uint32{640 * 480 * 12 / 8},
		},
		{
			name:   "planar YUV420M three buffers share plane 0 stride",
			fourcc: FourCCYUV420M,
			width:  320,
			height: 240,
			in: MPlaneFormat{Planes: [MaxPlanes]PlaneFormat{
				{BytesPerLine: 384},
				{BytesPerLine: 10},
				{SizeImage: 1 << 20},
			}},
			wantBPL:  []uint32{384, 384, 384},
			wantSize: []uint32{320 * 240, 320 * 240 / 4, 1 << 20},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			desc, err := FindByFourCC(tt.fourcc, FlagM2M|FlagCapture)
			require.NoError(t, err)

			pix := tt.in
			Adjust(desc, tt.width, tt.height, &pix)
			require.Equal(t, desc.MemPlanes, pix.NumPlanes)
			require.Equal(t, tt.fourcc, pix.FourCC)
			require.Equal(t, tt.width, pix.Width)
			require.Equal(t, tt.height, pix.Height)
			for i := range tt.wantBPL {
				require.Equal(t, tt.wantBPL[i], pix.Planes[i].BytesPerLine, "plane %d", i)
				require.Equal(t, tt.wantSize[i], pix.Planes[i].SizeImage, "plane %d", i)
			}
		})
	}
}
