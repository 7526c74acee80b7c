package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/types"
)

func TestPrepareDMAOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fourcc  format.FourCC
		variant types.Variant
		want    DMAOffset
	}{
		{
			name:    "packed without pixel offsets",
			fourcc:  format.FourCCYUYV,
			variant: types.Variant{},
			want:    DMAOffset{YH: 32 * 2, YV: 16, CbH: 32, CbV: 16, CrH: 32, CrV: 16},
		},
		{
			name:    "three plane 4:2:0 without pixel offsets",
			fourcc:  format.FourCCYUV420M,
			variant: types.Variant{},
			want:    DMAOffset{YH: 32, YV: 16, CbH: 16, CbV: 8, CrH: 16, CrV: 8},
		},
		{
			name:    "two plane 4:2:0 without pixel offsets",
			fourcc:  format.FourCCNV12,
			variant: types.Variant{},
			want:    DMAOffset{YH: 32, YV: 16, CbH: 32, CbV: 8, CrH: 32, CrV: 8},
		},
		{
			name:    "native pixel offsets",
			fourcc:  format.FourCCYUV420M,
			variant: types.Variant{PixelHOffset: true},
			want:    DMAOffset{YH: 32, YV: 16, CbH: 32, CbV: 16, CrH: 32, CrV: 16},
		},
		{
			name:    "RGB32 without pixel offsets",
			fourcc:  format.FourCCBGR32,
			variant: types.Variant{},
			want:    DMAOffset{YH: 32 * 4, YV: 16, CbH: 32, CbV: 16, CrH: 32, CrV: 16},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFrame(t, tt.fourcc, 640, 480)
			f.FullWidth, f.FullHeight = 1024, 768
			require.NoError(t, f.SetCrop(32, 16, 640, 480))

			_, ok := f.DMAOffset()
			require.False(t, ok)

			require.Equal(t, tt.want, f.PrepareDMAOffset(tt.variant))
			cached, ok := f.DMAOffset()
			require.True(t, ok)
			require.Equal(t, tt.want, cached)
		})
	}
}

func TestFrameFormatChangeInvalidatesOffsets(t *testing.T) {
	t.Parallel()

	f := newFrame(t, format.FourCCNV12, 640, 480)
	f.PrepareDMAOffset(types.Variant{})
	_, ok := f.DMAOffset()
	require.True(t, ok)

	f.SetFormat(mustFormat(t, format.FourCCYUYV))
	_, ok = f.DMAOffset()
	require.False(t, ok)
}

func TestFrameFillAndReport(t *testing.T) {
	t.Parallel()

	f := &Frame{}
	f.SetFormat(mustFormat(t, format.FourCCYUYV))

	var pix format.MPlaneFormat
	format.Adjust(f.Format, 640, 480, &pix)
	require.NoError(t, f.Fill(&pix))
	require.Equal(t, uint32(640), f.FullWidth)
	require.Equal(t, uint32(480), f.FullHeight)
	require.Equal(t, uint32(640*480*2), f.Payload[0])

	require.Equal(t, pix, f.MPlaneFormat())

	require.Error(t, f.SetCrop(600, 0, 100, 100))
	require.Error(t, f.SetCrop(0, 0, 0, 100))
	require.NoError(t, f.SetCrop(40, 40, 600, 440))
	require.Equal(t, uint32(600), f.Width)

	empty := &Frame{}
	require.Error(t, empty.Fill(&pix))
}
