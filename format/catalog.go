// catalog.go holds the static table of supported pixel formats.

package format

var catalog = [...]Descriptor{
	{
		Name:      "RGB565",
		FourCC:    FourCCRGB565,
		Depth:     []uint8{16},
		Color:     ColorRGB565,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagM2M,
	}, {
		Name:      "BGR666",
		FourCC:    FourCCBGR666,
		Depth:     []uint8{32},
		Color:     ColorRGB666,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagM2M,
	}, {
		Name:      "ARGB8888, 32 bpp",
		FourCC:    FourCCBGR32,
		Depth:     []uint8{32},
		Color:     ColorRGB888,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagM2M | FlagHasAlpha,
	}, {
		Name:      "ARGB1555",
		FourCC:    FourCCRGB555,
		Depth:     []uint8{16},
		Color:     ColorRGB555,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagM2MOut | FlagHasAlpha,
	}, {
		Name:      "ARGB4444",
		FourCC:    FourCCRGB444,
		Depth:     []uint8{16},
		Color:     ColorRGB444,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagM2MOut | FlagHasAlpha,
	}, {
		Name:    "YUV 4:4:4",
		BusCode: BusCodeYUV8_1X24,
		Color:   ColorYCbCr444Local,
		Flags:   FlagCapture | FlagWriteback,
	}, {
		Name:      "YUV 4:2:2 packed, YCbYCr",
		FourCC:    FourCCYUYV,
		BusCode:   BusCodeYUYV8_2X8,
		Depth:     []uint8{16},
		Color:     ColorYCbYCr422_1P,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagM2M | FlagCapture,
	}, {
		Name:      "YUV 4:2:2 packed, CbYCrY",
		FourCC:    FourCCUYVY,
		BusCode:   BusCodeUYVY8_2X8,
		Depth:     []uint8{16},
		Color:     ColorCbYCrY422_1P,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagM2M | FlagCapture,
	}, {
		Name:      "YUV 4:2:2 packed, CrYCbY",
		FourCC:    FourCCVYUY,
		BusCode:   BusCodeVYUY8_2X8,
		Depth:     []uint8{16},
		Color:     ColorCrYCbY422_1P,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagM2M | FlagCapture,
	}, {
		Name:      "YUV 4:2:2 packed, YCrYCb",
		FourCC:    FourCCYVYU,
		BusCode:   BusCodeYVYU8_2X8,
		Depth:     []uint8{16},
		Color:     ColorYCrYCb422_1P,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagM2M | FlagCapture,
	}, {
		Name:      "YUV 4:2:2 planar, Y/CbCr",
		FourCC:    FourCCNV16,
		Depth:     []uint8{16},
		Color:     ColorYCbCr422_2P,
		MemPlanes: 1,
		ColPlanes: 2,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:2 planar, Y/CrCb",
		FourCC:    FourCCNV61,
		Depth:     []uint8{16},
		Color:     ColorYCrCb422_2P,
		MemPlanes: 1,
		ColPlanes: 2,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 planar, YCbCr",
		FourCC:    FourCCYUV420,
		Depth:     []uint8{12},
		Color:     ColorYCbCr420_3P,
		MemPlanes: 1,
		ColPlanes: 3,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 planar, YCrCb",
		FourCC:    FourCCYVU420,
		Depth:     []uint8{12},
		Color:     ColorYCrCb420_3P,
		MemPlanes: 1,
		ColPlanes: 3,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 planar, YCrCb, stride aligned",
		FourCC:    FourCCAYV12,
		Depth:     []uint8{12},
		Color:     ColorYCrCb420_3P,
		MemPlanes: 1,
		ColPlanes: 3,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 planar, Y/CbCr",
		FourCC:    FourCCNV12,
		Depth:     []uint8{12},
		Color:     ColorYCbCr420_2P,
		MemPlanes: 1,
		ColPlanes: 2,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 planar, Y/CrCb",
		FourCC:    FourCCNV21,
		Depth:     []uint8{12},
		Color:     ColorYCrCb420_2P,
		MemPlanes: 1,
		ColPlanes: 2,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 non-contig. 2p, Y/CbCr",
		FourCC:    FourCCNV12M,
		Depth:     []uint8{8, 4},
		Color:     ColorYCbCr420_2P,
		MemPlanes: 2,
		ColPlanes: 2,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 non-contig. 2p, Y/CrCb",
		FourCC:    FourCCNV21M,
		Depth:     []uint8{8, 4},
		Color:     ColorYCrCb420_2P,
		MemPlanes: 2,
		ColPlanes: 2,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 non-contig. 3p, Y/Cb/Cr",
		FourCC:    FourCCYUV420M,
		Depth:     []uint8{8, 2, 2},
		Color:     ColorYCbCr420_3P,
		MemPlanes: 3,
		ColPlanes: 3,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 non-contig. 3p, Y/Cr/Cb",
		FourCC:    FourCCYVU420M,
		Depth:     []uint8{8, 2, 2},
		Color:     ColorYCrCb420_3P,
		MemPlanes: 3,
		ColPlanes: 3,
		Flags:     FlagM2M,
	}, {
		Name:      "YUV 4:2:0 non-contig. 2p, tiled",
		FourCC:    FourCCNV12MT,
		Depth:     []uint8{8, 4},
		Color:     ColorYCbCr420_2P,
		MemPlanes: 2,
		ColPlanes: 2,
		Flags:     FlagM2M,
	}, {
		Name:      "JPEG encoded data",
		FourCC:    FourCCJPEG,
		BusCode:   BusCodeJPEG_1X8,
		Depth:     []uint8{8},
		Color:     ColorJPEG,
		MemPlanes: 1,
		ColPlanes: 1,
		Flags:     FlagCapture | FlagCompressed,
	}, {
		Name:           "S5C73MX interleaved UYVY/JPEG",
		FourCC:         FourCCS5CUYVYJPG,
		BusCode:        BusCodeS5CUYVYJPEG_1X8,
		Depth:          []uint8{8},
		Color:          ColorYUYVJPEG,
		MemPlanes:      2,
		ColPlanes:      1,
		MetaDataPlanes: 0x2, // plane 1 holds frame meta data
		Flags:          FlagCapture | FlagCompressed,
	}, {
		Name:      "YUV/JPEG interleaved data",
		FourCC:    FourCCInterleaved,
		BusCode:   BusCodeInterleaved,
		Depth:     []uint8{8, 8},
		Color:     ColorInterleaved,
		MemPlanes: 2,
		ColPlanes: 2,
		Flags:     FlagCapture,
	},
}
