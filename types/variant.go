// variant.go defines the per-revision hardware capability descriptor.

package types

// PixLimit holds the image size limits of a hardware revision.
type PixLimit struct {
	ScalerEnabledWidth          uint32 `yaml:"scaler_en_w"`
	ScalerDisabledWidth         uint32 `yaml:"scaler_dis_w"`
	InputRotationEnabledHeight  uint32 `yaml:"in_rot_en_h"`
	InputRotationDisabledWidth  uint32 `yaml:"in_rot_dis_w"`
	OutputRotationEnabledWidth  uint32 `yaml:"out_rot_en_w"`
	OutputRotationDisabledWidth uint32 `yaml:"out_rot_dis_w"`
}

// Variant describes what a particular hardware unit is capable of.
// It is injected at construction time; nothing in camif branches on
// the SoC name itself.
type Variant struct {
	// PixelHOffset is set when the DMA engine takes horizontal offsets
	// in pixels rather than in bytes.
	PixelHOffset bool `yaml:"pix_hoff"`

	HasInputRotation  bool `yaml:"has_inp_rot"`
	HasOutputRotation bool `yaml:"has_out_rot"`
	HasCameraIF       bool `yaml:"has_cam_if"`
	HasISPWriteback   bool `yaml:"has_isp_wb"`
	HasCIStatus2      bool `yaml:"has_cistatus2"`
	HasAlpha          bool `yaml:"has_alpha"`

	// HasMainScalerExt selects 14 fractional bits of the main scaler
	// ratio instead of 8.
	HasMainScalerExt bool `yaml:"has_mainscaler_ext"`

	MinInputPixSize  uint32 `yaml:"min_inp_pixsize"`
	MinOutputPixSize uint32 `yaml:"min_out_pixsize"`
	HorOffsAlign     uint32 `yaml:"hor_offs_align"`
	MinVSizeAlign    uint32 `yaml:"min_vsize_align"`
	OutBufCount      uint32 `yaml:"out_buf_count"`

	PixLimit PixLimit `yaml:"pix_limit"`
}

// MainScalerShift returns the number of fractional bits of the main
// scaler ratio.
func (v Variant) MainScalerShift() uint {
	if v.HasMainScalerExt {
		return 14
	}
	return 8
}
