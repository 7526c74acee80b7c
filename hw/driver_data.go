// driver_data.go provides the built-in capability tables of the known SoCs.

package hw

import (
	"fmt"
	"sort"

	"github.com/xaionaro-go/camif/types"
)

// MaxUnits is the maximal number of hardware units on a SoC.
const MaxUnits = 4

// DriverData is the per-SoC description of the hardware units.
type DriverData struct {
	Name     string
	Variants [MaxUnits]*types.Variant
	NumUnits int

	// BusClockRate is the rate the bus clock is set to, in Hz.
	BusClockRate uint64
}

// Variant returns the capabilities of the given unit.
func (d *DriverData) Variant(unitID int) (types.Variant, error) {
	if unitID < 0 || unitID >= d.NumUnits || d.Variants[unitID] == nil {
		return types.Variant{}, types.ErrInvalidArgument{
			Reason: fmt.Sprintf("%s has no unit %d (it has %d)", d.Name, unitID, d.NumUnits),
		}
	}
	return *d.Variants[unitID], nil
}

var pixLimits = [...]types.PixLimit{
	{
		ScalerEnabledWidth:          3264,
		ScalerDisabledWidth:         8192,
		InputRotationEnabledHeight:  1920,
		InputRotationDisabledWidth:  8192,
		OutputRotationEnabledWidth:  1920,
		OutputRotationDisabledWidth: 4224,
	},
	{
		ScalerEnabledWidth:          4224,
		ScalerDisabledWidth:         8192,
		InputRotationEnabledHeight:  1920,
		InputRotationDisabledWidth:  8192,
		OutputRotationEnabledWidth:  1920,
		OutputRotationDisabledWidth: 4224,
	},
	{
		ScalerEnabledWidth:          1920,
		ScalerDisabledWidth:         8192,
		InputRotationEnabledHeight:  1280,
		InputRotationDisabledWidth:  8192,
		OutputRotationEnabledWidth:  1280,
		OutputRotationDisabledWidth: 1920,
	},
	{
		ScalerEnabledWidth:          1920,
		ScalerDisabledWidth:         8192,
		InputRotationEnabledHeight:  1366,
		InputRotationDisabledWidth:  8192,
		OutputRotationEnabledWidth:  1366,
		OutputRotationDisabledWidth: 1920,
	},
}

var (
	fimc0VariantS5P = types.Variant{
		HasInputRotation:  true,
		HasOutputRotation: true,
		HasCameraIF:       true,
		MinInputPixSize:   16,
		MinOutputPixSize:  16,
		HorOffsAlign:      8,
		MinVSizeAlign:     16,
		OutBufCount:       4,
		PixLimit:          pixLimits[0],
	}

	fimc2VariantS5P = types.Variant{
		HasCameraIF:      true,
		MinInputPixSize:  16,
		MinOutputPixSize: 16,
		HorOffsAlign:     8,
		MinVSizeAlign:    16,
		OutBufCount:      4,
		PixLimit:         pixLimits[1],
	}

	fimc0VariantS5PV210 = types.Variant{
		PixelHOffset:      true,
		HasInputRotation:  true,
		HasOutputRotation: true,
		HasCameraIF:       true,
		MinInputPixSize:   16,
		MinOutputPixSize:  16,
		HorOffsAlign:      8,
		MinVSizeAlign:     16,
		OutBufCount:       4,
		PixLimit:          pixLimits[1],
	}

	fimc1VariantS5PV210 = types.Variant{
		PixelHOffset:      true,
		HasInputRotation:  true,
		HasOutputRotation: true,
		HasCameraIF:       true,
		HasMainScalerExt:  true,
		MinInputPixSize:   16,
		MinOutputPixSize:  16,
		HorOffsAlign:      1,
		MinVSizeAlign:     1,
		OutBufCount:       4,
		PixLimit:          pixLimits[2],
	}

	fimc2VariantS5PV210 = types.Variant{
		PixelHOffset:     true,
		HasCameraIF:      true,
		MinInputPixSize:  16,
		MinOutputPixSize: 16,
		HorOffsAlign:     8,
		MinVSizeAlign:    16,
		OutBufCount:      4,
		PixLimit:         pixLimits[2],
	}

	fimc0VariantExynos4 = types.Variant{
		PixelHOffset:      true,
		HasInputRotation:  true,
		HasOutputRotation: true,
		HasCameraIF:       true,
		HasISPWriteback:   true,
		HasCIStatus2:      true,
		HasMainScalerExt:  true,
		HasAlpha:          true,
		MinInputPixSize:   16,
		MinOutputPixSize:  16,
		HorOffsAlign:      2,
		MinVSizeAlign:     1,
		OutBufCount:       32,
		PixLimit:          pixLimits[1],
	}

	fimc3VariantExynos4 = types.Variant{
		PixelHOffset:      true,
		HasInputRotation:  true,
		HasOutputRotation: true,
		HasCameraIF:       true,
		HasCIStatus2:      true,
		HasMainScalerExt:  true,
		HasAlpha:          true,
		MinInputPixSize:   16,
		MinOutputPixSize:  16,
		HorOffsAlign:      2,
		MinVSizeAlign:     1,
		OutBufCount:       32,
		PixLimit:          pixLimits[3],
	}
)

var driverData = map[string]*DriverData{
	// S5PC100
	"s5p-fimc": {
		Name: "s5p-fimc",
		Variants: [MaxUnits]*types.Variant{
			&fimc0VariantS5P,
			&fimc0VariantS5P,
			&fimc2VariantS5P,
		},
		NumUnits:     3,
		BusClockRate: 133000000,
	},
	// S5PV210, S5PC110
	"s5pv210-fimc": {
		Name: "s5pv210-fimc",
		Variants: [MaxUnits]*types.Variant{
			&fimc0VariantS5PV210,
			&fimc1VariantS5PV210,
			&fimc2VariantS5PV210,
		},
		NumUnits:     3,
		BusClockRate: 166000000,
	},
	// EXYNOS4210, S5PV310, S5PC210
	"exynos4-fimc": {
		Name: "exynos4-fimc",
		Variants: [MaxUnits]*types.Variant{
			&fimc0VariantExynos4,
			&fimc0VariantExynos4,
			&fimc0VariantExynos4,
			&fimc3VariantExynos4,
		},
		NumUnits:     4,
		BusClockRate: 166000000,
	},
}

// LookupDriverData returns the built-in description of the SoC. The
// returned value is a copy and may be modified freely.
func LookupDriverData(name string) (*DriverData, error) {
	d, ok := driverData[name]
	if !ok {
		return nil, types.ErrInvalidArgument{
			Reason: fmt.Sprintf("unknown SoC '%s', known are: %v", name, KnownSoCs()),
		}
	}
	result := *d
	for idx, v := range d.Variants {
		if v == nil {
			continue
		}
		vCopy := *v
		result.Variants[idx] = &vCopy
	}
	return &result, nil
}

// KnownSoCs returns the names accepted by LookupDriverData.
func KnownSoCs() []string {
	result := make([]string, 0, len(driverData))
	for name := range driverData {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
