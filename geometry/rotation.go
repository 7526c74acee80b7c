// rotation.go defines the output rotation angle.

package geometry

import (
	"fmt"
)

// Rotation is a clockwise rotation angle in degrees.
type Rotation int32

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

func (r Rotation) IsValid() bool {
	switch r {
	case Rotation0, Rotation90, Rotation180, Rotation270:
		return true
	}
	return false
}

// SwapsAxes returns true if the rotation exchanges width and height.
func (r Rotation) SwapsAxes() bool {
	return r == Rotation90 || r == Rotation270
}

func (r Rotation) String() string {
	return fmt.Sprintf("%d°", int32(r))
}
