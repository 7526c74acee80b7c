// transform.go defines the complete geometric description of a transform.

package geometry

// Transform is everything the geometry resolver derives for a pair of
// source and destination frames.
type Transform struct {
	Src Frame
	Dst Frame

	Rotation Rotation
	HFlip    bool
	VFlip    bool

	Scaler Scaler
	Order  ChannelOrders
}

// NewTransform returns a transform with the scaler enabled.
func NewTransform() *Transform {
	return &Transform{
		Scaler: Scaler{
			Enabled: true,
		},
	}
}
