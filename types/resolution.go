// resolution.go provides a WxH size value with a text form.

package types

import (
	"fmt"
)

type Resolution struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func (r Resolution) PixelCount() uint32 {
	return r.Width * r.Height
}

func (r *Resolution) Parse(s string) error {
	_, err := fmt.Sscanf(s, "%dx%d", &r.Width, &r.Height)
	if err != nil {
		return fmt.Errorf("unable to parse resolution '%s': %w", s, err)
	}
	if r.Width == 0 || r.Height == 0 {
		return fmt.Errorf("resolution '%s' has a zero dimension", s)
	}
	return nil
}

// Set implements pflag.Value.
func (r *Resolution) Set(s string) error {
	return r.Parse(s)
}

func (r *Resolution) Type() string {
	return "resolution"
}
