// flags.go defines the capability flags of a format.

package format

import (
	"strings"
)

type Flags uint32

const (
	FlagCapture Flags = 1 << iota
	FlagM2MIn
	FlagM2MOut
	FlagHasAlpha
	FlagCompressed
	FlagWriteback

	FlagM2M = FlagM2MIn | FlagM2MOut
)

func (f Flags) String() string {
	var parts []string
	for _, item := range []struct {
		Flag Flags
		Name string
	}{
		{FlagCapture, "capture"},
		{FlagM2MIn, "m2m-in"},
		{FlagM2MOut, "m2m-out"},
		{FlagHasAlpha, "alpha"},
		{FlagCompressed, "compressed"},
		{FlagWriteback, "writeback"},
	} {
		if f&item.Flag != 0 {
			parts = append(parts, item.Name)
		}
	}
	return strings.Join(parts, "|")
}
