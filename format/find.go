// find.go implements the lookups over the format catalog.

package format

import (
	"fmt"
)

// ErrNotFound is returned when no supported format satisfies a lookup.
type ErrNotFound struct {
	FourCC  *FourCC
	BusCode *BusCode
	Mask    Flags
	Index   int
}

func (e ErrNotFound) Error() string {
	switch {
	case e.FourCC != nil:
		return fmt.Sprintf("format %s with flags %s is not supported", *e.FourCC, e.Mask)
	case e.BusCode != nil:
		return fmt.Sprintf("bus code %s with flags %s is not supported", *e.BusCode, e.Mask)
	}
	return fmt.Sprintf("no format #%d with flags %s", e.Index, e.Mask)
}

// Count returns the size of the (unfiltered) catalog.
func Count() int {
	return len(catalog)
}

// Get returns the index-th entry of the unfiltered catalog.
func Get(index int) (*Descriptor, error) {
	if index < 0 || index >= len(catalog) {
		return nil, ErrNotFound{Index: index}
	}
	return &catalog[index], nil
}

// All returns a copy of the catalog.
func All() []Descriptor {
	result := make([]Descriptor, len(catalog))
	copy(result, catalog[:])
	return result
}

// Find scans the catalog for a format having any of the flags in mask.
//
// The first such format whose pixel code equals *fourcc, or whose bus
// code equals *busCode, is returned. Otherwise the index-th format
// matching the mask (counting matching formats only) is returned as a
// default; a negative index disables the default.
func Find(
	fourcc *FourCC,
	busCode *BusCode,
	mask Flags,
	index int,
) (*Descriptor, error) {
	notFound := ErrNotFound{FourCC: fourcc, BusCode: busCode, Mask: mask, Index: index}
	if index >= len(catalog) {
		return nil, notFound
	}

	var def *Descriptor
	id := 0
	for i := range catalog {
		f := &catalog[i]
		if !f.HasFlags(mask) {
			continue
		}
		if fourcc != nil && f.FourCC == *fourcc {
			return f, nil
		}
		if busCode != nil && f.BusCode == *busCode {
			return f, nil
		}
		if index == id {
			def = f
		}
		id++
	}
	if def == nil {
		return nil, notFound
	}
	return def, nil
}

// FindByFourCC is a shorthand for Find with only the pixel code set.
func FindByFourCC(fourcc FourCC, mask Flags) (*Descriptor, error) {
	return Find(&fourcc, nil, mask, -1)
}

// FindByBusCode is a shorthand for Find with only the bus code set.
func FindByBusCode(busCode BusCode, mask Flags) (*Descriptor, error) {
	return Find(nil, &busCode, mask, -1)
}
