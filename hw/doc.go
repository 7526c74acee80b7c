// Package hw defines the capabilities camif consumes from the platform:
// the register block, the interrupt line, buffer memory, clocks and
// runtime power references. Register bit layouts stay behind these
// interfaces.
package hw
