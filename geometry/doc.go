// Package geometry computes the hardware programming parameters of a
// transform: scaler ratios, plane addresses, chroma channel ordering
// and DMA offsets.
package geometry
