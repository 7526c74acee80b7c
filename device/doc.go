// Package device arbitrates a single hardware unit between
// memory-to-memory processing contexts and a capture session: it routes
// completion interrupts, drains the hardware on suspend and restores it
// on resume, and translates controls into transform parameters.
package device
