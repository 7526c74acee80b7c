// Package format contains the immutable catalog of pixel formats the
// hardware supports, and pure lookups over it.
package format
