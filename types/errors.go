// errors.go defines the error taxonomy shared by camif packages.

package types

import (
	"fmt"
	"time"
)

// ErrInvalidArgument is returned for malformed requests: empty frames,
// an unsupported number of color planes, mismatching geometry and such.
type ErrInvalidArgument struct {
	Reason string
	Err    error
}

func (e ErrInvalidArgument) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid argument: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid argument: %s", e.Reason)
}

func (e ErrInvalidArgument) Unwrap() error {
	return e.Err
}

// ErrUnsupportedConfiguration is returned when the hardware cannot do
// what was asked (missing rotator, too extreme a scaling ratio, ...).
type ErrUnsupportedConfiguration struct {
	Reason string
}

func (e ErrUnsupportedConfiguration) Error() string {
	return fmt.Sprintf("unsupported configuration: %s", e.Reason)
}

// ErrTimeout is returned when the hardware did not drain in time.
// The operation may be retried.
type ErrTimeout struct {
	Operation string
	Timeout   time.Duration
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("%s did not complete within %v, try again later", e.Operation, e.Timeout)
}

func (e ErrTimeout) Temporary() bool {
	return true
}

// ErrBusy is returned when a job is submitted while the previous one
// still holds the hardware.
type ErrBusy struct {
	Reason string
}

func (e ErrBusy) Error() string {
	return fmt.Sprintf("device is busy: %s", e.Reason)
}

func (e ErrBusy) Temporary() bool {
	return true
}

// ErrHardwareFault is the panic value raised on a memory protection
// fault: the hardware's view of memory cannot be trusted anymore.
type ErrHardwareFault struct {
	UnitID        int
	FaultAddr     uint64
	PageTableBase uint64
}

func (e ErrHardwareFault) Error() string {
	return fmt.Sprintf(
		"unit %d: page fault at 0x%x (page table base 0x%x), unrecoverable",
		e.UnitID, e.FaultAddr, e.PageTableBase,
	)
}
