// state.go defines the operation state bits of a hardware unit.

package device

import (
	"fmt"
	"strings"
)

// State is the bitmask of what the hardware unit is doing.
type State uint32

const (
	// StateLowPower is set between a system sleep suspend and resume.
	StateLowPower = State(1 << iota)
	// StateM2MRunning is set while any processing context is streaming.
	StateM2MRunning
	// StateM2MPending is set while a memory-to-memory job is in flight.
	StateM2MPending
	// StateM2MSuspending is set while a suspend waits for the job in
	// flight to drain.
	StateM2MSuspending
	// StateM2MSuspended is set once an in-flight job was drained by a
	// suspend; the job is reported failed on resume.
	StateM2MSuspended
	// StateCapturePending is set while a capture frame is in flight.
	StateCapturePending
	// StateCaptureRunning is set once the capture hardware was started.
	StateCaptureRunning
	// StateCaptureBusy is set while a capture session exists.
	StateCaptureBusy
	// StateCaptureApplyConfig requests a full reconfiguration before
	// the next capture frame.
	StateCaptureApplyConfig
	// StateCaptureJPEG is set for JPEG capture sessions.
	StateCaptureJPEG
	// StateCaptureSuspended is set while a capture session is suspended.
	StateCaptureSuspended

	stateEnd
)

var stateNames = map[State]string{
	StateLowPower:           "LPM",
	StateM2MRunning:         "M2M_RUN",
	StateM2MPending:         "M2M_PEND",
	StateM2MSuspending:      "M2M_SUSPENDING",
	StateM2MSuspended:       "M2M_SUSPENDED",
	StateCapturePending:     "CAPT_PEND",
	StateCaptureRunning:     "CAPT_RUN",
	StateCaptureBusy:        "CAPT_BUSY",
	StateCaptureApplyConfig: "CAPT_APPLY_CFG",
	StateCaptureJPEG:        "CAPT_JPEG",
	StateCaptureSuspended:   "CAPT_SUSPENDED",
}

func (s State) Has(mask State) bool {
	return s&mask == mask
}

func (s State) HasAny(mask State) bool {
	return s&mask != 0
}

func (s State) String() string {
	if s == 0 {
		return "IDLE"
	}
	var names []string
	for bit := State(1); bit < stateEnd; bit <<= 1 {
		if s&bit == 0 {
			continue
		}
		names = append(names, stateNames[bit])
	}
	if rest := s &^ (stateEnd - 1); rest != 0 {
		names = append(names, fmt.Sprintf("0x%X", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// ContextState is the bitmask of a processing context.
type ContextState uint32

const (
	// ContextParams marks the parameters dirty: the hardware has to be
	// reconfigured before the next job of the context.
	ContextParams = ContextState(1 << iota)
	ContextSourceFormat
	ContextDestinationFormat
	// ContextShut is set while the context waits for its job in flight
	// to finish before shutting down.
	ContextShut
)

func (s ContextState) Has(mask ContextState) bool {
	return s&mask == mask
}

func (s ContextState) String() string {
	var names []string
	for _, item := range []struct {
		bit  ContextState
		name string
	}{
		{ContextParams, "PARAMS"},
		{ContextSourceFormat, "SRC_FMT"},
		{ContextDestinationFormat, "DST_FMT"},
		{ContextShut, "SHUT"},
	} {
		if s&item.bit != 0 {
			names = append(names, item.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}
