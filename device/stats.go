// stats.go provides the counters of a device.

package device

import (
	"context"
	"time"

	"github.com/xaionaro-go/camif/indicator"
	"go.uber.org/atomic"
)

const jobLatencyWindow = 32

type stats struct {
	interrupts         atomic.Uint64
	spuriousInterrupts atomic.Uint64
	jobsDone           atomic.Uint64
	jobsFailed         atomic.Uint64
	absorbed           atomic.Uint64
	captureFrames      atomic.Uint64
	reconfigurations   atomic.Uint64
	jobLatency         *indicator.Smoother[time.Duration]
}

func (s *stats) init() {
	s.jobLatency = indicator.NewSmoother[time.Duration](jobLatencyWindow)
}

// Stats is a snapshot of the device counters.
type Stats struct {
	Interrupts         uint64 `json:"interrupts"`
	SpuriousInterrupts uint64 `json:"spurious_interrupts"`
	JobsDone           uint64 `json:"jobs_done"`
	JobsFailed         uint64 `json:"jobs_failed"`
	// Absorbed counts completions consumed by a suspend.
	Absorbed         uint64 `json:"absorbed"`
	CaptureFrames    uint64 `json:"capture_frames"`
	Reconfigurations uint64 `json:"reconfigurations"`
	// JobLatency is the smoothed time from submission to completion
	// of the finished jobs.
	JobLatency time.Duration `json:"job_latency"`
}

func (d *Device) Stats() Stats {
	ctx := context.Background()
	return Stats{
		Interrupts:         d.stats.interrupts.Load(),
		SpuriousInterrupts: d.stats.spuriousInterrupts.Load(),
		JobsDone:           d.stats.jobsDone.Load(),
		JobsFailed:         d.stats.jobsFailed.Load(),
		Absorbed:           d.stats.absorbed.Load(),
		CaptureFrames:      d.stats.captureFrames.Load(),
		Reconfigurations:   d.stats.reconfigurations.Load(),
		JobLatency:         d.stats.jobLatency.Value(ctx),
	}
}
