// smoother.go implements an adaptive moving average of operation latencies.

// Package indicator smooths noisy measurements for reporting.
package indicator

import (
	"context"

	indicators "github.com/lmpizarro/go_ehlers_indicators"
	"github.com/xaionaro-go/xsync"
	"golang.org/x/exp/constraints"
)

const (
	DefaultFastLimit = 0.5
	DefaultSlowLimit = 0.05
)

// Smoother is a MESA adaptive moving average over a sliding window of
// samples. Until the window is filled the arithmetic mean of the
// samples is reported instead.
type Smoother[T constraints.Integer | constraints.Float] struct {
	FastLimit float64
	SlowLimit float64

	locker  xsync.Mutex
	ring    []float64
	series  []float64
	next    int
	samples int
	sum     float64
	value   T
}

func NewSmoother[T constraints.Integer | constraints.Float](window int) *Smoother[T] {
	if window < 1 {
		window = 1
	}
	return &Smoother[T]{
		FastLimit: DefaultFastLimit,
		SlowLimit: DefaultSlowLimit,
		ring:      make([]float64, window),
		series:    make([]float64, window),
	}
}

// Add accounts a sample and returns the updated average.
func (s *Smoother[T]) Add(ctx context.Context, v T) T {
	return xsync.DoR1(ctx, &s.locker, func() T {
		return s.addLocked(v)
	})
}

func (s *Smoother[T]) addLocked(v T) T {
	window := len(s.ring)
	if s.samples < window {
		s.sum += float64(v)
	}
	s.ring[s.next] = float64(v)
	s.next = (s.next + 1) % window
	s.samples++

	if s.samples < window {
		s.value = T(s.sum / float64(s.samples))
		return s.value
	}

	// oldest first
	n := copy(s.series, s.ring[s.next:])
	copy(s.series[n:], s.ring[:s.next])
	result := indicators.MAMA(s.series, s.FastLimit, s.SlowLimit)
	s.value = T(result[len(result)-1])
	return s.value
}

// Value returns the current average.
func (s *Smoother[T]) Value(ctx context.Context) T {
	return xsync.DoR1(ctx, &s.locker, func() T {
		return s.value
	})
}

// Samples returns the amount of samples accounted so far.
func (s *Smoother[T]) Samples(ctx context.Context) int {
	return xsync.DoR1(ctx, &s.locker, func() int {
		return s.samples
	})
}
