// closure_signaler.go provides a close-once signal for devices and simulated hardware.

// Package closuresignaler provides a close-once signal that goroutines
// can wait on.
package closuresignaler

import (
	"context"
	"sync"
	"time"

	"github.com/xaionaro-go/camif/logger"
)

type ClosureSignaler struct {
	closeOnce sync.Once
	c         chan struct{}
}

func New() *ClosureSignaler {
	return &ClosureSignaler{
		c: make(chan struct{}),
	}
}

func (c *ClosureSignaler) CloseChan() <-chan struct{} {
	return c.c
}

// Close closes the signal; it reports whether this call was the one that
// closed it.
func (c *ClosureSignaler) Close(ctx context.Context) bool {
	logger.Tracef(ctx, "Close")
	defer logger.Tracef(ctx, "/Close")
	closedNow := false
	c.closeOnce.Do(func() {
		close(c.c)
		closedNow = true
	})
	return closedNow
}

func (c *ClosureSignaler) IsClosed() bool {
	select {
	case <-c.c:
		return true
	default:
		return false
	}
}

// Sleep waits for the duration and returns true, or returns false
// early if the signal is closed or the context is done.
func (c *ClosureSignaler) Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return !c.IsClosed()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-c.c:
		return false
	case <-t.C:
		return true
	}
}
