// clocks.go implements the simulated clock tree.

package hwsim

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/xsync"
)

// Clock is a simulated clock.
type Clock struct {
	tree *Clocks

	name     string
	refs     int
	prepared int
	enabled  int
	rate     uint64
	parent   *Clock
}

var _ hw.Clock = (*Clock)(nil)

func (c *Clock) Name() string {
	return c.name
}

func (c *Clock) Prepare(ctx context.Context) error {
	c.tree.locker.Do(ctx, func() {
		c.prepared++
	})
	return nil
}

func (c *Clock) Unprepare(ctx context.Context) {
	c.tree.locker.Do(ctx, func() {
		if c.prepared == 0 {
			logger.Errorf(ctx, "clock '%s' is unprepared more times than prepared", c.name)
			return
		}
		c.prepared--
	})
}

func (c *Clock) Enable(ctx context.Context) error {
	return xsync.DoR1(ctx, &c.tree.locker, func() error {
		if c.prepared == 0 {
			return fmt.Errorf("clock '%s' is enabled before being prepared", c.name)
		}
		c.enabled++
		return nil
	})
}

func (c *Clock) Disable(ctx context.Context) {
	c.tree.locker.Do(ctx, func() {
		if c.enabled == 0 {
			logger.Errorf(ctx, "clock '%s' is disabled more times than enabled", c.name)
			return
		}
		c.enabled--
	})
}

func (c *Clock) SetParent(ctx context.Context, parent hw.Clock) error {
	p, ok := parent.(*Clock)
	if !ok || p.tree != c.tree {
		return fmt.Errorf("clock '%s' does not belong to this clock tree", parent.Name())
	}
	c.tree.locker.Do(ctx, func() {
		c.parent = p
	})
	return nil
}

func (c *Clock) SetRate(ctx context.Context, hz uint64) error {
	return xsync.DoR1(ctx, &c.tree.locker, func() error {
		if c.parent != nil && hz > c.parent.rate {
			return fmt.Errorf("clock '%s' cannot run at %d Hz above its parent '%s' at %d Hz", c.name, hz, c.parent.name, c.parent.rate)
		}
		c.rate = hz
		return nil
	})
}

func (c *Clock) Rate() uint64 {
	return xsync.DoR1(context.Background(), &c.tree.locker, func() uint64 {
		return c.rate
	})
}

// Parent returns the name of the parent clock, if any.
func (c *Clock) Parent() string {
	return xsync.DoR1(context.Background(), &c.tree.locker, func() string {
		if c.parent == nil {
			return ""
		}
		return c.parent.name
	})
}

// Clocks is a simulated clock tree with the clocks of a single unit.
type Clocks struct {
	locker xsync.Mutex
	clocks map[string]*Clock
}

func newClocks(missing []string) *Clocks {
	t := &Clocks{
		clocks: map[string]*Clock{},
	}
	for name, rate := range map[string]uint64{
		hw.ClockGate:          0,
		hw.ClockBus:           0,
		hw.DefaultParentClock: 800000000,
	} {
		t.clocks[name] = &Clock{tree: t, name: name, rate: rate}
	}
	for _, name := range missing {
		delete(t.clocks, name)
	}
	return t
}

func (t *Clocks) Get(ctx context.Context, name string) (hw.Clock, error) {
	return xsync.DoR2(ctx, &t.locker, func() (hw.Clock, error) {
		c, ok := t.clocks[name]
		if !ok {
			return nil, fmt.Errorf("clock '%s' not found", name)
		}
		c.refs++
		return c, nil
	})
}

func (t *Clocks) Put(ctx context.Context, clk hw.Clock) {
	c, ok := clk.(*Clock)
	if !ok {
		logger.Errorf(ctx, "clock %T does not belong to this clock tree", clk)
		return
	}
	t.locker.Do(ctx, func() {
		if c.refs == 0 {
			logger.Errorf(ctx, "clock '%s' is put more times than got", c.name)
			return
		}
		c.refs--
	})
}

// Clock returns the named clock without taking a reference.
func (t *Clocks) Clock(name string) *Clock {
	return xsync.DoR1(context.Background(), &t.locker, func() *Clock {
		return t.clocks[name]
	})
}

// IsEnabled reports if the named clock is enabled.
func (t *Clocks) IsEnabled(ctx context.Context, name string) bool {
	return xsync.DoR1(ctx, &t.locker, func() bool {
		c, ok := t.clocks[name]
		return ok && c.enabled > 0
	})
}

// References reports the amount of outstanding Get calls over all clocks.
func (t *Clocks) References(ctx context.Context) int {
	return xsync.DoR1(ctx, &t.locker, func() int {
		total := 0
		for _, c := range t.clocks {
			total += c.refs
		}
		return total
	})
}
