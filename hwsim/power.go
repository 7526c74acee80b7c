// power.go implements the simulated runtime power management.

package hwsim

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/xsync"
	"go.uber.org/atomic"
)

// Power counts runtime power references and calls the runtime power
// callbacks on the first and the last one.
type Power struct {
	locker  xsync.Mutex
	pm      hw.RuntimePM
	refs    int
	enabled bool

	// active is read without the locker, so that it may be queried from
	// within the runtime power callbacks.
	active atomic.Bool

	gets atomic.Uint64
	puts atomic.Uint64
}

func newPower() *Power {
	return &Power{}
}

func (p *Power) Enable(ctx context.Context, pm hw.RuntimePM) error {
	logger.Debugf(ctx, "Enable")
	defer logger.Debugf(ctx, "/Enable")
	return xsync.DoR1(ctx, &p.locker, func() error {
		if p.enabled {
			return fmt.Errorf("runtime power management is already enabled")
		}
		p.pm = pm
		p.enabled = true
		return nil
	})
}

func (p *Power) Disable(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "Disable")
	defer func() { logger.Debugf(ctx, "/Disable: %v", _err) }()
	return xsync.DoR1(ctx, &p.locker, func() error {
		if !p.enabled {
			return nil
		}
		var err error
		if p.active.Load() {
			err = p.pm.RuntimeSuspend(ctx)
			p.active.Store(false)
		}
		p.enabled = false
		p.pm = nil
		return err
	})
}

func (p *Power) GetSync(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "GetSync")
	defer func() { logger.Debugf(ctx, "/GetSync: %v", _err) }()
	return xsync.DoR1(ctx, &p.locker, func() error {
		p.gets.Inc()
		p.refs++
		if p.active.Load() || !p.enabled {
			return nil
		}
		// operations may be started from within the resume callback
		p.active.Store(true)
		if err := p.pm.RuntimeResume(ctx); err != nil {
			p.active.Store(false)
			p.refs--
			return fmt.Errorf("unable to resume: %w", err)
		}
		return nil
	})
}

func (p *Power) PutSync(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "PutSync")
	defer func() { logger.Debugf(ctx, "/PutSync: %v", _err) }()
	return xsync.DoR1(ctx, &p.locker, func() error {
		p.puts.Inc()
		if p.refs == 0 {
			return fmt.Errorf("power reference is put more times than got")
		}
		p.refs--
		if p.refs > 0 || !p.active.Load() {
			return nil
		}
		if err := p.pm.RuntimeSuspend(ctx); err != nil {
			// the unit stays active
			return fmt.Errorf("unable to suspend: %w", err)
		}
		p.active.Store(false)
		return nil
	})
}

// IsActive reports if the unit is runtime-resumed.
func (p *Power) IsActive(ctx context.Context) bool {
	return p.active.Load()
}

// References returns the amount of held power references.
func (p *Power) References(ctx context.Context) int {
	return xsync.DoR1(ctx, &p.locker, func() int {
		return p.refs
	})
}
