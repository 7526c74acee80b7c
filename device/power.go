// power.go implements the suspend and resume coordination with the hardware in flight.

package device

import (
	"context"
	"fmt"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/camif/types"
	"github.com/xaionaro-go/xsync"
)

// M2MSuspend waits for the memory-to-memory job in flight (if any) to
// drain. The completion of the drained job is not delivered; M2MResume
// reports it failed. ErrTimeout is returned if the job did not drain in
// time: the hardware may still be running then.
func (d *Device) M2MSuspend(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "M2MSuspend")
	defer func() { logger.Debugf(ctx, "/M2MSuspend: %v", _err) }()

	mustWait := xsync.DoR1(ctx, &d.slock, func() bool {
		if !d.State().Has(StateM2MPending) {
			return false
		}
		d.clearState(StateM2MSuspended)
		d.setState(StateM2MSuspending)
		return true
	})
	if !mustWait {
		return nil
	}

	err := d.waitFor(ctx, "m2m suspend", func() bool {
		return d.State().Has(StateM2MSuspended)
	})

	d.slock.Do(ctx, func() {
		d.clearState(StateM2MSuspending)
	})
	return err
}

// M2MResume forces a full reconfiguration on the next job and reports
// the job drained by M2MSuspend failed. It expects the hardware to be
// reset already, so a job still in flight is reported failed as well.
func (d *Device) M2MResume(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "M2MResume")
	defer func() { logger.Debugf(ctx, "/M2MResume: %v", _err) }()

	owner := xsync.DoR1(ctx, &d.slock, func() *Context {
		xatomic.StorePointer(&d.m2mConfigured, nil)
		suspended := d.testAndClearState(StateM2MSuspended)
		lost := d.testAndClearState(StateM2MPending)
		if !suspended && !lost {
			return nil
		}
		if lost {
			logger.Warnf(ctx, "%s: the job in flight was lost on reset", d)
		}
		return xatomic.SwapPointer(&d.m2mCurrent, nil)
	})
	if owner == nil {
		return nil
	}

	owner.finishJob(ctx, JobStatusError)
	d.slock.Do(ctx, func() {
		if owner.state&ContextShut != 0 && owner.pendingJob == nil {
			owner.state &^= ContextShut
		}
		d.wakeUp()
	})
	return nil
}

// RuntimeResume is called when the unit is powered up.
func (d *Device) RuntimeResume(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "RuntimeResume: %s", d.State())
	defer func() { logger.Debugf(ctx, "/RuntimeResume: %v", _err) }()

	if err := d.gateClock.Enable(ctx); err != nil {
		return fmt.Errorf("unable to enable the gate clock: %w", err)
	}
	if err := d.backend.Memory.Resume(ctx); err != nil {
		logger.Errorf(ctx, "unable to resume the buffer memory: %v", err)
	}
	if err := d.backend.Registers.Reset(ctx); err != nil {
		return fmt.Errorf("unable to reset the hardware: %w", err)
	}

	if d.IsCaptureBusy() {
		return d.captureResume(ctx)
	}
	return d.M2MResume(ctx)
}

// RuntimeSuspend is called when the unit is about to be powered down.
// The gate clock stays enabled if the hardware did not drain.
func (d *Device) RuntimeSuspend(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "RuntimeSuspend: %s", d.State())
	defer func() { logger.Debugf(ctx, "/RuntimeSuspend: %v", _err) }()

	var err error
	if d.IsCaptureBusy() {
		err = d.captureSuspend(ctx)
	} else {
		err = d.M2MSuspend(ctx)
	}

	if mErr := d.backend.Memory.Suspend(ctx); mErr != nil {
		logger.Errorf(ctx, "unable to suspend the buffer memory: %v", mErr)
	}
	if err == nil {
		d.gateClock.Disable(ctx)
	}
	return err
}

// SystemSuspend prepares the unit for system sleep.
func (d *Device) SystemSuspend(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "SystemSuspend: %s", d.State())
	defer func() { logger.Debugf(ctx, "/SystemSuspend: %v", _err) }()

	alreadySuspended := xsync.DoR1(ctx, &d.slock, func() bool {
		return d.testAndSetState(StateLowPower)
	})
	if alreadySuspended {
		return nil
	}

	if d.IsCaptureBusy() {
		return d.captureSuspend(ctx)
	}
	return d.M2MSuspend(ctx)
}

// SystemResume restores the unit after system sleep. Nothing is done if
// the unit was idle.
func (d *Device) SystemResume(ctx context.Context) (_err error) {
	logger.Debugf(ctx, "SystemResume: %s", d.State())
	defer func() { logger.Debugf(ctx, "/SystemResume: %v", _err) }()

	proceed, err := xsync.DoR2(ctx, &d.slock, func() (bool, error) {
		if !d.testAndClearState(StateLowPower) {
			return false, nil
		}
		if !d.IsM2MActive() && !d.IsCaptureBusy() {
			return false, nil
		}
		return true, d.backend.Registers.Reset(ctx)
	})
	if !proceed {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to reset the hardware: %w", err)
	}

	if d.IsCaptureBusy() {
		return d.captureResume(ctx)
	}
	return d.M2MResume(ctx)
}

// SetProtectedContent switches the protected content mode. The unit is
// kept powered while the mode is enabled.
func (d *Device) SetProtectedContent(ctx context.Context, enable bool) (_err error) {
	logger.Debugf(ctx, "SetProtectedContent: %v", enable)
	defer func() { logger.Debugf(ctx, "/SetProtectedContent: %v", _err) }()
	return xsync.DoA2R1(ctx, &d.protectionLocker, d.setProtectedContentLocked, ctx, enable)
}

// IsProtectedContent reports if the protected content mode is enabled.
func (d *Device) IsProtectedContent() bool {
	return d.protectedContent.Load()
}

func (d *Device) setProtectedContentLocked(ctx context.Context, enable bool) error {
	if d.protectedContent.Load() == enable {
		return nil
	}

	if enable {
		if err := d.backend.Power.GetSync(ctx); err != nil {
			return fmt.Errorf("unable to power up: %w", err)
		}
	}

	if err := d.backend.Memory.SetProtected(ctx, enable); err != nil {
		if enable {
			if pErr := d.backend.Power.PutSync(ctx); pErr != nil {
				logger.Errorf(ctx, "unable to drop the power reference: %v", pErr)
			}
		}
		return fmt.Errorf("unable to switch the memory protection: %w", err)
	}

	if !enable {
		if err := d.backend.Power.PutSync(ctx); err != nil {
			logger.Errorf(ctx, "unable to drop the power reference: %v", err)
		}
	}

	d.protectedContent.Store(enable)
	return nil
}

// acquireProtection enables the protected content mode on behalf of a
// streaming context; the mode stays enabled while any context holds it.
func (d *Device) acquireProtection(ctx context.Context) error {
	return xsync.DoR1(ctx, &d.protectionLocker, func() error {
		if d.protectionRefs == 0 {
			if err := d.setProtectedContentLocked(ctx, true); err != nil {
				return err
			}
		}
		d.protectionRefs++
		return nil
	})
}

func (d *Device) releaseProtection(ctx context.Context) error {
	return xsync.DoR1(ctx, &d.protectionLocker, func() error {
		if d.protectionRefs == 0 {
			return fmt.Errorf("the protected content mode is released more times than acquired")
		}
		d.protectionRefs--
		if d.protectionRefs > 0 {
			return nil
		}
		return d.setProtectedContentLocked(ctx, false)
	})
}

// HandleProtectionFault is the reaction to a memory protection fault of
// the unit: the hardware's view of memory cannot be trusted anymore, so
// it dumps the registers and panics with types.ErrHardwareFault.
func (d *Device) HandleProtectionFault(ctx context.Context, faultAddr, pageTableBase uint64) {
	err := types.ErrHardwareFault{
		UnitID:        d.UnitID,
		FaultAddr:     faultAddr,
		PageTableBase: pageTableBase,
	}
	logger.Errorf(ctx, "%v", err)
	logger.Errorf(ctx, "dumping registers:\n%s", d.backend.Registers.Dump(ctx))
	panic(err)
}
