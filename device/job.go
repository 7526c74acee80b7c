// job.go implements the memory-to-memory job submission and completion.

package device

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/camif/geometry"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/camif/types"
	"github.com/xaionaro-go/xsync"
)

// JobStatus is the outcome of a job.
type JobStatus uint8

const (
	JobStatusDone JobStatus = iota
	// JobStatusError is reported when the job cannot be assumed
	// complete, for example when it was drained by a suspend.
	JobStatusError
)

func (s JobStatus) String() string {
	switch s {
	case JobStatusDone:
		return "done"
	case JobStatusError:
		return "error"
	}
	return fmt.Sprintf("unknown_job_status_%d", uint8(s))
}

// Job is a single memory-to-memory transform of Src into Dst.
type Job struct {
	Sequence  uint64
	Src       hw.Buffer
	Dst       hw.Buffer
	Submitted time.Time
}

// FuncOnJobFinish is called once per submitted job, never with a device
// lock held.
type FuncOnJobFinish func(ctx context.Context, c *Context, job Job, status JobStatus)

// RunJob submits a transform of src into dst. Only one job may be in
// flight per unit; ErrBusy is returned otherwise.
func (c *Context) RunJob(
	ctx context.Context,
	src, dst hw.Buffer,
) (_err error) {
	logger.Debugf(ctx, "RunJob")
	defer func() { logger.Debugf(ctx, "/RunJob: %v", _err) }()

	if src == nil || dst == nil {
		return types.ErrInvalidArgument{Reason: "nil buffer"}
	}
	if src.IsCapture() || !dst.IsCapture() {
		return types.ErrInvalidArgument{Reason: "the source must be an output buffer and the destination a capture buffer"}
	}

	return xsync.DoR1(ctx, &c.locker, func() error {
		return c.runJobLocked(ctx, src, dst)
	})
}

func (c *Context) runJobLocked(
	ctx context.Context,
	src, dst hw.Buffer,
) error {
	d := c.device
	if !c.streaming {
		return types.ErrInvalidArgument{Reason: fmt.Sprintf("%s is not streaming", c)}
	}

	var job Job
	reconfigure, err := xsync.DoR2(ctx, &d.slock, func() (bool, error) {
		state := d.State()
		switch {
		case state.HasAny(StateLowPower | StateM2MSuspending | StateM2MSuspended):
			return false, types.ErrBusy{Reason: fmt.Sprintf("the unit is suspended (%s)", state)}
		case state.Has(StateM2MPending):
			return false, types.ErrBusy{Reason: "a job is already in flight"}
		case state.Has(StateCaptureBusy):
			return false, types.ErrBusy{Reason: "the unit is used for capture"}
		}

		if xatomic.LoadPointer(&d.m2mConfigured) != c {
			c.state |= ContextParams
			xatomic.StorePointer(&d.m2mConfigured, c)
		}
		reconfigure := c.state.Has(ContextParams)
		c.state &^= ContextParams

		c.jobCount++
		job = Job{Sequence: c.jobCount, Src: src, Dst: dst, Submitted: time.Now()}
		c.pendingJob = &job
		xatomic.StorePointer(&d.m2mCurrent, c)
		d.setState(StateM2MPending)
		return reconfigure, nil
	})
	if err != nil {
		return err
	}

	if err := c.programJob(ctx, job, reconfigure); err != nil {
		d.slock.Do(ctx, func() {
			d.clearState(StateM2MPending)
			xatomic.StorePointer(&d.m2mCurrent, nil)
			xatomic.StorePointer(&d.m2mConfigured, nil)
			c.pendingJob = nil
			d.wakeUp()
		})
		return err
	}
	return nil
}

func (c *Context) programJob(
	ctx context.Context,
	job Job,
	reconfigure bool,
) error {
	d := c.device
	regs := d.backend.Registers

	if reconfigure {
		cfg, err := c.buildConfig(ctx, hw.ModeM2M)
		if err != nil {
			return err
		}
		if err := regs.Commit(ctx, cfg); err != nil {
			return fmt.Errorf("unable to commit the configuration: %w", err)
		}
		d.stats.reconfigurations.Inc()
	}

	srcColor := c.transform.Src.Format.Color
	in, err := geometry.PrepareAddr(job.Src, &c.transform.Src, srcColor)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	out, err := geometry.PrepareAddr(job.Dst, &c.transform.Dst, srcColor)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if err := c.syncCaptureBuffer(ctx, &c.transform.Dst, out); err != nil {
		return err
	}

	if err := regs.SetAddresses(ctx, in, out); err != nil {
		return fmt.Errorf("unable to set the addresses: %w", err)
	}
	if err := regs.Start(ctx, hw.ModeM2M); err != nil {
		return fmt.Errorf("unable to start: %w", err)
	}
	return nil
}

// syncCaptureBuffer performs the cache maintenance of the planes the
// hardware is about to write, unless the memory is protected.
func (c *Context) syncCaptureBuffer(
	ctx context.Context,
	frame *geometry.Frame,
	addr geometry.AddressSet,
) error {
	d := c.device
	if d.protectedContent.Load() || !c.cacheable {
		return nil
	}
	buckets, err := geometry.ComputePlaneBuckets(frame, addr)
	if err != nil {
		return fmt.Errorf("unable to compute the plane regions: %w", err)
	}
	if err := d.backend.Memory.Sync(ctx, buckets); err != nil {
		return fmt.Errorf("unable to sync the planes: %w", err)
	}
	return nil
}

// buildConfig derives the complete register configuration from the
// formats and the controls; must be called with c.locker held.
func (c *Context) buildConfig(
	ctx context.Context,
	mode hw.Mode,
) (*hw.Config, error) {
	v := c.device.Variant
	tr := &c.transform
	if tr.Src.Format == nil || tr.Dst.Format == nil {
		return nil, types.ErrInvalidArgument{Reason: "both formats have to be set"}
	}

	if err := tr.SetScalerInfo(ctx, v); err != nil {
		return nil, err
	}
	tr.SetYUVOrder(ctx)

	return &hw.Config{
		Mode:         mode,
		Transform:    *tr,
		Effect:       c.effect,
		CSC:          c.csc,
		Alpha:        tr.Dst.Alpha,
		InputOffset:  tr.Src.PrepareDMAOffset(v),
		OutputOffset: tr.Dst.PrepareDMAOffset(v),
	}, nil
}

// finishJob delivers the completion of the job in flight of the
// context; must be called without device locks held.
func (c *Context) finishJob(ctx context.Context, status JobStatus) {
	d := c.device
	job := xsync.DoR1(ctx, &d.slock, func() *Job {
		job := c.pendingJob
		c.pendingJob = nil
		return job
	})
	if job == nil {
		logger.Errorf(ctx, "%s: a completion without a job in flight", c)
		return
	}

	switch status {
	case JobStatusDone:
		d.stats.jobsDone.Inc()
		d.stats.jobLatency.Add(ctx, time.Since(job.Submitted))
	default:
		d.stats.jobsFailed.Inc()
	}
	logger.Debugf(ctx, "%s: job #%d: %s", c, job.Sequence, status)

	if c.onJobFinish != nil {
		c.onJobFinish(ctx, c, *job, status)
	}
}
