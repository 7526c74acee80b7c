// interrupt.go implements the completion interrupt routing.

package device

import (
	"context"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/camif/logger"
)

// HandleInterrupt is the completion interrupt handler of the unit.
//
// A memory-to-memory completion is absorbed when a suspend waits for
// it; otherwise it is delivered to the context owning the job. A
// capture completion is delivered to the capture consumer. Consumers
// are called without slock held, so they may submit the next job right
// away.
func (d *Device) HandleInterrupt(ctx context.Context) {
	logger.Tracef(ctx, "HandleInterrupt")
	defer logger.Tracef(ctx, "/HandleInterrupt")

	d.backend.Registers.ClearIRQ(ctx)
	d.stats.interrupts.Inc()

	var (
		finished *Context
		captured *captureCompletion
	)
	d.slock.Do(ctx, func() {
		if d.testAndClearState(StateM2MPending) {
			if d.testAndClearState(StateM2MSuspending) {
				d.setState(StateM2MSuspended)
				d.stats.absorbed.Inc()
				d.wakeUp()
				return
			}
			finished = xatomic.SwapPointer(&d.m2mCurrent, nil)
			if finished == nil {
				d.wakeUp()
			}
			return
		}
		if d.State().Has(StateCapturePending) {
			captured = d.captureIRQ(ctx)
			return
		}
		d.stats.spuriousInterrupts.Inc()
	})

	if finished != nil {
		finished.finishJob(ctx, JobStatusDone)
		d.slock.Do(ctx, func() {
			// the consumer may have submitted the next job already
			if finished.state&ContextShut != 0 && finished.pendingJob == nil {
				finished.state &^= ContextShut
			}
			d.wakeUp()
		})
	}

	if captured != nil {
		d.deliverCapture(ctx, captured)
	}
}
