package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/hwsim"
	"github.com/xaionaro-go/camif/types"
	"go.uber.org/atomic"
)

type captureDone struct {
	buf          hw.Buffer
	moreExpected bool
}

type testConsumer struct {
	done     chan captureDone
	suspends atomic.Int32
	resumes  atomic.Int32
}

var _ CaptureConsumer = (*testConsumer)(nil)

func newTestConsumer() *testConsumer {
	return &testConsumer{done: make(chan captureDone, 16)}
}

func (c *testConsumer) OnBufferDone(ctx context.Context, buf hw.Buffer, moreExpected bool) {
	c.done <- captureDone{buf: buf, moreExpected: moreExpected}
}

func (c *testConsumer) OnSuspend(ctx context.Context) {
	c.suspends.Inc()
}

func (c *testConsumer) OnResume(ctx context.Context) {
	c.resumes.Inc()
}

func (c *testConsumer) wait(t *testing.T) captureDone {
	select {
	case done := <-c.done:
		return done
	case <-time.After(waitTimeout):
		t.Fatal("no capture completion")
	}
	return captureDone{}
}

func newCaptureContext(ctx context.Context, t *testing.T, dev *Device) *Context {
	c, err := dev.NewContext(ctx, nil)
	require.NoError(t, err)
	_, err = c.SetSensorFormat(ctx, format.BusCodeYUYV8_2X8, 640, 480)
	require.NoError(t, err)
	_, err = c.SetFormat(ctx, QueueDestination, format.FourCCYUYV, 320, 240)
	require.NoError(t, err)
	return c
}

func allocCaptureBuffers(ctx context.Context, t *testing.T, sim *hwsim.Simulator, count int) []hw.Buffer {
	var bufs []hw.Buffer
	for i := 0; i < count; i++ {
		buf, err := sim.Memory.Alloc(ctx, true, 320*240*2)
		require.NoError(t, err)
		bufs = append(bufs, buf)
	}
	return bufs
}

func TestCaptureStream(t *testing.T) {
	ctx := testCtx(t)
	sim, dev := newTestDevice(ctx, t, testVariant())
	bufs := allocCaptureBuffers(ctx, t, sim, 2)
	c := newCaptureContext(ctx, t, dev)
	consumer := newTestConsumer()

	var invalid types.ErrInvalidArgument
	require.ErrorAs(t, dev.StartCapture(ctx, c, nil, CaptureParams{RequestedBuffers: 2}), &invalid)
	require.ErrorAs(t, dev.StartCapture(ctx, c, consumer, CaptureParams{}), &invalid)
	require.ErrorAs(t, dev.ArmCapture(ctx, bufs[0]), &invalid)

	require.NoError(t, dev.StartCapture(ctx, c, consumer, CaptureParams{RequestedBuffers: 2}))
	require.True(t, dev.IsCaptureBusy())
	require.False(t, dev.IsCapturePending())
	require.Equal(t, 1, sim.Power.References(ctx))

	var busy types.ErrBusy
	require.ErrorAs(t, dev.StartCapture(ctx, c, consumer, CaptureParams{RequestedBuffers: 2}), &busy)
	_, err := c.SetFormat(ctx, QueueDestination, format.FourCCUYVY, 320, 240)
	require.ErrorAs(t, err, &busy)

	src, err := sim.Memory.Alloc(ctx, false, 640*480*2)
	require.NoError(t, err)
	require.ErrorAs(t, dev.ArmCapture(ctx, src), &invalid)

	for _, buf := range bufs {
		require.NoError(t, dev.ArmCapture(ctx, buf))
	}
	require.True(t, dev.IsCapturePending())
	cfg, ok := sim.Registers.Config(ctx)
	require.True(t, ok)
	require.Equal(t, hw.ModeCapture, cfg.Mode)
	_, out := sim.Registers.Addresses(ctx)
	require.Equal(t, bufs[0].PlaneAddr(0), out.Y)

	require.True(t, sim.Registers.Complete(ctx))
	done := consumer.wait(t)
	require.Equal(t, bufs[0], done.buf)
	require.True(t, done.moreExpected)

	// the next queued buffer is started right away
	require.True(t, dev.IsCapturePending())
	_, out = sim.Registers.Addresses(ctx)
	require.Equal(t, bufs[1].PlaneAddr(0), out.Y)

	require.True(t, sim.Registers.Complete(ctx))
	require.Equal(t, bufs[1], consumer.wait(t).buf)
	require.False(t, dev.IsCapturePending())
	require.Equal(t, uint64(2), dev.Stats().CaptureFrames)
	require.Equal(t, uint64(1), dev.Stats().Reconfigurations)
	require.Equal(t, uint64(2), sim.Stats().Syncs)

	require.NoError(t, dev.StopCapture(ctx))
	require.False(t, dev.IsCaptureBusy())
	require.Zero(t, sim.Power.References(ctx))
	require.NoError(t, dev.StopCapture(ctx))

	_, err = c.SetFormat(ctx, QueueDestination, format.FourCCUYVY, 320, 240)
	require.NoError(t, err)
}

func TestCaptureApplyConfigOnControlChange(t *testing.T) {
	ctx := testCtx(t)
	sim, dev := newTestDevice(ctx, t, testVariant())
	bufs := allocCaptureBuffers(ctx, t, sim, 2)
	c := newCaptureContext(ctx, t, dev)
	consumer := newTestConsumer()
	require.NoError(t, dev.StartCapture(ctx, c, consumer, CaptureParams{RequestedBuffers: 2}))

	require.NoError(t, dev.ArmCapture(ctx, bufs[0]))
	require.NoError(t, c.SetControl(ctx, ControlHFlip, 1))
	require.True(t, dev.State().Has(StateCaptureApplyConfig))

	require.NoError(t, dev.ArmCapture(ctx, bufs[1]))
	require.True(t, sim.Registers.Complete(ctx))
	consumer.wait(t)

	cfg, ok := sim.Registers.Config(ctx)
	require.True(t, ok)
	require.True(t, cfg.Transform.HFlip)
	require.Equal(t, uint64(2), dev.Stats().Reconfigurations)
	require.False(t, dev.State().Has(StateCaptureApplyConfig))
}

func TestCaptureJPEGSingleBuffer(t *testing.T) {
	ctx := testCtx(t)
	sim, dev := newTestDevice(ctx, t, testVariant())
	bufs := allocCaptureBuffers(ctx, t, sim, 2)
	c := newCaptureContext(ctx, t, dev)
	consumer := newTestConsumer()

	require.NoError(t, dev.StartCapture(ctx, c, consumer, CaptureParams{JPEG: true, RequestedBuffers: 1}))
	require.True(t, dev.State().Has(StateCaptureJPEG))

	require.NoError(t, dev.ArmCapture(ctx, bufs[0]))
	require.NoError(t, dev.ArmCapture(ctx, bufs[1]))
	require.True(t, sim.Registers.Complete(ctx))
	done := consumer.wait(t)
	require.False(t, done.moreExpected)

	// nothing else is started after the last buffer
	require.False(t, dev.IsCapturePending())

	require.NoError(t, dev.StopCapture(ctx))
	require.False(t, dev.State().Has(StateCaptureJPEG))
}

func TestCaptureExcludesM2M(t *testing.T) {
	ctx := testCtx(t)
	sim, dev := newTestDevice(ctx, t, testVariant())
	rec := newJobRecorder()

	m2m := newStreamingContext(ctx, t, dev, rec)
	capt := newCaptureContext(ctx, t, dev)
	consumer := newTestConsumer()

	var busy types.ErrBusy
	require.ErrorAs(t, dev.StartCapture(ctx, capt, consumer, CaptureParams{RequestedBuffers: 1}), &busy)
	require.Equal(t, 1, sim.Power.References(ctx))

	require.NoError(t, m2m.StreamOff(ctx))
	require.NoError(t, dev.StartCapture(ctx, capt, consumer, CaptureParams{RequestedBuffers: 1}))

	require.NoError(t, m2m.StreamOn(ctx))
	src, dst := allocJobBuffers(ctx, t, sim)
	require.ErrorAs(t, m2m.RunJob(ctx, src, dst), &busy)
	require.ErrorAs(t, capt.StreamOn(ctx), &busy)
	require.NoError(t, m2m.StreamOff(ctx))

	require.NoError(t, dev.StopCapture(ctx))
}

func TestStopCaptureTimeout(t *testing.T) {
	ctx := testCtx(t)
	sim, dev := newTestDevice(ctx, t, testVariant(), OptionShutdownTimeout(10*time.Millisecond))
	bufs := allocCaptureBuffers(ctx, t, sim, 1)
	c := newCaptureContext(ctx, t, dev)
	require.NoError(t, dev.StartCapture(ctx, c, newTestConsumer(), CaptureParams{RequestedBuffers: 1}))
	require.NoError(t, dev.ArmCapture(ctx, bufs[0]))

	var timeout types.ErrTimeout
	require.ErrorAs(t, dev.StopCapture(ctx), &timeout)
	require.Equal(t, uint64(1), sim.Stats().Aborted)
	require.False(t, dev.State().HasAny(StateCaptureBusy|StateCapturePending|StateCaptureRunning))
	require.False(t, sim.Registers.Complete(ctx))
}

func TestCaptureSystemSuspendResume(t *testing.T) {
	ctx := testCtx(t)
	sim, dev := newTestDevice(ctx, t, testVariant())
	bufs := allocCaptureBuffers(ctx, t, sim, 2)
	c := newCaptureContext(ctx, t, dev)
	consumer := newTestConsumer()
	require.NoError(t, dev.StartCapture(ctx, c, consumer, CaptureParams{RequestedBuffers: 2}))
	require.NoError(t, dev.ArmCapture(ctx, bufs[0]))

	errCh := make(chan error, 1)
	go func() {
		errCh <- dev.SystemSuspend(ctx)
	}()
	require.Eventually(t, func() bool {
		return dev.State().Has(StateCaptureSuspended)
	}, waitTimeout, time.Millisecond)

	// the frame in flight drains
	require.True(t, sim.Registers.Complete(ctx))
	require.Equal(t, bufs[0], consumer.wait(t).buf)
	require.NoError(t, <-errCh)
	require.Equal(t, int32(1), consumer.suspends.Load())
	require.False(t, dev.State().Has(StateCaptureRunning))

	// nothing starts while suspended
	require.NoError(t, dev.ArmCapture(ctx, bufs[1]))
	require.False(t, dev.IsCapturePending())

	require.NoError(t, dev.SystemResume(ctx))
	require.Equal(t, int32(1), consumer.resumes.Load())
	require.True(t, dev.IsCapturePending())
	require.False(t, dev.State().HasAny(StateLowPower|StateCaptureSuspended))

	require.True(t, sim.Registers.Complete(ctx))
	require.Equal(t, bufs[1], consumer.wait(t).buf)
	require.NoError(t, dev.StopCapture(ctx))
}

func TestStartCaptureRequiresCaptureDestination(t *testing.T) {
	ctx := testCtx(t)
	sim, dev := newTestDevice(ctx, t, testVariant())
	c, err := dev.NewContext(ctx, nil)
	require.NoError(t, err)
	_, err = c.SetSensorFormat(ctx, format.BusCodeYUYV8_2X8, 640, 480)
	require.NoError(t, err)
	_, err = c.SetFormat(ctx, QueueDestination, format.FourCCRGB565, 320, 240)
	require.NoError(t, err)

	var invalid types.ErrInvalidArgument
	require.ErrorAs(t, dev.StartCapture(ctx, c, newTestConsumer(), CaptureParams{RequestedBuffers: 1}), &invalid)
	require.False(t, dev.IsCaptureBusy())
	require.Zero(t, sim.Power.References(ctx))

	_, err = c.SetFormat(ctx, QueueDestination, format.FourCCJPEG, 320, 240)
	require.NoError(t, err)
	require.NoError(t, dev.StartCapture(ctx, c, newTestConsumer(), CaptureParams{JPEG: true, RequestedBuffers: 1}))
	require.True(t, dev.IsCaptureBusy())
	require.NoError(t, dev.StopCapture(ctx))
	require.NoError(t, c.Release(ctx))
}
