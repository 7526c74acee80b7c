package hwsim

import (
	"context"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/camif/geometry"
	"github.com/xaionaro-go/camif/hw"
	"go.uber.org/atomic"
)

func testCtx(t *testing.T) context.Context {
	l := logrus.Default().WithLevel(logger.LevelDebug)
	ctx := logger.CtxWithLogger(context.Background(), l)
	ctx, cancel := context.WithCancel(ctx)
	t.Cleanup(func() {
		cancel()
		belt.Flush(ctx)
	})
	return ctx
}

type testPM struct {
	suspends atomic.Int32
	resumes  atomic.Int32
	err      error
}

func (pm *testPM) RuntimeSuspend(ctx context.Context) error {
	pm.suspends.Inc()
	return pm.err
}

func (pm *testPM) RuntimeResume(ctx context.Context) error {
	pm.resumes.Inc()
	return nil
}

func powerUp(ctx context.Context, t *testing.T, s *Simulator) {
	gate, err := s.Clocks.Get(ctx, hw.ClockGate)
	require.NoError(t, err)
	require.NoError(t, gate.Prepare(ctx))
	require.NoError(t, gate.Enable(ctx))
	require.NoError(t, s.Power.Enable(ctx, &testPM{}))
	require.NoError(t, s.Power.GetSync(ctx))
}

func TestRegistersAutomaticCompletion(t *testing.T) {
	ctx := testCtx(t)
	s := New(ctx, OptionLatency(time.Millisecond))
	defer s.Close(ctx)

	interrupts := make(chan struct{}, 1)
	s.Registers.SetInterruptHandler(func(ctx context.Context) {
		s.Registers.ClearIRQ(ctx)
		interrupts <- struct{}{}
	})

	require.NoError(t, s.Registers.Commit(ctx, &hw.Config{Mode: hw.ModeM2M}))
	require.Error(t, s.Registers.Start(ctx, hw.ModeM2M), "must not start on an unpowered unit")

	powerUp(ctx, t, s)
	require.Error(t, s.Registers.Start(ctx, hw.ModeCapture))
	require.NoError(t, s.Registers.Start(ctx, hw.ModeM2M))
	require.Error(t, s.Registers.Start(ctx, hw.ModeM2M), "must not start twice")

	select {
	case <-interrupts:
	case <-time.After(5 * time.Second):
		t.Fatal("no interrupt")
	}
	require.False(t, s.Registers.IsRunning(ctx))
	require.False(t, s.Registers.IsIRQPending(ctx))

	stats := s.Stats()
	require.Equal(t, uint64(1), stats.Starts)
	require.Equal(t, uint64(1), stats.Interrupts)
	require.Equal(t, uint64(1), stats.ClearIRQs)
}

func TestRegistersManualCompletionAndReset(t *testing.T) {
	ctx := testCtx(t)
	s := New(ctx, OptionManualCompletion(true))
	defer s.Close(ctx)
	powerUp(ctx, t, s)

	var handled atomic.Int32
	s.Registers.SetInterruptHandler(func(ctx context.Context) {
		handled.Inc()
	})

	require.False(t, s.Registers.Complete(ctx))

	require.NoError(t, s.Registers.Commit(ctx, &hw.Config{Mode: hw.ModeM2M}))
	require.NoError(t, s.Registers.SetAddresses(ctx, geometry.AddressSet{Y: 1}, geometry.AddressSet{Y: 2}))
	require.NoError(t, s.Registers.Start(ctx, hw.ModeM2M))
	require.Error(t, s.Registers.Commit(ctx, &hw.Config{Mode: hw.ModeM2M}))
	require.Contains(t, s.Registers.Dump(ctx), "running: m2m")

	require.True(t, s.Registers.Complete(ctx))
	require.Equal(t, int32(1), handled.Load())
	require.True(t, s.Registers.IsIRQPending(ctx))

	require.NoError(t, s.Registers.Start(ctx, hw.ModeM2M))
	require.NoError(t, s.Registers.Reset(ctx))
	require.False(t, s.Registers.Complete(ctx))
	require.Equal(t, int32(1), handled.Load())

	_, ok := s.Registers.Config(ctx)
	require.False(t, ok)
	require.Error(t, s.Registers.Start(ctx, hw.ModeM2M))

	stats := s.Stats()
	require.Equal(t, uint64(1), stats.Aborted)
	require.Equal(t, uint64(1), stats.Resets)
}

func TestRegistersResetDropsScheduledCompletion(t *testing.T) {
	ctx := testCtx(t)
	s := New(ctx, OptionLatency(50*time.Millisecond))
	defer s.Close(ctx)
	powerUp(ctx, t, s)

	var handled atomic.Int32
	s.Registers.SetInterruptHandler(func(ctx context.Context) {
		handled.Inc()
	})
	require.NoError(t, s.Registers.Commit(ctx, &hw.Config{Mode: hw.ModeCapture}))
	require.NoError(t, s.Registers.Start(ctx, hw.ModeCapture))
	require.NoError(t, s.Registers.Reset(ctx))
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(0), handled.Load())
}

func TestMemory(t *testing.T) {
	ctx := testCtx(t)
	s := New(ctx, OptionBaseAddr(0x10000000))
	defer s.Close(ctx)

	buf, err := s.Memory.Alloc(ctx, true, 5000, 100)
	require.NoError(t, err)
	require.Equal(t, 2, buf.NumPlanes())
	require.True(t, buf.IsCapture())
	require.Equal(t, uint32(0x10000000), buf.PlaneAddr(0))
	require.Equal(t, uint32(0x10002000), buf.PlaneAddr(1))
	require.Equal(t, uint32(100), buf.PlaneSize(1))
	require.NotZero(t, buf.PlaneVAddr(1))

	_, err = s.Memory.Alloc(ctx, false)
	require.Error(t, err)

	require.NoError(t, s.Memory.Suspend(ctx))
	_, err = s.Memory.Alloc(ctx, false, 16)
	require.Error(t, err)
	require.NoError(t, s.Memory.Resume(ctx))

	require.Equal(t, 1, s.Memory.LiveBuffers(ctx))
	require.NoError(t, s.Memory.Free(ctx, buf))
	require.Error(t, s.Memory.Free(ctx, buf))
	require.Equal(t, 0, s.Memory.LiveBuffers(ctx))

	require.NoError(t, s.Memory.Sync(ctx, geometry.PlaneBuckets{{Base: 1, Size: 10}, {Base: 2, Size: 5}}))
	require.Equal(t, uint64(15), s.Stats().SyncedBytes)

	require.NoError(t, s.Memory.SetProtected(ctx, true))
	require.True(t, s.Memory.IsProtected(ctx))
}

func TestClocks(t *testing.T) {
	ctx := testCtx(t)
	s := New(ctx, OptionMissingClock(hw.ClockBus))
	defer s.Close(ctx)

	_, err := s.Clocks.Get(ctx, hw.ClockBus)
	require.Error(t, err)

	gate, err := s.Clocks.Get(ctx, hw.ClockGate)
	require.NoError(t, err)
	require.Error(t, gate.Enable(ctx), "must be prepared first")
	require.NoError(t, gate.Prepare(ctx))
	require.NoError(t, gate.Enable(ctx))
	require.True(t, s.Clocks.IsEnabled(ctx, hw.ClockGate))

	parent, err := s.Clocks.Get(ctx, hw.DefaultParentClock)
	require.NoError(t, err)
	require.NoError(t, gate.SetParent(ctx, parent))
	require.Error(t, gate.SetRate(ctx, parent.Rate()+1))
	require.NoError(t, gate.SetRate(ctx, 166000000))
	require.Equal(t, uint64(166000000), gate.Rate())
	require.Equal(t, hw.DefaultParentClock, s.Clocks.Clock(hw.ClockGate).Parent())

	gate.Disable(ctx)
	gate.Unprepare(ctx)
	require.False(t, s.Clocks.IsEnabled(ctx, hw.ClockGate))
	require.Equal(t, 2, s.Clocks.References(ctx))
	s.Clocks.Put(ctx, parent)
	s.Clocks.Put(ctx, gate)
	require.Equal(t, 0, s.Clocks.References(ctx))
}

func TestPower(t *testing.T) {
	ctx := testCtx(t)
	s := New(ctx)
	defer s.Close(ctx)

	pm := &testPM{}
	require.NoError(t, s.Power.Enable(ctx, pm))
	require.Error(t, s.Power.Enable(ctx, pm))
	require.False(t, s.Power.IsActive(ctx))

	require.NoError(t, s.Power.GetSync(ctx))
	require.NoError(t, s.Power.GetSync(ctx))
	require.Equal(t, int32(1), pm.resumes.Load())
	require.True(t, s.Power.IsActive(ctx))

	require.NoError(t, s.Power.PutSync(ctx))
	require.Equal(t, int32(0), pm.suspends.Load())
	require.NoError(t, s.Power.PutSync(ctx))
	require.Equal(t, int32(1), pm.suspends.Load())
	require.False(t, s.Power.IsActive(ctx))
	require.Error(t, s.Power.PutSync(ctx))

	require.NoError(t, s.Power.GetSync(ctx))
	require.NoError(t, s.Power.Disable(ctx))
	require.Equal(t, int32(2), pm.suspends.Load())
	require.False(t, s.Power.IsActive(ctx))
}
