package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/camif/config"
	"github.com/xaionaro-go/camif/types"
)

func testCtx(t *testing.T) context.Context {
	l := logrus.Default().WithLevel(logger.LevelDebug)
	ctx := logger.CtxWithLogger(context.Background(), l)
	t.Cleanup(func() { belt.Flush(ctx) })
	return ctx
}

func testParams() runParams {
	return runParams{
		SrcFormat: "YUYV",
		SrcSize:   types.Resolution{Width: 640, Height: 480},
		DstFormat: "RGBP",
		DstSize:   types.Resolution{Width: 320, Height: 240},
		Controls:  []string{"horizontal_flip=1"},
		Jobs:      4,
		SuspendAt: -1,
		Latency:   time.Millisecond,
	}
}

func TestRun(t *testing.T) {
	ctx := testCtx(t)

	t.Run("plain", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, run(ctx, &out, config.Default(), testParams()))

		var report runReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		require.Equal(t, 4, report.Done)
		require.Zero(t, report.Failed)
		require.Equal(t, uint64(4), report.Device.JobsDone)
		require.Equal(t, uint64(1), report.Device.Reconfigurations)
	})

	t.Run("suspend", func(t *testing.T) {
		params := testParams()
		params.SuspendAt = 1
		var out bytes.Buffer
		require.NoError(t, run(ctx, &out, config.Default(), params))

		var report runReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		// the suspended job either drained in time or is reported failed
		require.Equal(t, params.Jobs, report.Done+report.Failed)
		require.LessOrEqual(t, report.Failed, 1)
	})

	t.Run("bad_control", func(t *testing.T) {
		params := testParams()
		params.Controls = []string{"rotate"}
		require.Error(t, run(ctx, &bytes.Buffer{}, config.Default(), params))
	})
}

func TestPrintControls(t *testing.T) {
	ctx := testCtx(t)
	var out bytes.Buffer
	require.NoError(t, printControls(ctx, &out, config.Default(), testParams()))

	var controls []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &controls))
	var names []string
	for _, ctrl := range controls {
		names = append(names, ctrl.Name)
	}
	require.Contains(t, names, "horizontal_flip")
	require.Contains(t, names, "rotate")
}
