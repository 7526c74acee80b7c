package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/camif"
	"github.com/xaionaro-go/camif/config"
	"github.com/xaionaro-go/camif/device"
	"github.com/xaionaro-go/camif/format"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/hwsim"
	"github.com/xaionaro-go/camif/types"
	"github.com/xaionaro-go/observability"
)

type runParams struct {
	SrcFormat string
	SrcSize   types.Resolution
	DstFormat string
	DstSize   types.Resolution
	Controls  []string
	Jobs      int
	SuspendAt int
	Latency   time.Duration
}

type runReport struct {
	Done      int          `json:"done"`
	Failed    int          `json:"failed"`
	Elapsed   string       `json:"elapsed"`
	Device    device.Stats `json:"device"`
	Simulator hwsim.Stats  `json:"simulator"`
}

func parseControl(s string) (device.ControlID, int32, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, fmt.Errorf("expected name=value, got '%s'", s)
	}
	id, err := device.ParseControlID(name)
	if err != nil {
		return 0, 0, err
	}
	v, err := strconv.ParseInt(value, 0, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to parse the value of %s: %w", name, err)
	}
	return id, int32(v), nil
}

// setupContext opens a processing context with the formats and the
// controls of params.
func setupContext(
	ctx context.Context,
	dev *device.Device,
	params runParams,
	onJobFinish device.FuncOnJobFinish,
) (*device.Context, error) {
	srcFourCC, err := format.ParseFourCC(params.SrcFormat)
	if err != nil {
		return nil, err
	}
	dstFourCC, err := format.ParseFourCC(params.DstFormat)
	if err != nil {
		return nil, err
	}

	c, err := dev.NewContext(ctx, onJobFinish)
	if err != nil {
		return nil, err
	}
	if _, err := c.SetFormat(ctx, device.QueueSource, srcFourCC, params.SrcSize.Width, params.SrcSize.Height); err != nil {
		c.Release(ctx)
		return nil, fmt.Errorf("unable to set the source format: %w", err)
	}
	if _, err := c.SetFormat(ctx, device.QueueDestination, dstFourCC, params.DstSize.Width, params.DstSize.Height); err != nil {
		c.Release(ctx)
		return nil, fmt.Errorf("unable to set the destination format: %w", err)
	}
	for _, s := range params.Controls {
		id, value, err := parseControl(s)
		if err == nil {
			err = c.SetControl(ctx, id, value)
		}
		if err != nil {
			c.Release(ctx)
			return nil, fmt.Errorf("unable to set control '%s': %w", s, err)
		}
	}
	return c, nil
}

func allocFor(
	ctx context.Context,
	mem *hwsim.Memory,
	c *device.Context,
	q device.Queue,
) (hw.Buffer, error) {
	pix, err := c.Format(ctx, q)
	if err != nil {
		return nil, err
	}
	sizes := make([]uint32, 0, pix.NumPlanes)
	var total uint64
	for i := 0; i < int(pix.NumPlanes); i++ {
		sizes = append(sizes, pix.Planes[i].SizeImage)
		total += uint64(pix.Planes[i].SizeImage)
	}
	buf, err := mem.Alloc(ctx, q == device.QueueDestination, sizes...)
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "allocated a %s buffer of %s", q, humanize.Bytes(total))
	return buf, nil
}

func printControls(ctx context.Context, w io.Writer, cfg config.Config, params runParams) error {
	s, err := camif.OpenSimulated(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	c, err := setupContext(ctx, s.Device, params, nil)
	if err != nil {
		return err
	}
	defer c.Release(ctx)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	type control struct {
		device.Control
		Name string `json:"name"`
	}
	var result []control
	for _, ctrl := range c.Controls(ctx) {
		result = append(result, control{Control: ctrl, Name: ctrl.ID.String()})
	}
	return enc.Encode(result)
}

// run executes params.Jobs memory-to-memory jobs one after another on
// a simulated unit, optionally system-suspending it while a job is in
// flight, and reports the counters as JSON.
func run(ctx context.Context, w io.Writer, cfg config.Config, params runParams) (_err error) {
	logger.Debugf(ctx, "run")
	defer func() { logger.Debugf(ctx, "/run: %v", _err) }()

	s, err := camif.OpenSimulated(ctx, cfg, []hwsim.Option{hwsim.OptionLatency(params.Latency)})
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(ctx); err != nil {
			logger.Errorf(ctx, "unable to close: %v", err)
		}
	}()
	dev := s.Device

	results := make(chan device.JobStatus, 1)
	c, err := setupContext(ctx, dev, params, func(ctx context.Context, c *device.Context, job device.Job, status device.JobStatus) {
		logger.Tracef(ctx, "job #%d: %s", job.Sequence, status)
		results <- status
	})
	if err != nil {
		return err
	}
	defer c.Release(ctx)

	if err := c.StreamOn(ctx); err != nil {
		return err
	}

	src, err := allocFor(ctx, s.Simulator.Memory, c, device.QueueSource)
	if err != nil {
		return err
	}
	dst, err := allocFor(ctx, s.Simulator.Memory, c, device.QueueDestination)
	if err != nil {
		return err
	}

	report := runReport{}
	startTS := time.Now()
	errCh := make(chan error, 1)
	observability.Go(ctx, func(ctx context.Context) {
		errCh <- runJobs(ctx, dev, c, src, dst, params, results, &report)
	})

	select {
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		return err
	}

	report.Elapsed = time.Since(startTS).String()
	report.Device = dev.Stats()
	report.Simulator = s.Simulator.Stats()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runJobs(
	ctx context.Context,
	dev *device.Device,
	c *device.Context,
	src, dst hw.Buffer,
	params runParams,
	results <-chan device.JobStatus,
	report *runReport,
) error {
	timeout := 100*params.Latency + time.Second
	for i := 0; i < params.Jobs; i++ {
		if err := c.RunJob(ctx, src, dst); err != nil {
			return fmt.Errorf("job #%d: %w", i, err)
		}

		if i == params.SuspendAt {
			logger.Infof(ctx, "suspending at job #%d", i)
			if err := dev.SystemSuspend(ctx); err != nil {
				return fmt.Errorf("unable to suspend: %w", err)
			}
			if err := dev.SystemResume(ctx); err != nil {
				return fmt.Errorf("unable to resume: %w", err)
			}
		}

		select {
		case status := <-results:
			if status == device.JobStatusDone {
				report.Done++
			} else {
				report.Failed++
			}
		case <-time.After(timeout):
			return fmt.Errorf("job #%d did not finish in %v", i, timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
