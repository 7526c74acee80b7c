package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/camif/config"
	"github.com/xaionaro-go/camif/types"
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "syntax: %s [flags] <formats|socs|controls|run>\n", os.Args[0])
		pflag.PrintDefaults()
	}

	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level (overrides the config)")
	configPath := pflag.String("config", "", "path to a YAML config; the defaults are used if empty")
	srcSize := types.Resolution{Width: 640, Height: 480}
	pflag.Var(&srcSize, "src-size", "source size, WxH")
	dstSize := types.Resolution{Width: 320, Height: 240}
	pflag.Var(&dstSize, "dst-size", "destination size, WxH")
	srcFormat := pflag.String("src-format", "YUYV", "source fourcc")
	dstFormat := pflag.String("dst-format", "RGBP", "destination fourcc")
	controls := pflag.StringSlice("control", nil, "a control to set, as name=value; may be repeated")
	jobs := pflag.Int("jobs", 16, "the amount of memory-to-memory jobs to run")
	suspendAt := pflag.Int("suspend-at", -1, "the job to system-suspend and resume the unit at; negative to never")
	latency := pflag.Duration("latency", time.Millisecond, "simulated hardware latency of a single operation")
	pflag.Parse()
	if len(pflag.Args()) != 1 {
		pflag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if !pflag.CommandLine.Changed("log-level") {
		loggerLevel = cfg.Level()
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt)
	defer cancelFn()

	params := runParams{
		SrcFormat: *srcFormat,
		SrcSize:   srcSize,
		DstFormat: *dstFormat,
		DstSize:   dstSize,
		Controls:  *controls,
		Jobs:      *jobs,
		SuspendAt: *suspendAt,
		Latency:   *latency,
	}

	var err error
	switch cmd := pflag.Arg(0); cmd {
	case "formats":
		err = printFormats(os.Stdout, srcSize)
	case "socs":
		err = printSoCs(os.Stdout)
	case "controls":
		err = printControls(ctx, os.Stdout, cfg, params)
	case "run":
		err = run(ctx, os.Stdout, cfg, params)
	default:
		err = fmt.Errorf("unknown command '%s'", cmd)
	}
	if err != nil {
		l.Fatal(err)
	}
}
