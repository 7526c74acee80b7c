// config.go provides the YAML configuration of a camif unit.

// Package config describes which hardware unit to drive and how, as
// read from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/logger"
	"github.com/xaionaro-go/camif/types"
)

const (
	DefaultSoC             = "exynos4-fimc"
	DefaultShutdownTimeout = 100 * time.Millisecond
	DefaultLogLevel        = "info"
)

// Config is the configuration of a single hardware unit.
type Config struct {
	SoC    string `yaml:"soc"`
	UnitID int    `yaml:"unit_id"`

	ParentClock string `yaml:"parent_clock"`
	// BusClockRate overrides the bus clock rate of the SoC (Hz).
	BusClockRate uint64 `yaml:"bus_clock_rate,omitempty"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`

	// Variant overrides the capabilities the SoC table defines for the
	// unit.
	Variant *types.Variant `yaml:"variant,omitempty"`
}

func Default() Config {
	return Config{
		SoC:             DefaultSoC,
		ParentClock:     hw.DefaultParentClock,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        DefaultLogLevel,
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read the config '%s': %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("unable to parse the config '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults and validates the
// result. An empty document yields the defaults.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	var errs []error
	data, err := hw.LookupDriverData(cfg.SoC)
	if err != nil {
		errs = append(errs, err)
	} else if cfg.Variant == nil {
		if _, err := data.Variant(cfg.UnitID); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.UnitID < 0 || cfg.UnitID >= hw.MaxUnits {
		errs = append(errs, fmt.Errorf("unit id %d is out of range [0, %d)", cfg.UnitID, hw.MaxUnits))
	}
	if cfg.ParentClock == "" {
		errs = append(errs, fmt.Errorf("the parent clock is not set"))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid shutdown timeout %v", cfg.ShutdownTimeout))
	}
	if _, err := logger.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return types.ErrInvalidArgument{Reason: "invalid configuration", Err: err}
	}
	return nil
}

// ResolveVariant returns the capabilities of the configured unit.
func (cfg Config) ResolveVariant() (types.Variant, error) {
	if cfg.Variant != nil {
		return *cfg.Variant, nil
	}
	data, err := hw.LookupDriverData(cfg.SoC)
	if err != nil {
		return types.Variant{}, err
	}
	return data.Variant(cfg.UnitID)
}

// ResolveBusClockRate returns the bus clock rate to set on the unit.
func (cfg Config) ResolveBusClockRate() (uint64, error) {
	if cfg.BusClockRate != 0 {
		return cfg.BusClockRate, nil
	}
	data, err := hw.LookupDriverData(cfg.SoC)
	if err != nil {
		return 0, err
	}
	return data.BusClockRate, nil
}

// Level returns the parsed log level.
func (cfg Config) Level() logger.Level {
	l, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logger.LevelInfo
	}
	return l
}
