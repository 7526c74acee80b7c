// camif.go provides the constructors wiring a configuration to a device.

// Package camif drives FIMC/CAMIF image-processing units: it resolves
// the configured SoC into unit capabilities and hands them, together
// with a hardware backend, to package device.
package camif

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/camif/config"
	"github.com/xaionaro-go/camif/device"
	"github.com/xaionaro-go/camif/hw"
	"github.com/xaionaro-go/camif/hwsim"
	"github.com/xaionaro-go/camif/logger"
)

// DeviceOptions converts the configuration into device options.
func DeviceOptions(cfg config.Config) (device.Options, error) {
	rate, err := cfg.ResolveBusClockRate()
	if err != nil {
		return nil, err
	}
	return device.Options{
		device.OptionUnitID(cfg.UnitID),
		device.OptionShutdownTimeout(cfg.ShutdownTimeout),
		device.OptionParentClock(cfg.ParentClock),
		device.OptionBusClockRate(rate),
	}, nil
}

// NewDevice returns a closed device for the configured unit driving
// backend. opts are applied after the configuration.
func NewDevice(
	ctx context.Context,
	cfg config.Config,
	backend hw.Backend,
	opts ...device.Option,
) (*device.Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	variant, err := cfg.ResolveVariant()
	if err != nil {
		return nil, err
	}
	options, err := DeviceOptions(cfg)
	if err != nil {
		return nil, err
	}
	options = append(options, opts...)

	ctx = logger.CtxWithField(ctx, "unit", cfg.UnitID)
	logger.Debugf(ctx, "creating a device for %s unit %d", cfg.SoC, cfg.UnitID)
	return device.New(ctx, backend, variant, options...)
}

// Simulated is an opened device driving a simulated unit.
type Simulated struct {
	Simulator *hwsim.Simulator
	Device    *device.Device
}

// OpenSimulated creates and opens a device for the configured unit on
// top of a simulator.
func OpenSimulated(
	ctx context.Context,
	cfg config.Config,
	simOpts []hwsim.Option,
	opts ...device.Option,
) (*Simulated, error) {
	sim := hwsim.New(ctx, simOpts...)
	dev, err := NewDevice(ctx, cfg, sim.Backend(), opts...)
	if err != nil {
		sim.Close(ctx)
		return nil, err
	}
	if err := dev.Open(ctx); err != nil {
		sim.Close(ctx)
		return nil, fmt.Errorf("unable to open %s: %w", dev, err)
	}
	return &Simulated{Simulator: sim, Device: dev}, nil
}

// Close closes the device and stops the simulator.
func (s *Simulated) Close(ctx context.Context) error {
	err := s.Device.Close(ctx)
	if sErr := s.Simulator.Close(ctx); sErr != nil && err == nil {
		err = sErr
	}
	return err
}
