package tcu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jzsoc/tcu/internal/clk"
	"github.com/jzsoc/tcu/internal/clockevent"
	"github.com/jzsoc/tcu/internal/irq"
	"github.com/jzsoc/tcu/internal/regmap"
	"github.com/jzsoc/tcu/internal/topology"
)

// Policy selects how Boot reacts when one timer's setup fails.
type Policy int

const (
	// FailFast aborts the whole boot on the first setup failure and tears
	// down any endpoints already built. Appropriate when the tick source is
	// boot-critical.
	FailFast Policy = iota

	// ContinueOnError skips the failed timer and keeps wiring the rest. The
	// accumulated errors are returned alongside the surviving endpoints.
	ContinueOnError
)

// BootConfig bundles the topology and the resolved capabilities Boot needs.
type BootConfig struct {
	Topology *topology.Topology

	// Base is the per-channel countdown register file; Enable is the shared
	// enable/disable group usable by any channel owner.
	Base   regmap.Interface
	Enable regmap.Interface

	Clocks    clk.Provider
	Controls  ControlRegs
	Lines     *irq.Controller
	Registrar clockevent.Registrar

	Policy Policy
	Logger *slog.Logger
}

// Boot sizes the channel pool from the topology and wires up one timer-event
// endpoint per requested timer index. Under FailFast any setup error aborts
// the boot; under ContinueOnError the survivors are returned together with
// the joined per-timer errors.
func Boot(cfg BootConfig) (*Unit, []*EventChannel, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	if cfg.Topology == nil {
		return nil, nil, fmt.Errorf("%w: no topology", ErrInvalidConfig)
	}
	if err := cfg.Topology.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	unit, err := NewUnit(cfg.Topology.ChannelCount(), cfg.Base, cfg.Enable)
	if err != nil {
		return nil, nil, err
	}
	log.Info("timer unit initialized", "channels", unit.NumChannels())

	setup := SetupConfig{
		Clocks:    cfg.Clocks,
		Controls:  cfg.Controls,
		Lines:     cfg.Lines,
		Registrar: cfg.Registrar,
	}

	var (
		events []*EventChannel
		errs   []error
	)
	for _, idx := range cfg.Topology.Timers {
		ec, err := SetupEventChannel(setup, unit, idx)
		if err != nil {
			log.Error("timer event channel setup failed", "channel", idx, "error", err)
			if cfg.Policy == FailFast {
				for _, built := range events {
					built.teardown()
				}
				return nil, nil, fmt.Errorf("channel %d: %w", idx, err)
			}
			errs = append(errs, fmt.Errorf("channel %d: %w", idx, err))
			continue
		}
		log.Info("timer event channel ready",
			"channel", idx, "name", ec.Device().Name, "rate", ec.Device().Rate)
		events = append(events, ec)
	}

	return unit, events, errors.Join(errs...)
}
