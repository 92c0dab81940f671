// Package tcu manages the fixed bank of hardware countdown channels in a
// SoC timer/counter unit: it claims channels exclusively on behalf of
// software clients, programs their clock gating and countdown registers, and
// bridges countdown-expiry interrupts into generic one-shot timer-event
// endpoints for a scheduling-tick consumer.
//
// The driver takes already-resolved register, clock and interrupt
// capabilities as inputs; discovery and address-space mapping happen
// outside. internal/tcusim provides a register-accurate software model of
// the block for tests and bring-up.
package tcu

import (
	"github.com/jzsoc/tcu/internal/clk"
	"github.com/jzsoc/tcu/internal/clockevent"
	"github.com/jzsoc/tcu/internal/irq"
	"github.com/jzsoc/tcu/internal/regmap"
	driver "github.com/jzsoc/tcu/internal/tcu"
	"github.com/jzsoc/tcu/internal/topology"
)

// -----------------------------------------------------------------------------
// Type aliases - these re-export types from the internal packages
// -----------------------------------------------------------------------------

// Unit is one timer/counter block: a fixed pool of countdown channels plus
// the register capabilities shared by all of them.
type Unit = driver.Unit

// Channel is one hardware countdown unit inside a Unit.
type Channel = driver.Channel

// EventChannel binds one claimed hardware channel to one timer-event
// endpoint.
type EventChannel = driver.EventChannel

// EventDevice is the generic timer-event endpoint handed to the tick
// consumer.
type EventDevice = clockevent.Device

// Registrar accepts fully-configured timer-event endpoints.
type Registrar = clockevent.Registrar

// Topology is the discovered wiring of the block.
type Topology = topology.Topology

// RegisterFile is a 32-bit register access capability.
type RegisterFile = regmap.Interface

// ClockGate is one gateable clock; ClockProvider resolves gates by name.
type ClockGate = clk.Gate
type ClockProvider = clk.Provider

// InterruptController owns the block's per-channel interrupt lines.
type InterruptController = irq.Controller

// ControlRegs resolves per-channel control register capabilities.
type ControlRegs = driver.ControlRegs

// BootConfig bundles the topology and resolved capabilities for Boot.
type BootConfig = driver.BootConfig

// SetupConfig carries the capabilities for a single event-channel setup.
type SetupConfig = driver.SetupConfig

// Policy selects how Boot reacts when one timer's setup fails.
type Policy = driver.Policy

const (
	FailFast        = driver.FailFast
	ContinueOnError = driver.ContinueOnError
)

// Hardware limits of the countdown channels.
const (
	MaxChannels   = driver.MaxChannels
	MinEventTicks = driver.MinEventTicks
	MaxEventTicks = driver.MaxEventTicks
)

// Common sentinel errors, matchable with errors.Is.
var (
	ErrInvalidConfig = driver.ErrInvalidConfig
	ErrUnavailable   = driver.ErrUnavailable
	ErrChannelBusy   = driver.ErrChannelBusy
	ErrRangeExceeded = driver.ErrRangeExceeded
)

// -----------------------------------------------------------------------------
// Entry points
// -----------------------------------------------------------------------------

// NewUnit builds a Unit with channelCount unclaimed channels over the given
// countdown register file and shared enable group.
func NewUnit(channelCount int, base, enable RegisterFile) (*Unit, error) {
	return driver.NewUnit(channelCount, base, enable)
}

// SetupEventChannel acquires channel idx of u and registers it as a one-shot
// timer-event endpoint, rolling back completely on any failure.
func SetupEventChannel(cfg SetupConfig, u *Unit, idx int) (*EventChannel, error) {
	return driver.SetupEventChannel(cfg, u, idx)
}

// Boot sizes the channel pool from the topology and wires one timer-event
// endpoint per requested timer index.
func Boot(cfg BootConfig) (*Unit, []*EventChannel, error) {
	return driver.Boot(cfg)
}
