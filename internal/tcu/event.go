package tcu

import (
	"fmt"

	"github.com/jzsoc/tcu/internal/clk"
	"github.com/jzsoc/tcu/internal/clockevent"
	"github.com/jzsoc/tcu/internal/irq"
)

const (
	// EventRating is the priority advertised for timer-event endpoints,
	// above generic software fallbacks.
	EventRating = 200

	// MinEventTicks and MaxEventTicks bound the programmable countdown.
	MinEventTicks = 10
	MaxEventTicks = CountdownMax
)

// SetupConfig carries the already-resolved capabilities SetupEventChannel
// needs. Discovery and handle resolution happen outside the driver.
type SetupConfig struct {
	Clocks    clk.Provider
	Controls  ControlRegs
	Lines     *irq.Controller
	Registrar clockevent.Registrar
}

// EventChannel binds one claimed hardware channel to one timer-event
// endpoint. At most one EventChannel exists per channel, enforced by the
// channel claim in SetupEventChannel.
type EventChannel struct {
	channel   *Channel
	line      *irq.Line
	dev       *clockevent.Device
	registrar clockevent.Registrar
}

// SetupEventChannel acquires channel idx of u and registers it as a one-shot
// timer-event endpoint. Every failure branch undoes exactly the side effects
// of the steps before it, in reverse order: a failed setup is
// indistinguishable from one never attempted.
func SetupEventChannel(cfg SetupConfig, u *Unit, idx int) (*EventChannel, error) {
	ch, err := u.Channel(idx)
	if err != nil {
		return nil, err
	}

	if err := ch.Acquire(cfg.Clocks); err != nil {
		return nil, err
	}

	if err := ch.Reset(cfg.Controls); err != nil {
		ch.Release()
		return nil, err
	}

	rate := ch.Rate()
	if rate == 0 {
		ch.Release()
		return nil, fmt.Errorf("%w: clock %q reports zero rate", ErrInvalidConfig, ch.ClockName())
	}

	ec := &EventChannel{channel: ch}

	if cfg.Lines == nil {
		ch.Release()
		return nil, fmt.Errorf("%w: no interrupt controller", ErrUnavailable)
	}
	line, err := cfg.Lines.MapLine(idx)
	if err != nil {
		ch.Release()
		return nil, fmt.Errorf("%w: interrupt line for channel %d: %w", ErrUnavailable, idx, err)
	}
	ec.line = line

	if err := line.Request(ec.onInterrupt); err != nil {
		// A failing Request means another owner already holds the line
		// mapped with their handler; leave that binding untouched.
		ch.Release()
		return nil, fmt.Errorf("%w: install handler for channel %d: %w", ErrUnavailable, idx, err)
	}

	ec.dev = &clockevent.Device{
		Name:             fmt.Sprintf("tcu-chan%d", idx),
		Rating:           EventRating,
		Features:         clockevent.FeatureOneShot,
		CPU:              currentCPU(),
		SetNextEvent:     ec.setNext,
		SetStateShutdown: ec.shutdown,
	}
	if err := clockevent.ConfigAndRegister(cfg.Registrar, ec.dev, rate, MinEventTicks, MaxEventTicks); err != nil {
		line.Dispose()
		ch.Release()
		return nil, fmt.Errorf("register endpoint for channel %d: %w", idx, err)
	}
	ec.registrar = cfg.Registrar

	return ec, nil
}

// Channel returns the bound hardware channel.
func (ec *EventChannel) Channel() *Channel { return ec.channel }

// Device returns the registered timer-event endpoint.
func (ec *EventChannel) Device() *clockevent.Device { return ec.dev }

// setNext programs the next expiry: countdown limit, live count back to
// zero, then start the channel through the shared enable group.
func (ec *EventChannel) setNext(ticks uint32) error {
	if ticks > MaxEventTicks {
		return fmt.Errorf("%w: %d > %d", ErrRangeExceeded, ticks, uint32(MaxEventTicks))
	}
	u, idx := ec.channel.unit, ec.channel.idx
	if err := u.base.Write32(RegTDFR(idx), ticks); err != nil {
		return err
	}
	if err := u.base.Write32(RegTCNT(idx), 0); err != nil {
		return err
	}
	return enableChannel(u.ter, idx)
}

// shutdown stops the channel counting.
func (ec *EventChannel) shutdown() error {
	return disableChannel(ec.channel.unit.ter, ec.channel.idx)
}

// onInterrupt runs in interrupt context on countdown expiry. The channel is
// disarmed before the handler dispatch: the handler may rearm synchronously
// through SetNextEvent, and the hardware must not refire mid-dispatch.
func (ec *EventChannel) onInterrupt() {
	_ = disableChannel(ec.channel.unit.ter, ec.channel.idx)
	ec.dev.DispatchEvent()
}

// teardown undoes a completed setup in reverse order: withdraw the endpoint
// so its name frees up and no consumer can arm the channel through a stale
// Device, drop the interrupt binding, stop the channel, release it.
func (ec *EventChannel) teardown() {
	ec.registrar.Unregister(ec.dev.Name)
	ec.line.Dispose()
	_ = ec.shutdown()
	ec.channel.Release()
}
