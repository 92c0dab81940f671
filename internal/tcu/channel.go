package tcu

import (
	"fmt"

	"github.com/jzsoc/tcu/internal/clk"
	"github.com/jzsoc/tcu/internal/regmap"
)

// Channel is one hardware countdown unit inside a Unit. The back-reference
// to the Unit is lookup-only: the Unit owns the channel array, not the other
// way around.
//
// Invariant: gate is non-nil exactly while the channel's ownership bit is
// set by Acquire. Release restores both together.
type Channel struct {
	unit *Unit
	idx  int
	gate clk.Gate
}

// Index returns the channel's zero-based index within its unit.
func (ch *Channel) Index() int { return ch.idx }

// Unit returns the owning timer block.
func (ch *Channel) Unit() *Unit { return ch.unit }

// ClockName returns the canonical name of the channel's clock gate.
func (ch *Channel) ClockName() string { return fmt.Sprintf("timer%d", ch.idx) }

// Rate returns the operating rate of the channel's clock, or 0 while the
// channel is unclaimed.
func (ch *Channel) Rate() uint64 {
	if ch.gate == nil {
		return 0
	}
	return ch.gate.Rate()
}

// Acquire claims the channel and enables its clock gate. If the gate cannot
// be resolved or enabled the claim is rolled back before the error surfaces,
// so a failed Acquire leaves no trace in the pool.
func (ch *Channel) Acquire(clocks clk.Provider) error {
	if err := ch.unit.Claim(ch.idx); err != nil {
		return err
	}

	name := ch.ClockName()
	gate, err := clocks.Lookup(name)
	if err != nil {
		ch.unit.unclaim(ch.idx)
		return fmt.Errorf("%w: clock %q: %w", ErrUnavailable, name, err)
	}
	if err := gate.Enable(); err != nil {
		ch.unit.unclaim(ch.idx)
		return fmt.Errorf("%w: enable clock %q: %w", ErrUnavailable, name, err)
	}

	ch.gate = gate
	return nil
}

// ControlRegs resolves the per-channel control/status register capability
// from the platform's configuration. Implemented by whoever did discovery.
type ControlRegs interface {
	ControlRegister(idx int) (regmap.Interface, error)
}

// ControlRegsFunc adapts a function to ControlRegs.
type ControlRegsFunc func(idx int) (regmap.Interface, error)

func (f ControlRegsFunc) ControlRegister(idx int) (regmap.Interface, error) { return f(idx) }

// Reset clears stale configuration from the channel's control register,
// leaving the hardware-reserved low bits untouched. A separate step from
// Acquire because the per-channel control lookup can itself fail after the
// channel is already claimed and clocked; callers must Release on failure.
func (ch *Channel) Reset(ctrls ControlRegs) error {
	if ctrls == nil {
		return fmt.Errorf("%w: no control register source", ErrInvalidConfig)
	}
	ctrl, err := ctrls.ControlRegister(ch.idx)
	if err != nil {
		return fmt.Errorf("%w: control register for channel %d: %w", ErrInvalidConfig, ch.idx, err)
	}
	if ctrl == nil {
		return fmt.Errorf("%w: no control register for channel %d", ErrInvalidConfig, ch.idx)
	}
	if err := regmap.ClearBits(ctrl, 0, 0xffff&^uint32(TCSRReservedBits)); err != nil {
		return fmt.Errorf("%w: clear control bits for channel %d: %w", ErrUnavailable, ch.idx, err)
	}
	return nil
}

// Release disables the clock gate and returns the channel to the pool, in
// that order. It never fails and is safe to call from any unwind path,
// including on an already-released channel.
func (ch *Channel) Release() {
	if ch.gate != nil {
		ch.gate.Disable()
		ch.gate = nil
	}
	ch.unit.unclaim(ch.idx)
}
