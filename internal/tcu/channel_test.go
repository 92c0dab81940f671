package tcu_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jzsoc/tcu/internal/clk"
	"github.com/jzsoc/tcu/internal/regmap"
	"github.com/jzsoc/tcu/internal/tcu"
)

func TestAcquireClaimsAndGatesClock(t *testing.T) {
	f := newFixture(t, 2)
	ch, err := f.unit.Channel(0)
	if err != nil {
		t.Fatal(err)
	}

	if err := ch.Acquire(f.clocks); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !f.unit.Claimed(0) {
		t.Fatal("channel not claimed after Acquire")
	}
	if !f.gates[0].Enabled() {
		t.Fatal("clock gate not enabled after Acquire")
	}
	if ch.Rate() != testClockRate {
		t.Fatalf("rate is %d, want %d", ch.Rate(), testClockRate)
	}

	ch.Release()
	if f.unit.Claimed(0) {
		t.Fatal("channel still claimed after Release")
	}
	if f.gates[0].Enabled() {
		t.Fatal("clock gate still enabled after Release")
	}
	if ch.Rate() != 0 {
		t.Fatalf("released channel reports rate %d", ch.Rate())
	}
}

func TestAcquireRollsBackOnMissingClock(t *testing.T) {
	f := newFixture(t, 1)
	ch, _ := f.unit.Channel(0)

	err := ch.Acquire(clk.Map{})
	if !errors.Is(err, tcu.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
	if !errors.Is(err, clk.ErrNotFound) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if f.unit.Claimed(0) {
		t.Fatal("claim not rolled back after clock lookup failure")
	}
}

func TestAcquireRollsBackOnEnableFailure(t *testing.T) {
	f := newFixture(t, 1)
	ch, _ := f.unit.Channel(0)

	err := ch.Acquire(clk.Map{"timer0": failGate{rate: testClockRate}})
	if !errors.Is(err, tcu.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
	if f.unit.Claimed(0) {
		t.Fatal("claim not rolled back after gate enable failure")
	}
}

func TestAcquireFailsFastOnClaimedChannel(t *testing.T) {
	f := newFixture(t, 1)
	ch, _ := f.unit.Channel(0)
	if err := f.unit.Claim(0); err != nil {
		t.Fatal(err)
	}

	if err := ch.Acquire(f.clocks); !errors.Is(err, tcu.ErrChannelBusy) {
		t.Fatalf("got %v, want ErrChannelBusy", err)
	}
	if f.gates[0].Enabled() {
		t.Fatal("gate touched for a channel the caller does not own")
	}
}

func TestResetClearsOnlyNonReservedBits(t *testing.T) {
	f := newFixture(t, 1)
	f.sim.SeedControl(0, 0xffff)
	ch, _ := f.unit.Channel(0)
	if err := ch.Acquire(f.clocks); err != nil {
		t.Fatal(err)
	}
	defer ch.Release()

	rec := &recordingRegs{inner: regmap.Window(f.sim.Regs(), tcu.RegTCSR(0))}
	ctrls := tcu.ControlRegsFunc(func(int) (regmap.Interface, error) { return rec, nil })

	if err := ch.Reset(ctrls); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	// The reserved low six bits survive; everything above them is cleared.
	if got := f.sim.Control(0); got != 0x003f {
		t.Fatalf("control register is %#x, want 0x003f", got)
	}
	if len(rec.writes) != 1 {
		t.Fatalf("reset performed %d writes, want 1", len(rec.writes))
	}
	w := rec.writes[0]
	if w.off != 0 {
		t.Fatalf("reset wrote offset %#x, want 0", w.off)
	}
	// Equivalent to asserting the clear mask is exactly 0xffc0.
	if w.val != 0xffff&^uint32(0xffc0) {
		t.Fatalf("reset wrote %#x, want %#x", w.val, 0xffff&^uint32(0xffc0))
	}
}

func TestResetRequiresControlRegister(t *testing.T) {
	f := newFixture(t, 1)
	ch, _ := f.unit.Channel(0)

	if err := ch.Reset(nil); !errors.Is(err, tcu.ErrInvalidConfig) {
		t.Fatalf("nil source gave %v, want ErrInvalidConfig", err)
	}

	missing := tcu.ControlRegsFunc(func(idx int) (regmap.Interface, error) {
		return nil, fmt.Errorf("no handle for channel %d", idx)
	})
	if err := ch.Reset(missing); !errors.Is(err, tcu.ErrInvalidConfig) {
		t.Fatalf("missing handle gave %v, want ErrInvalidConfig", err)
	}

	absent := tcu.ControlRegsFunc(func(int) (regmap.Interface, error) { return nil, nil })
	if err := ch.Reset(absent); !errors.Is(err, tcu.ErrInvalidConfig) {
		t.Fatalf("absent handle gave %v, want ErrInvalidConfig", err)
	}
}

func TestResetSurfacesWriteFailure(t *testing.T) {
	f := newFixture(t, 1)
	ch, _ := f.unit.Channel(0)

	broken := tcu.ControlRegsFunc(func(int) (regmap.Interface, error) {
		return regmap.Func{
			ReadFunc:  func(uint32) (uint32, error) { return 0xffff, nil },
			WriteFunc: func(uint32, uint32) error { return fmt.Errorf("bus fault") },
		}, nil
	})
	if err := ch.Reset(broken); !errors.Is(err, tcu.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}
