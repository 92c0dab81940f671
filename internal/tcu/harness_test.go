package tcu_test

import (
	"fmt"
	"testing"

	"github.com/jzsoc/tcu/internal/clk"
	"github.com/jzsoc/tcu/internal/clockevent"
	"github.com/jzsoc/tcu/internal/irq"
	"github.com/jzsoc/tcu/internal/regmap"
	"github.com/jzsoc/tcu/internal/tcu"
	"github.com/jzsoc/tcu/internal/tcusim"
)

// fixture wires a simulated timer block to everything SetupEventChannel
// needs: interrupt lines raised by the simulator, one fixed-rate gate per
// channel, per-channel control registers windowed out of the main file, and
// an endpoint registry.
type fixture struct {
	sim      *tcusim.Sim
	lines    *irq.Controller
	gates    map[int]*clk.FixedGate
	clocks   clk.Map
	registry *clockevent.Registry
	unit     *tcu.Unit
}

const testClockRate = 750000

func newFixture(t *testing.T, channels int) *fixture {
	t.Helper()

	f := &fixture{
		lines:    irq.NewController(),
		gates:    make(map[int]*clk.FixedGate),
		clocks:   clk.Map{},
		registry: clockevent.NewRegistry(),
	}
	for i := 0; i < channels; i++ {
		f.lines.AddLine(i, 26+i)
		g := clk.NewFixedGate(testClockRate)
		f.gates[i] = g
		f.clocks[fmt.Sprintf("timer%d", i)] = g
	}
	f.sim = tcusim.New(channels, f.lines)

	unit, err := tcu.NewUnit(channels, f.sim.Regs(), f.sim.EnableRegs())
	if err != nil {
		t.Fatalf("NewUnit failed: %v", err)
	}
	f.unit = unit
	return f
}

func (f *fixture) controls() tcu.ControlRegs {
	return tcu.ControlRegsFunc(func(idx int) (regmap.Interface, error) {
		return regmap.Window(f.sim.Regs(), tcu.RegTCSR(idx)), nil
	})
}

func (f *fixture) setupConfig() tcu.SetupConfig {
	return tcu.SetupConfig{
		Clocks:    f.clocks,
		Controls:  f.controls(),
		Lines:     f.lines,
		Registrar: f.registry,
	}
}

// failGate is a clock gate whose Enable always fails.
type failGate struct{ rate uint64 }

func (g failGate) Enable() error { return fmt.Errorf("gate stuck") }
func (g failGate) Disable()      {}
func (g failGate) Rate() uint64  { return g.rate }

// recordingRegs journals writes going through a register capability.
type recordingRegs struct {
	inner  regmap.Interface
	writes []regWrite
}

type regWrite struct{ off, val uint32 }

func (r *recordingRegs) Read32(off uint32) (uint32, error) { return r.inner.Read32(off) }

func (r *recordingRegs) Write32(off uint32, val uint32) error {
	r.writes = append(r.writes, regWrite{off, val})
	return r.inner.Write32(off, val)
}
