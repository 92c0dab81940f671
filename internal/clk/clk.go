// Package clk models the clock-tree capabilities a register-level driver
// needs: per-device gates that can be enabled and disabled, and a provider
// that resolves gates by canonical name. Real clock-tree management lives
// outside the driver; these interfaces are the injection seam.
package clk

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by providers for names with no registered gate.
var ErrNotFound = errors.New("clk: clock not found")

// Gate is one gateable clock. Rate reports the operating frequency in Hz.
type Gate interface {
	Enable() error
	Disable()
	Rate() uint64
}

// Provider resolves clock gates by canonical name, e.g. "timer3".
type Provider interface {
	Lookup(name string) (Gate, error)
}

// Map is a Provider backed by a static name table.
type Map map[string]Gate

func (m Map) Lookup(name string) (Gate, error) {
	g, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return g, nil
}

// FixedGate is an enable-counted gate with a fixed rate, for tests and
// simulation.
type FixedGate struct {
	mu      sync.Mutex
	rate    uint64
	enables int
}

func NewFixedGate(rate uint64) *FixedGate {
	return &FixedGate{rate: rate}
}

func (g *FixedGate) Enable() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enables++
	return nil
}

func (g *FixedGate) Disable() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enables > 0 {
		g.enables--
	}
}

func (g *FixedGate) Rate() uint64 { return g.rate }

// Enabled reports whether the gate currently has more enables than disables.
func (g *FixedGate) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enables > 0
}

var (
	_ Provider = Map(nil)
	_ Gate     = (*FixedGate)(nil)
)
