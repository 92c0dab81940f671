// Package irq models the interrupt-controller seam between a hardware block
// and its driver. A Controller tracks one interrupt line per device index;
// the driver maps a line and installs a handler on it, and the hardware side
// (or a simulator) asserts the index to dispatch.
package irq

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownLine is returned when no interrupt line exists for an index.
	ErrUnknownLine = errors.New("irq: no interrupt line for index")

	// ErrLineBusy is returned when a handler is already installed on a line.
	ErrLineBusy = errors.New("irq: handler already installed")
)

// Handler runs in interrupt context: it must not block and should do no more
// work than acknowledging the device and dispatching.
type Handler func()

// Controller owns the per-index interrupt lines of one device block.
type Controller struct {
	mu    sync.Mutex
	lines map[int]*Line
}

func NewController() *Controller {
	return &Controller{lines: make(map[int]*Line)}
}

// AddLine declares the interrupt line for the given device index, carrying
// the controller-level line number num. Called during discovery, before any
// driver maps the line.
func (c *Controller) AddLine(index, num int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines[index] = &Line{owner: c, index: index, num: num}
}

// MapLine resolves the interrupt line for index and marks it mapped.
// Fails with ErrUnknownLine if discovery never declared one.
func (c *Controller) MapLine(index int) (*Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[index]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLine, index)
	}
	l.mu.Lock()
	l.mapped = true
	l.mu.Unlock()
	return l, nil
}

// Assert pulses the line for index from the hardware side. Unknown or
// unmapped indices are dropped, matching a line that nobody wired up.
func (c *Controller) Assert(index int) {
	c.mu.Lock()
	l := c.lines[index]
	c.mu.Unlock()
	if l != nil {
		l.Pulse()
	}
}

// Line is one interrupt line. The zero state is unmapped with no handler.
type Line struct {
	owner *Controller
	index int
	num   int

	mu      sync.Mutex
	mapped  bool
	handler Handler
}

// Index returns the device index the line belongs to.
func (l *Line) Index() int { return l.index }

// Num returns the controller-level line number.
func (l *Line) Num() int { return l.num }

// Request installs h as the line's handler. Fails with ErrLineBusy if a
// handler is already installed.
func (l *Line) Request(h Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handler != nil {
		return fmt.Errorf("%w: line %d (index %d)", ErrLineBusy, l.num, l.index)
	}
	l.handler = h
	return nil
}

// Dispose removes the handler and unmaps the line, returning it to the state
// it had before MapLine. Safe to call on a line with no handler.
func (l *Line) Dispose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = nil
	l.mapped = false
}

// Pulse dispatches the line edge to the installed handler. The handler runs
// synchronously on the calling goroutine, modelling interrupt context. The
// lock is not held across the dispatch so the handler may touch the line.
func (l *Line) Pulse() {
	l.mu.Lock()
	h := l.handler
	mapped := l.mapped
	l.mu.Unlock()
	if mapped && h != nil {
		h()
	}
}
