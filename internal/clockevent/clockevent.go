// Package clockevent defines the generic timer-event contract between
// hardware timer drivers and a scheduling-tick consumer. A driver wraps each
// hardware timer in a Device carrying its programming callbacks and limits;
// the consumer installs an event handler and calls SetNextEvent from it to
// keep the tick running.
package clockevent

import (
	"errors"
	"fmt"
	"sync"
)

// Feature flags advertised by a Device.
type Feature uint32

const (
	// FeatureOneShot marks a device that fires once per programmed expiry
	// and must be rearmed by the event handler.
	FeatureOneShot Feature = 1 << iota
)

var (
	ErrNoName        = errors.New("clockevent: device has no name")
	ErrNoCallbacks   = errors.New("clockevent: device is missing programming callbacks")
	ErrBadRange      = errors.New("clockevent: invalid programmable range")
	ErrDuplicateName = errors.New("clockevent: device name already registered")
)

// Device is one registered timer-event endpoint.
//
// The exported fields are fixed at registration time. The event handler is
// the one mutable piece: the consumer installs it after registration and the
// driver's interrupt path dispatches through it.
type Device struct {
	Name     string
	Rating   int
	Features Feature
	CPU      int

	// Rate is the counting frequency in Hz; MinDelta and MaxDelta bound the
	// programmable countdown in ticks at that rate.
	Rate     uint64
	MinDelta uint32
	MaxDelta uint32

	// SetNextEvent programs the next expiry, in ticks. The device fires once
	// and stays disarmed until the next call.
	SetNextEvent func(ticks uint32) error

	// SetStateShutdown stops the device from firing.
	SetStateShutdown func() error

	mu      sync.Mutex
	handler func(*Device)
}

// SetEventHandler installs the consumer's tick callback. A nil handler
// detaches the consumer; the driver keeps disarming on expiry either way.
func (d *Device) SetEventHandler(fn func(*Device)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = fn
}

// DispatchEvent invokes the installed handler, if any. The lock is dropped
// before the call: handlers rearm the device synchronously via SetNextEvent.
func (d *Device) DispatchEvent() {
	d.mu.Lock()
	fn := d.handler
	d.mu.Unlock()
	if fn != nil {
		fn(d)
	}
}

// SupportsOneShot reports whether the device advertises one-shot operation.
func (d *Device) SupportsOneShot() bool {
	return d.Features&FeatureOneShot != 0
}

// Registrar accepts fully-configured devices from drivers, and takes them
// back when a driver tears its endpoint down.
type Registrar interface {
	Register(d *Device) error
	Unregister(name string)
}

// ConfigAndRegister fills in the device's rate and programmable range and
// hands it to the registrar in one step.
func ConfigAndRegister(r Registrar, d *Device, rate uint64, minDelta, maxDelta uint32) error {
	d.Rate = rate
	d.MinDelta = minDelta
	d.MaxDelta = maxDelta
	return r.Register(d)
}

// Registry is an in-process Registrar keyed by device name.
type Registry struct {
	mu      sync.Mutex
	devices map[string]*Device
}

func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

func (r *Registry) Register(d *Device) error {
	if d.Name == "" {
		return ErrNoName
	}
	if d.SetNextEvent == nil || d.SetStateShutdown == nil {
		return fmt.Errorf("%w: %s", ErrNoCallbacks, d.Name)
	}
	if d.MinDelta > d.MaxDelta || d.MaxDelta == 0 {
		return fmt.Errorf("%w: %s: [%d, %d]", ErrBadRange, d.Name, d.MinDelta, d.MaxDelta)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[d.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, d.Name)
	}
	r.devices[d.Name] = d
	return nil
}

// Unregister withdraws the device registered under name, freeing the name
// for re-registration. Unknown names are a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.devices, name)
}

// Lookup returns the device registered under name.
func (r *Registry) Lookup(name string) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[name]
	return d, ok
}

// Devices returns a snapshot of all registered devices.
func (r *Registry) Devices() []*Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}

var _ Registrar = (*Registry)(nil)
