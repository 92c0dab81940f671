// Package topology describes the discovered wiring of a timer/counter unit:
// how many channels the block has, which interrupt line each channel fires,
// and which channels should be wired up as timer-event endpoints. The data
// comes from the platform's device topology; this package only parses and
// validates it.
package topology

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MaxChannels is the hardware limit on channels per timer block.
const MaxChannels = 8

var (
	ErrNoInterrupts    = errors.New("topology: no interrupt lines declared")
	ErrTooManyChannels = errors.New("topology: more interrupt lines than hardware channels")
	ErrNoTimers        = errors.New("topology: no timer indices declared")
	ErrTimerOutOfRange = errors.New("topology: timer index outside channel range")
	ErrDuplicateTimer  = errors.New("topology: timer index declared twice")
)

// Topology is the discovered configuration for one timer block.
type Topology struct {
	// Interrupts holds the controller-level interrupt line number for each
	// channel, in channel order. Its length is the channel count.
	Interrupts []int `yaml:"interrupts"`

	// Timers lists the channel indices to expose as timer-event endpoints.
	Timers []int `yaml:"timers"`
}

// ChannelCount returns the number of hardware channels, one per declared
// interrupt line.
func (t *Topology) ChannelCount() int { return len(t.Interrupts) }

// Validate checks the topology against the hardware limits.
func (t *Topology) Validate() error {
	if len(t.Interrupts) == 0 {
		return ErrNoInterrupts
	}
	if len(t.Interrupts) > MaxChannels {
		return fmt.Errorf("%w: %d > %d", ErrTooManyChannels, len(t.Interrupts), MaxChannels)
	}
	if len(t.Timers) == 0 {
		return ErrNoTimers
	}
	seen := make(map[int]bool, len(t.Timers))
	for _, idx := range t.Timers {
		if idx < 0 || idx >= len(t.Interrupts) {
			return fmt.Errorf("%w: %d (channels 0..%d)", ErrTimerOutOfRange, idx, len(t.Interrupts)-1)
		}
		if seen[idx] {
			return fmt.Errorf("%w: %d", ErrDuplicateTimer, idx)
		}
		seen[idx] = true
	}
	return nil
}

// Parse decodes and validates a YAML topology.
func Parse(data []byte) (*Topology, error) {
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("topology: parse: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads and parses a topology file.
func Load(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("topology: read %s: %w", path, err)
	}
	return Parse(data)
}
