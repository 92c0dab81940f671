package tcu

import (
	"fmt"
	"sync/atomic"

	"github.com/jzsoc/tcu/internal/regmap"
)

// MaxChannels is the hardware limit on countdown channels per timer block.
const MaxChannels = 8

// Unit is one timer/counter block: a fixed pool of countdown channels
// plus the register capabilities shared by all of them. A Unit is built once
// at boot and lives for the process lifetime.
type Unit struct {
	base regmap.Interface // per-channel countdown register file
	ter  regmap.Interface // shared enable/disable register group

	channels []Channel

	// claimed has one ownership bit per channel. Claim and release go
	// through atomic operations because independent subsystems (tick
	// endpoints, profiling timers) claim channels concurrently at startup.
	claimed atomic.Uint32
}

// NewUnit builds a Unit with channelCount unclaimed channels over the given
// register capabilities.
func NewUnit(channelCount int, base, ter regmap.Interface) (*Unit, error) {
	if channelCount < 1 || channelCount > MaxChannels {
		return nil, fmt.Errorf("%w: channel count %d outside 1..%d",
			ErrInvalidConfig, channelCount, MaxChannels)
	}
	if base == nil {
		return nil, fmt.Errorf("%w: countdown register file not mapped", ErrUnavailable)
	}
	if ter == nil {
		return nil, fmt.Errorf("%w: shared enable register group not resolved", ErrUnavailable)
	}

	u := &Unit{base: base, ter: ter}
	u.channels = make([]Channel, channelCount)
	for i := range u.channels {
		u.channels[i] = Channel{unit: u, idx: i}
	}
	return u, nil
}

// NumChannels returns the size of the channel pool.
func (u *Unit) NumChannels() int { return len(u.channels) }

// Channel returns the channel at idx.
func (u *Unit) Channel(idx int) (*Channel, error) {
	if idx < 0 || idx >= len(u.channels) {
		return nil, fmt.Errorf("%w: channel index %d outside 0..%d",
			ErrInvalidConfig, idx, len(u.channels)-1)
	}
	return &u.channels[idx], nil
}

// Claim takes exclusive ownership of channel idx. It is a fail-fast
// test-and-set, not a lock: if another client holds the channel the call
// returns ErrChannelBusy immediately.
func (u *Unit) Claim(idx int) error {
	if idx < 0 || idx >= len(u.channels) {
		return fmt.Errorf("%w: channel index %d outside 0..%d",
			ErrInvalidConfig, idx, len(u.channels)-1)
	}
	bit := uint32(1) << uint(idx)
	for {
		cur := u.claimed.Load()
		if cur&bit != 0 {
			return fmt.Errorf("%w: channel %d", ErrChannelBusy, idx)
		}
		if u.claimed.CompareAndSwap(cur, cur|bit) {
			return nil
		}
	}
}

// unclaim drops the ownership bit for idx unconditionally. Callers must have
// torn down any clock or endpoint state first. Idempotent.
func (u *Unit) unclaim(idx int) {
	u.claimed.And(^(uint32(1) << uint(idx)))
}

// Claimed reports whether channel idx is currently owned.
func (u *Unit) Claimed(idx int) bool {
	if idx < 0 || idx >= len(u.channels) {
		return false
	}
	return u.claimed.Load()&(1<<uint(idx)) != 0
}
