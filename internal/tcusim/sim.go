// Package tcusim is a register-accurate software model of the timer/counter
// unit, for driver tests and bring-up without hardware. It implements the
// block's register file including the write-1-to-set/clear semantics of the
// shared groups, counts enabled channels up to their full-match value, and
// raises the channel's interrupt line on match.
package tcusim

import (
	"sync"

	"github.com/jzsoc/tcu/internal/regmap"
	"github.com/jzsoc/tcu/internal/tcu"
)

// InterruptSink receives full-match interrupts, one line per channel index.
type InterruptSink interface {
	Assert(index int)
}

type noopSink struct{}

func (noopSink) Assert(int) {}

// Sim holds the register state of one simulated timer block.
type Sim struct {
	sink InterruptSink

	mu       sync.Mutex
	channels int
	enable   uint32 // TER
	stop     uint32 // TSR
	flags    uint32 // TFR
	mask     uint32 // TMR
	srst     uint32 // TSTR

	tdfr [tcu.MaxChannels]uint32
	tdhr [tcu.MaxChannels]uint32
	tcnt [tcu.MaxChannels]uint32
	tcsr [tcu.MaxChannels]uint32
}

// New builds a simulator with the given channel count, clamped to the
// hardware range. A nil sink drops all interrupts.
func New(channels int, sink InterruptSink) *Sim {
	if channels < 1 {
		channels = 1
	}
	if channels > tcu.MaxChannels {
		channels = tcu.MaxChannels
	}
	if sink == nil {
		sink = noopSink{}
	}
	return &Sim{sink: sink, channels: channels}
}

// Regs returns the per-channel countdown register file capability.
func (s *Sim) Regs() regmap.Interface {
	return regmap.Func{ReadFunc: s.read, WriteFunc: s.write}
}

// EnableRegs returns the shared enable/disable group capability. It only
// serves the shared status/set/clear groups; per-channel offsets are
// rejected, which is what makes it a distinct handle from Regs.
func (s *Sim) EnableRegs() regmap.Interface {
	return regmap.Func{
		ReadFunc: func(off uint32) (uint32, error) {
			if off < tcu.RegTER || off >= tcu.RegTDFR0 {
				return regmap.Func{}.Read32(off)
			}
			return s.read(off)
		},
		WriteFunc: func(off uint32, val uint32) error {
			if off < tcu.RegTER || off >= tcu.RegTDFR0 {
				return regmap.Func{}.Write32(off, val)
			}
			return s.write(off, val)
		},
	}
}

func (s *Sim) chanMask() uint32 {
	return (uint32(1) << uint(s.channels)) - 1
}

func (s *Sim) read(off uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch off {
	case tcu.RegTER:
		return s.enable, nil
	case tcu.RegTSR:
		return s.stop, nil
	case tcu.RegTFR:
		return s.flags, nil
	case tcu.RegTMR:
		return s.mask, nil
	case tcu.RegTSTR:
		return s.srst, nil
	}

	if off >= tcu.RegTDFR0 && off < tcu.RegTSTR {
		idx := int(off-tcu.RegTDFR0) / tcu.ChannelStride
		if idx >= s.channels {
			return 0, nil
		}
		switch (off - tcu.RegTDFR0) % tcu.ChannelStride {
		case 0x0:
			return s.tdfr[idx], nil
		case 0x4:
			return s.tdhr[idx], nil
		case 0x8:
			return s.tcnt[idx], nil
		case 0xc:
			return s.tcsr[idx], nil
		}
	}

	// Set/clear companions and unknown offsets read as zero.
	return 0, nil
}

func (s *Sim) write(off uint32, val uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch off {
	case tcu.RegTESR:
		s.enable |= val & s.chanMask()
		return nil
	case tcu.RegTECR:
		s.enable &^= val
		return nil
	case tcu.RegTFSR:
		s.flags |= val
		return nil
	case tcu.RegTFCR:
		s.flags &^= val
		return nil
	case tcu.RegTMSR:
		s.mask |= val
		return nil
	case tcu.RegTMCR:
		s.mask &^= val
		return nil
	case tcu.RegTSSR:
		s.stop |= val & s.chanMask()
		return nil
	case tcu.RegTSCR:
		s.stop &^= val
		return nil
	case tcu.RegTSTSR:
		s.srst |= val
		return nil
	case tcu.RegTSTCR:
		s.srst &^= val
		return nil
	case tcu.RegTER, tcu.RegTSR, tcu.RegTFR, tcu.RegTMR, tcu.RegTSTR:
		// Status registers are modified through their set/clear companions.
		return nil
	}

	if off >= tcu.RegTDFR0 && off < tcu.RegTSTR {
		idx := int(off-tcu.RegTDFR0) / tcu.ChannelStride
		if idx >= s.channels {
			return nil
		}
		switch (off - tcu.RegTDFR0) % tcu.ChannelStride {
		case 0x0:
			s.tdfr[idx] = val & tcu.CountdownMax
		case 0x4:
			s.tdhr[idx] = val & tcu.CountdownMax
		case 0x8:
			s.tcnt[idx] = val & tcu.CountdownMax
		case 0xc:
			s.tcsr[idx] = val & tcu.CountdownMax
		}
	}
	return nil
}

// Advance steps every enabled, non-stopped channel by ticks. A channel whose
// live count reaches its full-match value wraps to zero, latches the
// full-match flag and, unless masked, pulses its interrupt line. Interrupts
// dispatch after the register state settles so handlers can program the
// block from within the callback.
func (s *Sim) Advance(ticks uint32) {
	if ticks == 0 {
		return
	}
	s.mu.Lock()
	var fired []int
	for idx := 0; idx < s.channels; idx++ {
		bit := uint32(1) << uint(idx)
		if s.enable&bit == 0 || s.stop&bit != 0 {
			continue
		}
		// The counter resets to zero on reaching the full-match value, so
		// each match period is exactly limit ticks.
		limit := uint64(s.tdfr[idx])
		total := uint64(s.tcnt[idx]) + uint64(ticks)
		switch {
		case limit == 0:
			s.tcnt[idx] = 0
			s.flags |= bit
			if s.mask&bit == 0 {
				fired = append(fired, idx)
			}
		case total >= limit:
			s.tcnt[idx] = uint32(total % limit)
			s.flags |= bit
			if s.mask&bit == 0 {
				fired = append(fired, idx)
			}
		default:
			s.tcnt[idx] = uint32(total)
		}
	}
	s.mu.Unlock()

	for _, idx := range fired {
		s.sink.Assert(idx)
	}
}

// Enabled reports whether channel idx is counting.
func (s *Sim) Enabled(idx int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enable&(1<<uint(idx)) != 0
}

// Counter returns channel idx's live count.
func (s *Sim) Counter(idx int) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tcnt[idx]
}

// FullMatch returns channel idx's countdown limit.
func (s *Sim) FullMatch(idx int) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tdfr[idx]
}

// Control returns channel idx's control/status register.
func (s *Sim) Control(idx int) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tcsr[idx]
}

// SeedControl plants val in channel idx's control register, modelling stale
// state left by an earlier boot stage.
func (s *Sim) SeedControl(idx int, val uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tcsr[idx] = val
}
