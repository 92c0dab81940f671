package regmap

import "sync"

// Mem is a map-backed register file for tests and simulation. The zero value
// is ready to use; unwritten registers read as zero.
type Mem struct {
	mu   sync.Mutex
	regs map[uint32]uint32
}

func (m *Mem) Read32(off uint32) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[off], nil
}

func (m *Mem) Write32(off uint32, val uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.regs == nil {
		m.regs = make(map[uint32]uint32)
	}
	m.regs[off] = val
	return nil
}

// Seed stores val at off without going through Write32. Used by tests to
// model stale hardware state left over from a previous boot stage.
func (m *Mem) Seed(off uint32, val uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.regs == nil {
		m.regs = make(map[uint32]uint32)
	}
	m.regs[off] = val
}

var _ Interface = (*Mem)(nil)
