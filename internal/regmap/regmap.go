// Package regmap provides 32-bit register file access capabilities.
//
// The driver core never maps hardware itself. It is handed Interface values
// for each register group it programs (the per-channel countdown file, the
// shared enable group, the per-channel control registers) by whoever did the
// discovery. This is the seam that keeps the core testable without hardware.
package regmap

import "fmt"

// Interface is a 32-bit register file addressed by byte offset.
type Interface interface {
	Read32(off uint32) (uint32, error)
	Write32(off uint32, val uint32) error
}

// Func adapts plain functions to Interface.
type Func struct {
	ReadFunc  func(off uint32) (uint32, error)
	WriteFunc func(off uint32, val uint32) error
}

func (f Func) Read32(off uint32) (uint32, error) {
	if f.ReadFunc != nil {
		return f.ReadFunc(off)
	}
	return 0, fmt.Errorf("regmap: unhandled read from offset %#x", off)
}

func (f Func) Write32(off uint32, val uint32) error {
	if f.WriteFunc != nil {
		return f.WriteFunc(off, val)
	}
	return fmt.Errorf("regmap: unhandled write to offset %#x", off)
}

// UpdateBits clears then sets the masked bits of the register at off,
// leaving bits outside mask untouched.
func UpdateBits(rm Interface, off, mask, bits uint32) error {
	val, err := rm.Read32(off)
	if err != nil {
		return err
	}
	return rm.Write32(off, (val&^mask)|(bits&mask))
}

// SetBits sets the masked bits of the register at off.
func SetBits(rm Interface, off, mask uint32) error {
	return UpdateBits(rm, off, mask, mask)
}

// ClearBits clears the masked bits of the register at off.
func ClearBits(rm Interface, off, mask uint32) error {
	return UpdateBits(rm, off, mask, 0)
}

type window struct {
	inner Interface
	base  uint32
}

func (w window) Read32(off uint32) (uint32, error)    { return w.inner.Read32(w.base + off) }
func (w window) Write32(off uint32, val uint32) error { return w.inner.Write32(w.base+off, val) }

// Window returns a view of rm shifted by base, so that offset 0 of the view
// addresses offset base of the underlying file. Used to hand out a single
// register (or a register block) as its own capability.
func Window(rm Interface, base uint32) Interface {
	return window{inner: rm, base: base}
}

var (
	_ Interface = Func{}
	_ Interface = window{}
)
