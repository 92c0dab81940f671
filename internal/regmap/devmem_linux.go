//go:build linux

package regmap

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DevMem is an Interface over a physical register window mapped through a
// memory device such as /dev/mem. All access is 32-bit and offset-aligned;
// the compiler cannot reorder the loads/stores because they go through
// unsafe pointers into shared memory.
type DevMem struct {
	mem []byte
}

// OpenDevMem maps size bytes of physical address space starting at base.
// base and size must be page aligned for the mapping to succeed.
func OpenDevMem(path string, base int64, size int) (*DevMem, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("regmap: open %s: %w", path, err)
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), base, size,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("regmap: mmap %#x+%#x: %w", base, size, err)
	}
	return &DevMem{mem: mem}, nil
}

func (d *DevMem) checkOffset(off uint32) error {
	if off%4 != 0 {
		return fmt.Errorf("regmap: unaligned register offset %#x", off)
	}
	if int(off)+4 > len(d.mem) {
		return fmt.Errorf("regmap: register offset %#x outside %#x byte window", off, len(d.mem))
	}
	return nil
}

func (d *DevMem) Read32(off uint32) (uint32, error) {
	if err := d.checkOffset(off); err != nil {
		return 0, err
	}
	return *(*uint32)(unsafe.Pointer(&d.mem[off])), nil
}

func (d *DevMem) Write32(off uint32, val uint32) error {
	if err := d.checkOffset(off); err != nil {
		return err
	}
	*(*uint32)(unsafe.Pointer(&d.mem[off])) = val
	return nil
}

// Close unmaps the register window. The DevMem must not be used afterwards.
func (d *DevMem) Close() error {
	mem := d.mem
	d.mem = nil
	return unix.Munmap(mem)
}

var _ Interface = (*DevMem)(nil)
