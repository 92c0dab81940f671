//go:build linux

package tcu

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// currentCPU returns the processor the caller is running on, for endpoint
// affinity at registration time. getcpu has no wrapper in x/sys/unix, so it
// goes through the raw syscall; the node and cache arguments are unused.
func currentCPU() int {
	var cpu uint32
	_, _, errno := unix.RawSyscall(unix.SYS_GETCPU,
		uintptr(unsafe.Pointer(&cpu)), 0, 0)
	if errno != 0 {
		return 0
	}
	return int(cpu)
}
