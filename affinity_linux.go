//go:build linux

package taskfarm

import (
	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling OS thread to one CPU.
// The goroutine must already be locked to its thread.
func PinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}
