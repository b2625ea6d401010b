//go:build !linux

package taskfarm

// PinToCPU is a no-op outside Linux.
func PinToCPU(int) error { return nil }
