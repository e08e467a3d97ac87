//go:build !linux

// File: internal/concurrency/pin_other.go
// Author: momentics <momentics@gmail.com>

package concurrency

import "fmt"

func pinCurrentThread(cpuID int) error {
	return fmt.Errorf("%w: %w", ErrPinFailed, ErrAffinityNotSupported)
}
