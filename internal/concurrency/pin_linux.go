//go:build linux

// File: internal/concurrency/pin_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux CPU affinity via sched_setaffinity on the locked OS thread.

package concurrency

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinCurrentThread locks the calling goroutine to its OS thread and binds
// that thread to cpuID modulo the number of CPUs in the process mask.
func pinCurrentThread(cpuID int) error {
	runtime.LockOSThread()

	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return fmt.Errorf("%w: get affinity: %v", ErrPinFailed, err)
	}
	cpus := make([]int, 0, allowed.Count())
	for i := 0; i < len(allowed)*64; i++ {
		if allowed.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	if len(cpus) == 0 {
		return fmt.Errorf("%w: empty affinity mask", ErrPinFailed)
	}

	var mask unix.CPUSet
	mask.Set(cpus[cpuID%len(cpus)])
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return fmt.Errorf("%w: cpu %d: %v", ErrPinFailed, cpus[cpuID%len(cpus)], err)
	}
	return nil
}
