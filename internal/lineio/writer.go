// File: internal/lineio/writer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package lineio

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/momentics/hioload-seq/api"
)

// ErrWriteStalled reports that the peer accepted no bytes for longer than
// the configured stall interval.
var ErrWriteStalled = errors.New("write stalled")

// WriteAll writes p in full, retrying would-block results in place after
// yielding the processor. It suits short one-off messages only; stall bounds
// how long no progress is tolerated, zero means retry forever. Only a hard
// failure (e.g. broken pipe) is reported.
func WriteAll(conn api.Conn, p []byte, stall time.Duration) error {
	var blockedSince time.Time
	for len(p) > 0 {
		n, err := conn.Write(p)
		p = p[n:]
		if n > 0 {
			blockedSince = time.Time{}
		}
		switch {
		case err == nil:
			if n == 0 {
				runtime.Gosched()
			}
		case errors.Is(err, api.ErrWouldBlock):
			if stall > 0 {
				now := time.Now()
				if blockedSince.IsZero() {
					blockedSince = now
				} else if now.Sub(blockedSince) > stall {
					return fmt.Errorf("%w after %v", ErrWriteStalled, stall)
				}
			}
			runtime.Gosched()
		default:
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

// WriteString is WriteAll for string payloads.
func WriteString(conn api.Conn, s string, stall time.Duration) error {
	return WriteAll(conn, []byte(s), stall)
}
