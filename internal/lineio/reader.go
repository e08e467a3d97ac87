// File: internal/lineio/reader.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package lineio

import (
	"errors"
	"fmt"
	"io"

	"github.com/momentics/hioload-seq/api"
)

// DefaultBufferSize is the refill buffer size used when none is given.
const DefaultBufferSize = 8192

// Reader buffers a non-blocking connection.
//
// The buffer is refilled from the connection only once fully consumed. Bytes
// of an incomplete line survive an api.ErrWouldBlock result, so a retry
// resumes exactly where the previous attempt stopped.
type Reader struct {
	conn api.Conn
	buf  []byte
	n    int // unread bytes in buf
	pos  int // next unread byte
	line []byte
}

// NewReader wraps conn with a refill buffer of size bytes.
func NewReader(conn api.Conn, size int) *Reader {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Reader{conn: conn, buf: make([]byte, size)}
}

// Reset discards buffered state and rebinds the reader to conn, keeping
// the allocated buffers.
func (r *Reader) Reset(conn api.Conn) {
	r.conn = conn
	r.n, r.pos = 0, 0
	r.line = r.line[:0]
}

// Buffered returns the number of unread bytes held in the refill buffer.
func (r *Reader) Buffered() int {
	return r.n
}

// ReadLine collects bytes up to and including '\n', or until limit bytes have
// been collected. It returns:
//
//   - the line and a nil error;
//   - api.ErrWouldBlock when no complete line is available yet;
//   - io.EOF when the peer closed and nothing was collected;
//   - any other error for an unrecoverable transport failure.
//
// A stream that ends after some bytes yields those bytes as a line.
// The returned slice is only valid until the next call.
func (r *Reader) ReadLine(limit int) ([]byte, error) {
	for len(r.line) < limit {
		c, err := r.readByte()
		if errors.Is(err, io.EOF) {
			if len(r.line) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, err
		}
		r.line = append(r.line, c)
		if c == '\n' {
			break
		}
	}
	line := r.line
	r.line = r.line[:0]
	return line, nil
}

func (r *Reader) readByte() (byte, error) {
	if r.n <= 0 {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	c := r.buf[r.pos]
	r.pos++
	r.n--
	return c, nil
}

// fill performs exactly one read into the emptied buffer.
func (r *Reader) fill() error {
	n, err := r.conn.Read(r.buf)
	if n > 0 {
		r.n, r.pos = n, 0
		return nil
	}
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return io.EOF
	case errors.Is(err, api.ErrWouldBlock):
		return api.ErrWouldBlock
	default:
		return fmt.Errorf("read: %w", err)
	}
}
