// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TCP transport for the sequence server. Accepted sockets are exposed as
// non-blocking api.Conn values: Read and Write never park the calling
// worker and report api.ErrWouldBlock instead. On unix the raw descriptor
// is driven with read(2)/write(2) through syscall.RawConn; other platforms
// fall back to near-zero deadlines.

package transport
