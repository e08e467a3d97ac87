// File: internal/session/handler.go
// Package session
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Connection handler: reading -> writing state machine.

package session

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/internal/lineio"
	"github.com/momentics/hioload-seq/internal/logger"
	"github.com/momentics/hioload-seq/protocol"
)

// Mode is the handler protocol state.
type Mode int32

const (
	ModeReading Mode = iota
	ModeWriting
)

func (m Mode) String() string {
	switch m {
	case ModeReading:
		return "reading"
	case ModeWriting:
		return "writing"
	default:
		return "unknown"
	}
}

// Options tunes handler behavior.
type Options struct {
	MaxLineLength     int           // read_line bound
	ReadBufferSize    int           // refill buffer size
	WriteInterval     time.Duration // minimum gap between output lines, 0 = every pass
	WriteStallTimeout time.Duration // drop a client that accepts no bytes for this long, 0 = never
}

// DefaultWriteStallTimeout is how long a client may leave output unread.
const DefaultWriteStallTimeout = 30 * time.Second

// DefaultOptions returns the reference protocol settings.
func DefaultOptions() Options {
	return Options{
		MaxLineLength:     protocol.MaxLineLength,
		ReadBufferSize:    lineio.DefaultBufferSize,
		WriteStallTimeout: DefaultWriteStallTimeout,
	}
}

var (
	msgMalformed     = []byte(protocol.MsgMalformed)
	msgNothingToShow = []byte(protocol.MsgNothingToShow)
)

// Metrics receives handler events. Implementations must be safe for
// concurrent use; a nil Metrics disables recording.
type Metrics interface {
	CommandAccepted(kind protocol.CommandKind)
	CommandRejected()
	LineWritten(bytes int)
}

// Handler is the api.Handler for one client connection.
//
// Ownership: whoever holds the handler (the work queue or exactly one
// worker) may call Advance; it is never shared, so its fields need no lock.
// mode and lines are atomics only so that Info can be read concurrently.
type Handler struct {
	id        uuid.UUID
	remote    string
	conn      api.Conn
	reader    *lineio.Reader
	opts      Options
	seqs      [protocol.NumSlots]Sequence
	values    [protocol.NumSlots]uint64
	out       []byte
	nextWrite time.Time

	// Output not yet accepted by the socket. While non-empty, Advance only
	// retries the write; onSent is reported once the last byte is out.
	pending      []byte
	pendingLine  bool
	onSent       api.Status
	stalledSince time.Time
	accepted  time.Time

	mode   atomic.Int32
	lines  atomic.Uint64
	closed atomic.Bool

	metrics  Metrics
	registry *Registry
	release  func()
	log      *slog.Logger
}

var _ api.Handler = (*Handler)(nil)

// New allocates a detached handler. Call Attach before scheduling it.
func New(opts Options, metrics Metrics, registry *Registry) *Handler {
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = protocol.MaxLineLength
	}
	h := &Handler{
		reader:   lineio.NewReader(nil, opts.ReadBufferSize),
		opts:     opts,
		out:      make([]byte, 0, protocol.NumSlots*protocol.FieldWidth+1),
		metrics:  metrics,
		registry: registry,
	}
	h.closed.Store(true)
	return h
}

// Attach binds conn to the handler and resets all protocol state. release,
// if non-nil, runs once after the connection is closed; pooled handlers use
// it to return themselves to their pool.
func (h *Handler) Attach(conn api.Conn, release func()) {
	h.id = uuid.New()
	h.conn = conn
	h.remote = conn.RemoteAddr().String()
	h.reader.Reset(conn)
	h.seqs = [protocol.NumSlots]Sequence{}
	h.nextWrite = time.Time{}
	h.pending = nil
	h.stalledSince = time.Time{}
	h.accepted = time.Now()
	h.mode.Store(int32(ModeReading))
	h.lines.Store(0)
	h.release = release
	h.log = logger.With(logger.KeyConnID, h.id.String(), logger.KeyRemote, h.remote)
	h.closed.Store(false)
	if h.registry != nil {
		h.registry.Add(h)
	}
}

// ID returns the connection id assigned by the last Attach.
func (h *Handler) ID() string {
	return h.id.String()
}

// Mode returns the current protocol state.
func (h *Handler) Mode() Mode {
	return Mode(h.mode.Load())
}

// Sequences returns a copy of the slot configuration.
func (h *Handler) Sequences() [protocol.NumSlots]Sequence {
	return h.seqs
}

// Advance performs one unit of protocol work: a single read-line attempt
// in reading mode, or a single output line in writing mode. Output the
// socket could not take yet is retried first; Advance never waits on it.
func (h *Handler) Advance() api.Status {
	if h.closed.Load() {
		return api.StatusDisconnected
	}
	if len(h.pending) > 0 {
		return h.flush()
	}
	switch h.Mode() {
	case ModeReading:
		return h.advanceReading()
	case ModeWriting:
		return h.advanceWriting()
	default:
		return api.StatusFatal
	}
}

func (h *Handler) advanceReading() api.Status {
	line, err := h.reader.ReadLine(h.opts.MaxLineLength)
	switch {
	case errors.Is(err, api.ErrWouldBlock):
		return api.StatusTryAgain
	case errors.Is(err, io.EOF):
		h.log.Debug("Client closed connection")
		return api.StatusDisconnected
	case err != nil:
		h.log.Debug("Read failed", logger.KeyError, err)
		return api.StatusDisconnected
	}

	cmd, err := protocol.Parse(line)
	if err != nil {
		var pe *protocol.ParseError
		if errors.As(err, &pe) {
			h.log.Debug("Rejected command", logger.KeyReason, pe.Reason, logger.KeyLine, string(pe.Line))
		}
		if h.metrics != nil {
			h.metrics.CommandRejected()
		}
		return h.send(msgMalformed, api.StatusTryAgain, false)
	}

	if h.metrics != nil {
		h.metrics.CommandAccepted(cmd.Kind)
	}
	switch cmd.Kind {
	case protocol.CommandConfigure:
		h.seqs[cmd.Slot].Configure(cmd.Init, cmd.Step)
	case protocol.CommandExport:
		h.mode.Store(int32(ModeWriting))
		h.log.Debug("Switching to writing mode")
	}
	return api.StatusOK
}

func (h *Handler) advanceWriting() api.Status {
	values := h.values[:0]
	for i := range h.seqs {
		if h.seqs[i].Active {
			values = append(values, h.seqs[i].Current)
		}
	}
	if len(values) == 0 {
		h.log.Debug("No active sequences, abandoning client")
		return h.send(msgNothingToShow, api.StatusFatal, false)
	}

	if h.opts.WriteInterval > 0 {
		now := time.Now()
		if now.Before(h.nextWrite) {
			return api.StatusTryAgain
		}
		h.nextWrite = now.Add(h.opts.WriteInterval)
	}

	// The line captures the current values, so the slots can step now.
	h.out = protocol.AppendValues(h.out[:0], values...)
	for i := range h.seqs {
		h.seqs[i].Advance()
	}
	return h.send(h.out, api.StatusOK, true)
}

// send queues p and makes the first write attempt. p must stay unmodified
// until it is fully written.
func (h *Handler) send(p []byte, done api.Status, line bool) api.Status {
	h.pending = p
	h.pendingLine = line
	h.onSent = done
	h.stalledSince = time.Time{}
	return h.flush()
}

// flush makes a single write attempt for the pending output.
func (h *Handler) flush() api.Status {
	n, err := h.conn.Write(h.pending)
	h.pending = h.pending[n:]
	if err != nil && !errors.Is(err, api.ErrWouldBlock) {
		h.log.Debug("Write failed", logger.KeyError, err)
		h.pending = nil
		return api.StatusDisconnected
	}

	if len(h.pending) > 0 {
		switch {
		case n > 0 || h.stalledSince.IsZero():
			h.stalledSince = time.Now()
		case h.opts.WriteStallTimeout > 0 && time.Since(h.stalledSince) > h.opts.WriteStallTimeout:
			h.log.Debug("Client stopped reading, dropping it", "stalled", time.Since(h.stalledSince))
			h.pending = nil
			return api.StatusDisconnected
		}
		return api.StatusTryAgain
	}

	if h.pendingLine {
		h.lines.Add(1)
		if h.metrics != nil {
			h.metrics.LineWritten(len(h.out))
		}
	}
	return h.onSent
}

// Close releases the connection. Only the first call has any effect.
func (h *Handler) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	if h.registry != nil {
		h.registry.Remove(h.ID())
	}
	err := h.conn.Close()
	h.log.Debug("Client disconnected, resources released",
		"lines_written", h.lines.Load(), "duration", time.Since(h.accepted))
	h.conn = nil
	h.pending = nil
	h.reader.Reset(nil)
	if release := h.release; release != nil {
		h.release = nil
		release()
	}
	return err
}

// Info is a race-free snapshot for diagnostics.
type Info struct {
	ID           string    `json:"id"`
	Remote       string    `json:"remote"`
	Mode         string    `json:"mode"`
	LinesWritten uint64    `json:"lines_written"`
	ConnectedAt  time.Time `json:"connected_at"`
}

func (h *Handler) info() Info {
	return Info{
		ID:           h.id.String(),
		Remote:       h.remote,
		Mode:         h.Mode().String(),
		LinesWritten: h.lines.Load(),
		ConnectedAt:  h.accepted,
	}
}
