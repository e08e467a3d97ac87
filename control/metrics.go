// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus collectors for the sequence server.

package control

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-seq/api"
	"github.com/momentics/hioload-seq/protocol"
)

const namespace = "seqserver"

// Metrics provides Prometheus metrics for accept, scheduling and protocol
// events. All methods are nil-safe: calls on a nil *Metrics are no-ops.
type Metrics struct {
	// ConnectionsAccepted counts clients handed to the worker pool.
	ConnectionsAccepted prometheus.Counter

	// ConnectionsRejected counts clients turned away.
	// Label values: "server_full", "submit", "transport".
	ConnectionsRejected *prometheus.CounterVec

	// ConnectionsActive tracks clients currently owning a handler slot.
	ConnectionsActive prometheus.Gauge

	// AcceptErrors counts failed accept calls.
	AcceptErrors prometheus.Counter

	// AcceptBreakerState is 0 closed, 1 half-open, 2 open.
	AcceptBreakerState prometheus.Gauge

	// HandlerSteps counts Advance calls by resulting status.
	HandlerSteps *prometheus.CounterVec

	// HandlersDiscarded counts handlers closed by a worker, by status.
	HandlersDiscarded *prometheus.CounterVec

	// QueueSize samples the work queue length after each re-queue.
	QueueSize prometheus.Gauge

	// Commands counts parsed command lines.
	// Label values: "configure", "export", "malformed".
	Commands *prometheus.CounterVec

	// LinesWritten counts value lines streamed to clients.
	LinesWritten prometheus.Counter

	// BytesWritten counts value-line bytes streamed to clients.
	BytesWritten prometheus.Counter
}

// NewMetrics creates and registers metrics with reg. If reg is nil,
// metrics are created but not registered (useful for testing).
//
// On re-registration existing collectors from the registry are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "accepted_total",
			Help:      "Total number of accepted client connections",
		}),
		ConnectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "rejected_total",
			Help:      "Total number of rejected client connections",
		}, []string{"reason"}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "active",
			Help:      "Current number of connected clients",
		}),
		AcceptErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acceptor",
			Name:      "errors_total",
			Help:      "Total number of failed accept calls",
		}),
		AcceptBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "acceptor",
			Name:      "breaker_state",
			Help:      "Accept circuit breaker state (0 closed, 1 half-open, 2 open)",
		}),
		HandlerSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "handler_steps_total",
			Help:      "Total number of handler steps by status",
		}, []string{"status"}),
		HandlersDiscarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "handlers_discarded_total",
			Help:      "Total number of handlers closed after a terminal status",
		}, []string{"status"}),
		QueueSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "queue_depth",
			Help:      "Work queue length observed after the last re-queue",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "Total number of command lines by kind",
		}, []string{"kind"}),
		LinesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "lines_written_total",
			Help:      "Total number of value lines written",
		}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "bytes_written_total",
			Help:      "Total number of value-line bytes written",
		}),
	}

	if reg != nil {
		m.ConnectionsAccepted = registerOrReuse(reg, m.ConnectionsAccepted).(prometheus.Counter)
		m.ConnectionsRejected = registerOrReuse(reg, m.ConnectionsRejected).(*prometheus.CounterVec)
		m.ConnectionsActive = registerOrReuse(reg, m.ConnectionsActive).(prometheus.Gauge)
		m.AcceptErrors = registerOrReuse(reg, m.AcceptErrors).(prometheus.Counter)
		m.AcceptBreakerState = registerOrReuse(reg, m.AcceptBreakerState).(prometheus.Gauge)
		m.HandlerSteps = registerOrReuse(reg, m.HandlerSteps).(*prometheus.CounterVec)
		m.HandlersDiscarded = registerOrReuse(reg, m.HandlersDiscarded).(*prometheus.CounterVec)
		m.QueueSize = registerOrReuse(reg, m.QueueSize).(prometheus.Gauge)
		m.Commands = registerOrReuse(reg, m.Commands).(*prometheus.CounterVec)
		m.LinesWritten = registerOrReuse(reg, m.LinesWritten).(prometheus.Counter)
		m.BytesWritten = registerOrReuse(reg, m.BytesWritten).(prometheus.Counter)
	}

	return m
}

// ConnectionAccepted records a client handed to the pool.
func (m *Metrics) ConnectionAccepted() {
	if m == nil {
		return
	}
	m.ConnectionsAccepted.Inc()
	m.ConnectionsActive.Inc()
}

// ConnectionClosed records a client releasing its slot.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Dec()
}

// ConnectionRejected records a client turned away for reason.
func (m *Metrics) ConnectionRejected(reason string) {
	if m == nil {
		return
	}
	m.ConnectionsRejected.WithLabelValues(reason).Inc()
}

// AcceptFailed records a failed accept call.
func (m *Metrics) AcceptFailed() {
	if m == nil {
		return
	}
	m.AcceptErrors.Inc()
}

// BreakerStateChanged records the accept breaker state by name.
func (m *Metrics) BreakerStateChanged(state string) {
	if m == nil {
		return
	}
	switch state {
	case "closed":
		m.AcceptBreakerState.Set(0)
	case "half-open":
		m.AcceptBreakerState.Set(1)
	case "open":
		m.AcceptBreakerState.Set(2)
	}
}

// HandlerAdvanced records one handler step.
func (m *Metrics) HandlerAdvanced(status api.Status) {
	if m == nil {
		return
	}
	m.HandlerSteps.WithLabelValues(status.String()).Inc()
}

// HandlerDiscarded records a handler closed after a terminal status.
func (m *Metrics) HandlerDiscarded(status api.Status) {
	if m == nil {
		return
	}
	m.HandlersDiscarded.WithLabelValues(status.String()).Inc()
}

// QueueDepth samples the work queue length.
func (m *Metrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueSize.Set(float64(n))
}

// CommandAccepted records a valid command line.
func (m *Metrics) CommandAccepted(kind protocol.CommandKind) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(kind.String()).Inc()
}

// CommandRejected records a malformed command line.
func (m *Metrics) CommandRejected() {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues("malformed").Inc()
}

// LineWritten records one streamed value line of n bytes.
func (m *Metrics) LineWritten(n int) {
	if m == nil {
		return
	}
	m.LinesWritten.Inc()
	m.BytesWritten.Add(float64(n))
}
