// control/admin.go
// Author: momentics <momentics@gmail.com>
//
// Admin HTTP endpoint: Prometheus scrape target and debug state dump.

package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/momentics/hioload-seq/internal/logger"
)

// AdminServer serves /metrics, /debug/state and /healthz.
type AdminServer struct {
	srv *http.Server
	ln  net.Listener
}

// NewAdminServer builds the admin mux. probes may be nil.
func NewAdminServer(addr string, gatherer prometheus.Gatherer, probes *DebugProbes) *AdminServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if probes != nil {
		mux.Handle("/debug/state", probes)
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return &AdminServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background.
func (a *AdminServer) Start() error {
	ln, err := net.Listen("tcp", a.srv.Addr)
	if err != nil {
		return fmt.Errorf("admin listen %s: %w", a.srv.Addr, err)
	}
	a.ln = ln
	logger.Info("Admin endpoint listening", logger.KeyAddr, ln.Addr().String())
	go func() {
		if err := a.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Admin endpoint failed", logger.KeyError, err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (a *AdminServer) Addr() net.Addr {
	if a.ln == nil {
		return nil
	}
	return a.ln.Addr()
}

// Shutdown stops the endpoint.
func (a *AdminServer) Shutdown(ctx context.Context) error {
	return a.srv.Shutdown(ctx)
}
