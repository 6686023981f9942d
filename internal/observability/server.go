// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Loginform Contributors

// Package observability provides HTTP endpoints for metrics and health
// checks, plus the Prometheus counters the auth flow records into.
package observability

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
)

// ReadinessChecker returns whether the service is ready.
type ReadinessChecker func() bool

// Metrics holds the auth flow counters. It satisfies auth.MetricsRecorder.
type Metrics struct {
	logins          *prometheus.CounterVec
	accountsCreated prometheus.Counter
	rehashUpgrades  prometheus.Counter
}

// NewMetrics creates and registers the auth counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loginform_logins_total",
				Help: "Total number of login attempts by outcome",
			},
			[]string{"status"},
		),
		accountsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "loginform_accounts_created_total",
				Help: "Total number of accounts created",
			},
		),
		rehashUpgrades: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "loginform_rehash_upgrades_total",
				Help: "Total number of stored hashes upgraded opportunistically",
			},
		),
	}

	reg.MustRegister(m.logins)
	reg.MustRegister(m.accountsCreated)
	reg.MustRegister(m.rehashUpgrades)

	return m
}

// RecordLogin counts a login attempt by outcome status.
func (m *Metrics) RecordLogin(status string) {
	m.logins.WithLabelValues(status).Inc()
}

// RecordAccountCreated counts a successful account creation.
func (m *Metrics) RecordAccountCreated() {
	m.accountsCreated.Inc()
}

// RecordRehashUpgrade counts an opportunistic hash upgrade.
func (m *Metrics) RecordRehashUpgrade() {
	m.rehashUpgrades.Inc()
}

// AddRehashUpgrades counts a batch of upgrades from a maintenance run.
func (m *Metrics) AddRehashUpgrades(count int) {
	m.rehashUpgrades.Add(float64(count))
}

// Server provides HTTP endpoints for observability (metrics and health
// probes). It is optional: library embedders usually expose their own.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	registry   *prometheus.Registry
	metrics    *Metrics
	isReady    ReadinessChecker
	running    atomic.Bool
}

// NewServer creates a new observability server.
// addr: listen address in "host:port" format (":9100" for all interfaces).
func NewServer(addr string, readinessChecker ReadinessChecker) *Server {
	// Private registry to avoid polluting the embedder's global one
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Server{
		addr:     addr,
		registry: registry,
		metrics:  NewMetrics(registry),
		isReady:  readinessChecker,
	}
}

// Metrics returns the auth counters for wiring into a flow.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start begins serving observability endpoints. It returns an error
// channel that receives any serve error; the channel is closed when the
// server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/healthz/liveness", s.handleLiveness)
	mux.HandleFunc("/healthz/readiness", s.handleReadiness)

	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("observability server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	slog.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the observability server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown observability server").Wrap(err)
		}
	}

	slog.Info("observability server stopped")
	return nil
}

// Addr returns the listen address, or empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // health check write error is acceptable
	w.Write([]byte("ok\n"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if s.isReady == nil || s.isReady() {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // health check write error is acceptable
		w.Write([]byte("ok\n"))
		return
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	//nolint:errcheck // health check write error is acceptable
	w.Write([]byte("not ready\n"))
}
