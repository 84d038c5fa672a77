package watch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentline/agentline/pkg/prepare"
)

// Metrics holds the Prometheus metrics of a watch runner. Each runner owns its
// own registry so parallel runners in tests never collide.
type Metrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	snapshotReloads    *prometheus.CounterVec

	registry *prometheus.Registry
	server   *http.Server
}

// NewMetrics creates and registers the watch-mode metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentline_evaluations_total",
				Help: "Total number of preparation evaluations by outcome",
			},
			[]string{"outcome"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "agentline_evaluation_duration_seconds",
				Help:    "Preparation evaluation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		snapshotReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentline_snapshot_reloads_total",
				Help: "Total number of snapshot reload attempts by status",
			},
			[]string{"status"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.snapshotReloads,
	)

	return m
}

// RecordEvaluation records one engine pass.
func (m *Metrics) RecordEvaluation(outcome prepare.Outcome, duration time.Duration) {
	m.evaluationsTotal.WithLabelValues(string(outcome)).Inc()
	m.evaluationDuration.Observe(duration.Seconds())
}

// RecordReload records one snapshot reload attempt.
func (m *Metrics) RecordReload(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.snapshotReloads.WithLabelValues(status).Inc()
}

// Handler returns an HTTP handler exposing the registry in Prometheus format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves the metrics endpoint on addr until StopServer is called.
// Listen errors surface on the returned channel.
func (m *Metrics) StartServer(addr string) <-chan error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	m.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server error: %w", err)
		}
	}()
	return errCh
}

// StopServer shuts the metrics endpoint down gracefully.
func (m *Metrics) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
