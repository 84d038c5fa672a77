// Package watch re-evaluates agent preparation whenever the build snapshot
// changes. It serves local dev loops and CI agents that regenerate the snapshot
// repeatedly and want the arg-line property kept current without re-invoking
// the CLI.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentline/agentline/pkg/prepare"
	"github.com/agentline/agentline/pkg/sink"
	"github.com/agentline/agentline/pkg/snapshot"
)

// RunnerConfig wires one runner.
type RunnerConfig struct {
	// Engine is the engine options used for every evaluation.
	Engine prepare.Config

	// MetricsAddr exposes /metrics when non-empty.
	MetricsAddr string
}

// Runner evaluates the preparation decision against the current snapshot and
// repeats the evaluation every time the snapshot reloads. A Failed decision is
// logged and counted but does not stop the runner; the build consuming the
// output decides fatality.
type Runner struct {
	config  RunnerConfig
	loader  *snapshot.Loader
	engine  *prepare.Engine
	sinks   []sink.Sink
	logger  *slog.Logger
	metrics *Metrics

	mu       sync.RWMutex
	last     prepare.Decision
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRunner creates a runner over the given snapshot loader. A nil logger falls
// back to slog.Default().
func NewRunner(cfg RunnerConfig, loader *snapshot.Loader, sinks []sink.Sink, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		config:  cfg,
		loader:  loader,
		engine:  prepare.New(logger),
		sinks:   sinks,
		logger:  logger,
		metrics: NewMetrics(),
		stopCh:  make(chan struct{}),
	}
}

// Metrics exposes the runner's metrics, mainly for the metrics endpoint and tests.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// LastDecision returns the most recent evaluation result.
func (r *Runner) LastDecision() prepare.Decision {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Start performs the initial evaluation, begins watching the snapshot file and
// blocks until ctx is cancelled or the metrics server fails. The initial load
// must succeed; later reload failures keep the previous snapshot.
func (r *Runner) Start(ctx context.Context) error {
	r.logger.Info("starting watch runner", "snapshot", r.loader.Path())

	snap, err := r.loader.Load()
	if err != nil {
		return fmt.Errorf("initial snapshot load: %w", err)
	}
	r.metrics.RecordReload(true)
	r.evaluate(ctx, snap)

	err = r.loader.Watch(
		func(snap *snapshot.Snapshot) {
			r.metrics.RecordReload(true)
			r.evaluate(ctx, snap)
		},
		func(error) {
			r.metrics.RecordReload(false)
		},
	)
	if err != nil {
		return fmt.Errorf("watch snapshot: %w", err)
	}

	var metricsErr <-chan error
	if r.config.MetricsAddr != "" {
		r.logger.Info("metrics endpoint listening", "addr", r.config.MetricsAddr)
		metricsErr = r.metrics.StartServer(r.config.MetricsAddr)
	}

	select {
	case err := <-metricsErr:
		r.Stop(context.Background())
		return err
	case <-r.stopCh:
		return nil
	case <-ctx.Done():
		return r.Stop(context.Background())
	}
}

// Stop stops the watcher and the metrics endpoint. Safe to call more than once.
func (r *Runner) Stop(ctx context.Context) error {
	var err error
	r.stopOnce.Do(func() {
		r.logger.Info("stopping watch runner")
		close(r.stopCh)

		if closeErr := r.loader.Close(); closeErr != nil {
			r.logger.Error("failed to close snapshot loader", "error", closeErr)
			err = closeErr
		}
		if stopErr := r.metrics.StopServer(ctx); stopErr != nil {
			r.logger.Error("failed to shut down metrics server", "error", stopErr)
			err = stopErr
		}
	})
	return err
}

// evaluate runs one engine pass and applies the sinks. Each pass carries its
// own run id so log lines from overlapping reloads stay distinguishable.
func (r *Runner) evaluate(ctx context.Context, snap *snapshot.Snapshot) {
	runID := uuid.NewString()
	logger := r.logger.With("run_id", runID)

	start := time.Now()
	decision := r.engine.Decide(ctx, snap.EngineInput(), r.config.Engine)
	r.metrics.RecordEvaluation(decision.Outcome, time.Since(start))

	r.mu.Lock()
	r.last = decision
	r.mu.Unlock()

	switch decision.Outcome {
	case prepare.OutcomeApplied:
		for _, s := range r.sinks {
			if err := s.Apply(decision.PropertyKey, decision.PropertyValue); err != nil {
				logger.Error("failed to apply decision", "property", decision.PropertyKey, "error", err)
			}
		}
		logger.Info("decision applied",
			"property", decision.PropertyKey,
			"agent", decision.Agent.String())
	case prepare.OutcomeSkipped:
		if decision.Severity == prepare.SeverityWarn {
			logger.Warn("decision skipped", "reason", decision.Reason)
		} else {
			logger.Info("decision skipped", "reason", decision.Reason)
		}
	case prepare.OutcomeFailed:
		logger.Error("decision failed", "reason", decision.Reason)
	}
}
