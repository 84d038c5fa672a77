package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/agentline/agentline/pkg/prepare"
)

var (
	metricsOnce       sync.Once
	metricsInitErr    error
	decisionCounter   metric.Int64Counter
	decisionHistogram metric.Float64Histogram
)

// DecisionMetrics captures the fields needed to record one evaluation.
type DecisionMetrics struct {
	Outcome     prepare.Outcome
	Severity    prepare.Severity
	PropertyKey string
	Duration    time.Duration
}

// RecordDecisionMetrics emits the counter and latency histogram that describe
// evaluation behaviour.
func RecordDecisionMetrics(ctx context.Context, metrics DecisionMetrics) {
	if err := ensureMetrics(); err != nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("decision.outcome", string(metrics.Outcome)),
		attribute.String("decision.severity", string(metrics.Severity)),
	}
	if metrics.PropertyKey != "" {
		attrs = append(attrs, attribute.String("decision.property", metrics.PropertyKey))
	}

	decisionCounter.Add(ctx, 1, metric.WithAttributes(attrs...))

	if metrics.Duration > 0 {
		decisionHistogram.Record(ctx, float64(metrics.Duration)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	}
}

func ensureMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.GetMeterProvider().Meter("agentline.prepare")

		decisionCounter, metricsInitErr = meter.Int64Counter(
			"agentline.decisions_total",
			metric.WithDescription("Preparation decisions partitioned by outcome"),
			metric.WithUnit("{count}"),
		)
		if metricsInitErr != nil {
			return
		}

		decisionHistogram, metricsInitErr = meter.Float64Histogram(
			"agentline.decide.duration_ms",
			metric.WithDescription("Observed evaluation latency"),
			metric.WithUnit("ms"),
		)
	})
	return metricsInitErr
}
