package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentline/agentline/pkg/prepare"
)

// RecordDecision annotates the provided span with the preparation decision.
func RecordDecision(span trace.Span, decision prepare.Decision) {
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(
		attribute.String("prepare.decision.outcome", string(decision.Outcome)),
		attribute.String("prepare.decision.severity", string(decision.Severity)),
	)

	if decision.Reason != "" {
		span.SetAttributes(attribute.String("prepare.decision.reason", decision.Reason))
	}
	if decision.PropertyKey != "" {
		span.SetAttributes(attribute.String("prepare.property.key", decision.PropertyKey))
	}
	if decision.Agent != nil {
		span.SetAttributes(
			attribute.String("prepare.agent.group_id", decision.Agent.GroupID),
			attribute.String("prepare.agent.artifact_id", decision.Agent.ArtifactID),
			attribute.String("prepare.agent.version", decision.Agent.Version),
		)
	}

	if decision.Outcome == prepare.OutcomeFailed {
		span.AddEvent("prepare.failed")
	}
}
