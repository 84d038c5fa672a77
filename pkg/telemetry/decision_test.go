package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/agentline/agentline/pkg/domain"
	"github.com/agentline/agentline/pkg/prepare"
)

func recordedSpan(t *testing.T, decision prepare.Decision) sdktrace.ReadOnlySpan {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider()
	tp.RegisterSpanProcessor(recorder)
	tracer := tp.Tracer("test")

	_, span := tracer.Start(context.Background(), "prepare.decide")
	RecordDecision(span, decision)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	return spans[0]
}

func TestRecordDecisionApplied(t *testing.T) {
	agent := domain.ResolvedArtifact{GroupID: "org.mockito", ArtifactID: "mockito-core", Version: "5.15.0", Path: "/repo/mockito.jar"}
	span := recordedSpan(t, prepare.Applied("argLine", `-javaagent:"/repo/mockito.jar" `, agent))

	attrs := attribute.NewSet(span.Attributes()...)
	if value, ok := attrs.Value(attribute.Key("prepare.decision.outcome")); !ok || value.AsString() != "applied" {
		t.Fatalf("expected outcome attribute applied, got %v", value)
	}
	if value, ok := attrs.Value(attribute.Key("prepare.property.key")); !ok || value.AsString() != "argLine" {
		t.Fatalf("expected property key attribute, got %v", value)
	}
	if value, ok := attrs.Value(attribute.Key("prepare.agent.version")); !ok || value.AsString() != "5.15.0" {
		t.Fatalf("expected agent version attribute, got %v", value)
	}
	if len(span.Events()) != 0 {
		t.Fatalf("applied decision should not emit events, got %d", len(span.Events()))
	}
}

func TestRecordDecisionFailedAddsEvent(t *testing.T) {
	span := recordedSpan(t, prepare.Failed(errors.New("agent artifact not found")))

	attrs := attribute.NewSet(span.Attributes()...)
	if value, ok := attrs.Value(attribute.Key("prepare.decision.outcome")); !ok || value.AsString() != "failed" {
		t.Fatalf("expected outcome attribute failed, got %v", value)
	}
	if value, ok := attrs.Value(attribute.Key("prepare.decision.reason")); !ok || value.AsString() != "agent artifact not found" {
		t.Fatalf("expected reason attribute, got %v", value)
	}

	events := span.Events()
	if len(events) != 1 || events[0].Name != "prepare.failed" {
		t.Fatalf("expected prepare.failed event, got %+v", events)
	}
}
