package usecase

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func tracedContext(t *testing.T) context.Context {
	t.Helper()
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	return trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
}

func TestStartUsecaseSpan_UntracedCallerGetsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	got, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete", attribute.String("match.id", "m1"))
	if got != ctx {
		t.Fatalf("expected context to be returned unchanged")
	}
	if span != usecaseNoopSpan {
		t.Fatalf("expected noop span for untraced caller")
	}
}

func TestStartUsecaseSpan_BlankNameNeverEndsParent(t *testing.T) {
	t.Parallel()

	ctx := tracedContext(t)
	got, span := startUsecaseSpan(ctx, "  ")
	if got != ctx || span != usecaseNoopSpan {
		t.Fatalf("expected noop span for blank name under a traced parent")
	}

	_, child := startUsecaseSpan(ctx, "usecase.StandingService.List")
	if child.SpanContext().TraceID() != trace.SpanContextFromContext(ctx).TraceID() {
		t.Fatalf("expected child span on the caller's trace")
	}
}
