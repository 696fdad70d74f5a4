package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGetTracer_CreatesSpan(t *testing.T) {
	// Set up in-memory span exporter for testing. The package tracer is
	// obtained from the global provider at init, so it delegates to the
	// first real provider registered here.
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	otel.SetTracerProvider(tp)

	ctx, span := GetTracer().Start(context.Background(), "dispatch.run")
	span.SetAttributes(
		attribute.String("kind", "birthday"),
		attribute.String("slot", "today_7am"),
	)
	span.End()

	_ = tp.ForceFlush(ctx)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	recorded := spans[0]
	if recorded.Name != "dispatch.run" {
		t.Errorf("expected span name 'dispatch.run', got '%s'", recorded.Name)
	}

	foundKind := false
	foundSlot := false
	for _, attr := range recorded.Attributes {
		switch attr.Key {
		case "kind":
			foundKind = true
			if attr.Value.AsString() != "birthday" {
				t.Errorf("expected kind=birthday, got %s", attr.Value.AsString())
			}
		case "slot":
			foundSlot = true
			if attr.Value.AsString() != "today_7am" {
				t.Errorf("expected slot=today_7am, got %s", attr.Value.AsString())
			}
		}
	}

	if !foundKind {
		t.Error("kind attribute not found")
	}
	if !foundSlot {
		t.Error("slot attribute not found")
	}

	if recorded.InstrumentationLibrary.Name != "temple-notify" {
		t.Errorf("expected instrumentation scope 'temple-notify', got '%s'", recorded.InstrumentationLibrary.Name)
	}
}

func TestGetTracer_ReturnsSameInstance(t *testing.T) {
	if GetTracer() != GetTracer() {
		t.Error("GetTracer should return the same tracer instance")
	}
}
