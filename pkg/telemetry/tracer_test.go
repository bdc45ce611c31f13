package telemetry

import (
	"context"
	"testing"
)

func TestDisabledTracerStillProducesSpans(t *testing.T) {
	tracer, err := NewTracer(TracingConfig{Enabled: false}, "gitfleet", "test")
	if err != nil {
		t.Fatalf("NewTracer failed: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.Tracer().Start(context.Background(), "test-span")
	span.End()
}

func TestUnsupportedExporterIsRejected(t *testing.T) {
	_, err := NewTracer(TracingConfig{Enabled: true, Exporter: "carrier-pigeon"}, "gitfleet", "test")
	if err == nil {
		t.Error("expected unsupported exporter to fail")
	}
}

func TestStdoutExporter(t *testing.T) {
	tracer, err := NewTracer(TracingConfig{Enabled: true, Exporter: "stdout", SamplingRate: 1.0}, "gitfleet", "test")
	if err != nil {
		t.Fatalf("NewTracer failed: %v", err)
	}
	defer tracer.Shutdown(context.Background())
}
