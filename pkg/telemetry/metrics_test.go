package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordOutcomes(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, Namespace: "gitfleet"})

	m.RunStarted()
	m.StepsPlanned(6)
	m.CloneRecorded("succeeded")
	m.CloneRecorded("failed")
	m.ActionRecorded("action", "succeeded")
	m.ActionRecorded("finalization action", "failed")
	m.RunCompleted("partial", 2*time.Second)

	if got := testutil.ToFloat64(m.runsStarted); got != 1 {
		t.Errorf("expected 1 run started, got %v", got)
	}
	if got := testutil.ToFloat64(m.runSteps); got != 6 {
		t.Errorf("expected 6 planned steps, got %v", got)
	}
	if got := testutil.ToFloat64(m.clonesTotal.WithLabelValues("failed")); got != 1 {
		t.Errorf("expected 1 failed clone, got %v", got)
	}
	if got := testutil.ToFloat64(m.actionsTotal.WithLabelValues("action", "succeeded")); got != 1 {
		t.Errorf("expected 1 succeeded action, got %v", got)
	}
	if got := testutil.ToFloat64(m.runsCompleted.WithLabelValues("partial")); got != 1 {
		t.Errorf("expected 1 partial run, got %v", got)
	}
}

func TestDisabledAndNilMetricsAreNoops(t *testing.T) {
	disabled := NewMetrics(MetricsConfig{Enabled: false})
	disabled.RunStarted()
	disabled.StepsPlanned(3)
	disabled.CloneRecorded("succeeded")
	disabled.RunCompleted("succeeded", time.Second)
	if disabled.Registry() != nil {
		t.Error("expected no registry when disabled")
	}

	var nilMetrics *Metrics
	nilMetrics.RunStarted()
	nilMetrics.ActionRecorded("action", "failed")
	nilMetrics.RunCompleted("failed", time.Second)
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	if m.Handler() == nil {
		t.Error("expected a handler for enabled metrics")
	}
	if NewMetrics(MetricsConfig{}).Handler() == nil {
		t.Error("expected a fallback handler for disabled metrics")
	}
}
