package prometheus

import (
	"testing"
	"time"

	"github.com/Andrej220/go-utils/taskfarm"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("taskfarm", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.IncDelegated()
	exporter.IncDelegated()
	exporter.IncDispatched(1)
	exporter.ObserveExecuted(1, 250*time.Microsecond)
	exporter.IncFaulted(0)
	exporter.SetQueued(7)

	if got := testutil.ToFloat64(exporter.delegatedTotal); got != 2 {
		t.Fatalf("delegated total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(exporter.dispatchedTotal.WithLabelValues("1")); got != 1 {
		t.Fatalf("dispatched total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.faultedTotal.WithLabelValues("0")); got != 1 {
		t.Fatalf("faulted total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.queueDepth); got != 7 {
		t.Fatalf("queue depth = %v, want 7", got)
	}
	if got := testutil.CollectAndCount(exporter.executionDurationSec); got != 1 {
		t.Fatalf("duration series = %d, want 1", got)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("taskfarm", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("taskfarm", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.IncFaulted(3)
	second.IncFaulted(3)

	if got := testutil.ToFloat64(first.faultedTotal.WithLabelValues("3")); got != 2 {
		t.Fatalf("shared faulted counter = %v, want 2", got)
	}
}

func TestMetricsExporter_NilSafe(t *testing.T) {
	var m *MetricsExporter
	m.IncDelegated()
	m.IncDispatched(0)
	m.ObserveExecuted(0, time.Millisecond)
	m.IncFaulted(0)
	m.SetQueued(1)
}

func TestMetricsExporter_FarmIntegration(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	region, err := taskfarm.NewRegion(1, 8)
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}
	opts := taskfarm.Options{Metrics: exporter}
	d := taskfarm.NewDispatcher[uint8](region, opts)
	w, err := taskfarm.NewWorkerAgent[uint8](region.Binding(0), opts)
	if err != nil {
		t.Fatalf("NewWorkerAgent: %v", err)
	}

	done := 0
	if err := d.AddTaskType(1, 1, func([]byte, *taskfarm.Dispatcher[uint8]) { done++ }); err != nil {
		t.Fatal(err)
	}
	if err := w.AddTaskType(1, func([]byte) {}); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		if err := d.Delegate(1, nil); err != nil {
			t.Fatal(err)
		}
	}
	d.Tick()
	if got := testutil.ToFloat64(exporter.queueDepth); got != 1 {
		t.Fatalf("queue depth after first tick = %v, want 1", got)
	}
	w.Tick()
	d.Tick()
	w.Tick()
	d.Tick()

	if done != 2 {
		t.Fatalf("completions = %d, want 2", done)
	}
	if got := testutil.ToFloat64(exporter.dispatchedTotal.WithLabelValues("0")); got != 2 {
		t.Fatalf("dispatched = %v, want 2", got)
	}
	if got := testutil.ToFloat64(exporter.queueDepth); got != 0 {
		t.Fatalf("queue depth = %v, want 0", got)
	}
}
