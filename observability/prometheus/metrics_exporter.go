package prometheus

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Andrej220/go-utils/taskfarm"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts taskfarm.MetricsPolicy to Prometheus collectors.
type MetricsExporter struct {
	delegatedTotal       prom.Counter
	dispatchedTotal      *prom.CounterVec
	executionDurationSec *prom.HistogramVec
	faultedTotal         *prom.CounterVec
	queueDepth           prom.Gauge
}

var _ taskfarm.MetricsPolicy = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for a farm.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "taskfarm"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.ExponentialBuckets(0.00001, 4, 10)
	}

	var delegated prom.Counter = prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_delegated_total",
		Help:      "Total number of tasks accepted into the queue.",
	})
	dispatchedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_dispatched_total",
		Help:      "Total number of tasks copied into a worker slot.",
	}, []string{"worker"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_execution_seconds",
		Help:      "Executor run time in seconds.",
		Buckets:   buckets,
	}, []string{"worker"})
	faultedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_faulted_total",
		Help:      "Total number of executor panics.",
	}, []string{"worker"})
	var depth prom.Gauge = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of tasks waiting for a slot.",
	})

	var err error
	if delegated, err = registerCollector(reg, delegated); err != nil {
		return nil, err
	}
	if dispatchedVec, err = registerCollector(reg, dispatchedVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if faultedVec, err = registerCollector(reg, faultedVec); err != nil {
		return nil, err
	}
	if depth, err = registerCollector(reg, depth); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		delegatedTotal:       delegated,
		dispatchedTotal:      dispatchedVec,
		executionDurationSec: durationVec,
		faultedTotal:         faultedVec,
		queueDepth:           depth,
	}, nil
}

// IncDelegated records a delegated task.
func (m *MetricsExporter) IncDelegated() {
	if m == nil {
		return
	}
	m.delegatedTotal.Inc()
}

// IncDispatched records a task assigned to worker.
func (m *MetricsExporter) IncDispatched(worker int) {
	if m == nil {
		return
	}
	m.dispatchedTotal.WithLabelValues(workerLabel(worker)).Inc()
}

// ObserveExecuted records an executor run on worker.
func (m *MetricsExporter) ObserveExecuted(worker int, d time.Duration) {
	if m == nil {
		return
	}
	m.executionDurationSec.WithLabelValues(workerLabel(worker)).Observe(d.Seconds())
}

// IncFaulted records an executor panic on worker.
func (m *MetricsExporter) IncFaulted(worker int) {
	if m == nil {
		return
	}
	m.faultedTotal.WithLabelValues(workerLabel(worker)).Inc()
}

// SetQueued records the queue depth.
func (m *MetricsExporter) SetQueued(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func workerLabel(worker int) string {
	if worker < 0 {
		return "unknown"
	}
	return strconv.Itoa(worker)
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
