package taskfarm

import (
	"context"
	"runtime"
	"time"
)

const (
	// DefaultPayloadSize is the slot buffer size used when none is set.
	DefaultPayloadSize = 64

	defaultTickInterval = time.Millisecond
)

// Options configure a Farm, a Dispatcher or a WorkerAgent.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// Workers is the number of slots and worker goroutines.
	// Defaults to the host parallelism.
	Workers int

	// PayloadSize is the fixed buffer size shared by all task types.
	PayloadSize int

	// Wait bounds the worker-side wait for an assignment.
	Wait WaitPolicy

	// TickInterval is the dispatcher cadence used by Farm.Run.
	TickInterval time.Duration

	// PinWorkers locks each worker goroutine to an OS thread pinned to
	// one CPU. Linux only; ignored elsewhere.
	PinWorkers bool

	// ResetFaultedAfter enables the faulted-slot supervisor. When > 0,
	// a slot whose executor panicked is returned to Ready by the
	// dispatcher once it has been claimed for at least this long. The
	// task it held is dropped and reported through OnInternalError.
	// Zero keeps faulted slots wedged forever.
	ResetFaultedAfter time.Duration

	// Metrics receives farm activity. Defaults to NoopMetrics.
	Metrics MetricsPolicy

	// Context carries the logger and bounds Farm.Run.
	Context context.Context

	// OnTaskFault is called by a worker when its executor panics.
	OnTaskFault func(worker int, err error)

	// OnInternalError is called by the dispatcher for non-task failures.
	OnInternalError func(err error)
}

func (o *Options) FillDefaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.PayloadSize <= 0 {
		o.PayloadSize = DefaultPayloadSize
	}
	o.Wait.fillDefaults()
	if o.TickInterval <= 0 {
		o.TickInterval = defaultTickInterval
	}
	if o.Metrics == nil {
		o.Metrics = &NoopMetrics{}
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
}
