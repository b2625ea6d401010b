package taskfarm

import (
	"sync/atomic"
	"time"
)

// MetricsPolicy defines hooks used by the farm to report queueing and
// execution activity.
//
// Implementations must be safe for concurrent use: the dispatcher and
// every worker call into the same value. All methods are expected to be
// lightweight and non-blocking.
type MetricsPolicy interface {
	// IncDelegated counts a task accepted by Delegate.
	IncDelegated()

	// IncDispatched counts a task copied into the given worker's slot.
	IncDispatched(worker int)

	// ObserveExecuted records one executor run on the given worker.
	ObserveExecuted(worker int, d time.Duration)

	// IncFaulted counts an executor panic on the given worker.
	IncFaulted(worker int)

	// SetQueued reports the current queue length.
	SetQueued(n int)
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	delegated  atomic.Uint64
	dispatched atomic.Uint64
	_          cachePad

	// executed is written by workers, separated from dispatcher counters.
	executed atomic.Uint64
	busy     atomic.Int64
	faulted  atomic.Uint64
	_        cachePad

	queued atomic.Int64
}

// Delegated returns the total number of delegated tasks.
func (m *AtomicMetrics) Delegated() uint64 { return m.delegated.Load() }

// Dispatched returns the total number of dispatched tasks.
func (m *AtomicMetrics) Dispatched() uint64 { return m.dispatched.Load() }

// Executed returns the total number of executor runs.
func (m *AtomicMetrics) Executed() uint64 { return m.executed.Load() }

// BusyTime returns the accumulated executor run time.
func (m *AtomicMetrics) BusyTime() time.Duration { return time.Duration(m.busy.Load()) }

// Faulted returns the total number of executor panics.
func (m *AtomicMetrics) Faulted() uint64 { return m.faulted.Load() }

// Queued returns the last reported queue length.
func (m *AtomicMetrics) Queued() int64 { return m.queued.Load() }

func (m *AtomicMetrics) IncDelegated()       { m.delegated.Add(1) }
func (m *AtomicMetrics) IncDispatched(_ int) { m.dispatched.Add(1) }

func (m *AtomicMetrics) ObserveExecuted(_ int, d time.Duration) {
	m.executed.Add(1)
	m.busy.Add(int64(d))
}

func (m *AtomicMetrics) IncFaulted(_ int) { m.faulted.Add(1) }
func (m *AtomicMetrics) SetQueued(n int)  { m.queued.Store(int64(n)) }

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncDelegated()                      {}
func (m *NoopMetrics) IncDispatched(int)                  {}
func (m *NoopMetrics) ObserveExecuted(int, time.Duration) {}
func (m *NoopMetrics) IncFaulted(int)                     {}
func (m *NoopMetrics) SetQueued(int)                      {}
