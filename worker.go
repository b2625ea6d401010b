package taskfarm

import (
	"fmt"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
)

// WorkerAgent runs the worker side of one slot.
//
// Like the dispatcher it owns no loop. Each Tick either executes the task
// assigned to its slot or waits a bounded time for one and gives control
// back. Whether a worker that returned empty-handed is ever ticked again
// is up to the host; a worker that is not ticked leaves its assignment in
// Start indefinitely.
//
// An agent is driven by one goroutine at a time; Tick is not safe for
// concurrent use.
type WorkerAgent[K TaskTypeID] struct {
	index     int
	cell      *slotCell
	buf       []byte
	executors map[K]Executor
	opts      Options

	// wait state reused across idle ticks
	bo    *boff.Backoff
	timer *time.Timer
}

// NewWorkerAgent creates the agent for the slot described by b.
func NewWorkerAgent[K TaskTypeID](b WorkerBinding, opts Options) (*WorkerAgent[K], error) {
	if b.Region == nil {
		return nil, fmt.Errorf("taskfarm: worker %d has no region", b.Index)
	}
	if b.Index < 0 || b.Index >= b.Region.Workers() {
		return nil, fmt.Errorf("taskfarm: worker index %d out of range [0,%d)", b.Index, b.Region.Workers())
	}
	if len(b.Buffer) != b.Region.PayloadSize() {
		return nil, fmt.Errorf("taskfarm: worker %d buffer is %d bytes, want %d",
			b.Index, len(b.Buffer), b.Region.PayloadSize())
	}
	opts.Workers = b.Region.Workers()
	opts.PayloadSize = b.Region.PayloadSize()
	opts.FillDefaults()

	timer := time.NewTimer(opts.Wait.Max)
	timer.Stop()

	return &WorkerAgent[K]{
		index:     b.Index,
		cell:      b.Region.cell(b.Index),
		buf:       b.Buffer,
		executors: make(map[K]Executor),
		opts:      opts,
		bo:        boff.New(opts.Wait.Initial, opts.Wait.Max, time.Now().UnixNano()+int64(b.Index)),
		timer:     timer,
	}, nil
}

// Index returns the slot index this agent serves.
func (w *WorkerAgent[K]) Index() int { return w.index }

// Tick tries to claim and run the task assigned to this slot.
//
// If nothing is assigned it waits on the slot up to Wait.Attempts times,
// with timeouts from the wait policy backoff, re-checking after every
// wake. It returns true if a task was executed.
func (w *WorkerAgent[K]) Tick() bool {
	if w.cell.claim() {
		w.perform()
		return true
	}

	w.bo.Reset(w.opts.Wait.Initial)
	for range w.opts.Wait.Attempts {
		// Reset discards any pending expiry
		w.timer.Reset(w.bo.Next())
		select {
		case <-w.cell.doorbell:
			w.timer.Stop()
			statWakeup()
		case <-w.timer.C:
		}
		if w.cell.claim() {
			w.perform()
			return true
		}
	}
	statIdleReturn()
	return false
}

// perform runs the claimed task and publishes the result.
func (w *WorkerAgent[K]) perform() {
	// a ring for this assignment may still be pending
	select {
	case <-w.cell.doorbell:
	default:
	}

	raw := w.cell.tag.Load()
	exec, ok := w.executors[decodeTag[K](raw)]
	if !ok {
		panic(fmt.Errorf("%w: %d on worker %d", ErrMissingExecutor, raw, w.index))
	}

	start := time.Now()
	if err := w.run(exec); err != nil {
		// the slot stays Working: wedged until the supervisor resets it
		w.cell.faulted.Store(true)
		w.opts.Metrics.IncFaulted(w.index)
		reportTaskFault(&w.opts, w.index, err)
		return
	}
	w.opts.Metrics.ObserveExecuted(w.index, time.Since(start))

	// release: the result in buf is visible to the dispatcher's Load(Complete)
	w.cell.store(Complete)
}

func (w *WorkerAgent[K]) run(exec Executor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExecutorPanic, r)
		}
	}()
	exec(w.buf)
	return nil
}
