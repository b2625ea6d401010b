package taskfarm

import (
	"fmt"
	"sync"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Executor runs a task on the worker side.
//
// It reads its input from buf and writes its result in place. buf has
// exactly the configured payload size; the executor must not keep it
// after returning.
type Executor func(buf []byte)

// CompletionFunc consumes a finished task on the dispatcher side.
//
// buf holds the executor's result. d is the dispatcher that owns the
// slot; the callback may Delegate follow-up work on it. The callback must
// not keep buf after returning.
type CompletionFunc[K TaskTypeID] func(buf []byte, d *Dispatcher[K])

// dispatcherEntry is the dispatcher half of a task type.
type dispatcherEntry[K TaskTypeID] struct {
	priority   int
	onComplete CompletionFunc[K]
}

// dispatcherRegistry maps task types to their dispatcher half.
//
// Lookups happen from Delegate (any goroutine) and from Tick.
type dispatcherRegistry[K TaskTypeID] struct {
	mu      sync.RWMutex
	entries map[K]dispatcherEntry[K]
}

func (r *dispatcherRegistry[K]) set(id K, e dispatcherEntry[K]) {
	r.mu.Lock()
	if r.entries == nil {
		r.entries = make(map[K]dispatcherEntry[K])
	}
	r.entries[id] = e
	r.mu.Unlock()
}

func (r *dispatcherRegistry[K]) get(id K) (dispatcherEntry[K], bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	return e, ok
}

// AddTaskType registers the dispatcher half of a task type: the priority
// its tasks are queued with and the callback that consumes their results.
// Registering an id again replaces the previous entry.
func (d *Dispatcher[K]) AddTaskType(id K, priority int, onComplete CompletionFunc[K]) error {
	if onComplete == nil {
		return fmt.Errorf("%w: completion callback for task type %d", ErrNilCallback, encodeTag(id))
	}
	d.types.set(id, dispatcherEntry[K]{priority: priority, onComplete: onComplete})
	lg.FromContext(d.opts.Context).Info("task type registered",
		lg.Any("type", id),
		lg.Int("priority", priority),
		lg.String("role", "dispatcher"),
	)
	return nil
}

// AddTaskType registers the worker half of a task type.
//
// Registration must finish before the agent is first ticked; the
// executor table is read without locking.
func (w *WorkerAgent[K]) AddTaskType(id K, exec Executor) error {
	if exec == nil {
		return fmt.Errorf("%w: executor for task type %d", ErrNilCallback, encodeTag(id))
	}
	if w.executors == nil {
		w.executors = make(map[K]Executor)
	}
	w.executors[id] = exec
	return nil
}
