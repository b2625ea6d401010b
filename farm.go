package taskfarm

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Farm is a ready-made host for one dispatcher and its worker agents: it
// allocates the shared region, runs every agent on its own goroutine and
// can drive the dispatcher on a fixed interval.
//
// Hosts that need their own scheduling can use NewRegion, NewDispatcher
// and NewWorkerAgent directly instead.
type Farm[K TaskTypeID] struct {
	opts       Options
	region     *Region
	dispatcher *Dispatcher[K]
	workers    []*WorkerAgent[K]

	wg      sync.WaitGroup
	started atomic.Bool

	// mu guards the run context: cancel is set by Start, stopped by
	// Shutdown, in whichever order they happen.
	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewFarm allocates the region, the dispatcher and opts.Workers agents.
// Nothing runs until Start or Run.
func NewFarm[K TaskTypeID](opts Options) (*Farm[K], error) {
	opts.FillDefaults()

	region, err := NewRegion(opts.Workers, opts.PayloadSize)
	if err != nil {
		return nil, err
	}
	f := &Farm[K]{
		opts:       opts,
		region:     region,
		dispatcher: NewDispatcher[K](region, opts),
		workers:    make([]*WorkerAgent[K], opts.Workers),
	}
	for i := range f.workers {
		w, err := NewWorkerAgent[K](region.Binding(i), opts)
		if err != nil {
			return nil, err
		}
		f.workers[i] = w
	}
	return f, nil
}

// AddTaskType registers both halves of a task type: priority and
// onComplete go to the dispatcher, exec goes to every worker agent.
//
// It must be called before Start.
func (f *Farm[K]) AddTaskType(id K, priority int, exec Executor, onComplete CompletionFunc[K]) error {
	if f.started.Load() {
		return ErrFarmStarted
	}
	if err := f.dispatcher.AddTaskType(id, priority, onComplete); err != nil {
		return err
	}
	for _, w := range f.workers {
		if err := w.AddTaskType(id, exec); err != nil {
			return err
		}
	}
	return nil
}

// Delegate queues a task on the farm's dispatcher.
func (f *Farm[K]) Delegate(id K, payload []byte) error {
	return f.dispatcher.Delegate(id, payload)
}

// Start launches one goroutine per worker agent. Each goroutine ticks its
// agent until ctx is done or Shutdown is called.
//
// Calling Shutdown before Start leaves the farm stopped: Start then
// launches nothing.
func (f *Farm[K]) Start(ctx context.Context) error {
	_, err := f.start(ctx)
	return err
}

// start returns the context that bounds the farm's goroutines.
func (f *Farm[K]) start(ctx context.Context) (context.Context, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started.Load() {
		return nil, ErrFarmStarted
	}
	f.started.Store(true)
	ctx, f.cancel = context.WithCancel(ctx)
	if f.stopped {
		f.cancel()
		return ctx, nil
	}

	for _, w := range f.workers {
		f.wg.Add(1)
		go f.runWorker(ctx, w)
	}
	lg.FromContext(f.opts.Context).Info("farm started",
		lg.Int("workers", len(f.workers)),
		lg.Int("payload_size", f.region.PayloadSize()),
	)
	return ctx, nil
}

// Run starts the workers and ticks the dispatcher every
// Options.TickInterval until ctx is done or Shutdown is called. It
// returns after all worker goroutines have exited.
func (f *Farm[K]) Run(ctx context.Context) error {
	runCtx, err := f.start(ctx)
	if err != nil {
		return err
	}
	err = f.dispatcher.AutoTick(runCtx, f.opts.TickInterval)
	f.stop()
	f.wg.Wait()
	return err
}

func (f *Farm[K]) runWorker(ctx context.Context, w *WorkerAgent[K]) {
	defer f.wg.Done()

	if f.opts.PinWorkers {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := PinToCPU(w.Index() % runtime.NumCPU()); err != nil {
			lg.FromContext(f.opts.Context).Warn("cpu pinning failed",
				lg.Int("worker", w.Index()),
				lg.Any("error", err),
			)
		}
	}

	for ctx.Err() == nil {
		w.Tick()
	}
}

func (f *Farm[K]) stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true
	if f.cancel != nil {
		f.cancel()
	}
}

// Shutdown stops the worker goroutines and the dispatcher loop of Run,
// then waits for the workers, or for ctx. A worker that is executing a
// task finishes it first.
func (f *Farm[K]) Shutdown(ctx context.Context) error {
	f.stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.wg.Wait()
	}()
	select {
	case <-done:
		lg.FromContext(f.opts.Context).Info("farm stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop is a blocking Shutdown.
func (f *Farm[K]) Stop() { _ = f.Shutdown(context.Background()) }

// Dispatcher returns the farm's dispatcher.
func (f *Farm[K]) Dispatcher() *Dispatcher[K] { return f.dispatcher }

// Worker returns the agent for slot i.
func (f *Farm[K]) Worker(i int) *WorkerAgent[K] { return f.workers[i] }

// Region returns the shared region.
func (f *Farm[K]) Region() *Region { return f.region }
