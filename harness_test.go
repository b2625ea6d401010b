package taskfarm

import (
	"testing"
	"time"
)

type testType uint8

const (
	typeA testType = iota + 1
	typeB
	typeC
)

// harness wires a dispatcher and its agents without goroutines, so
// tests drive every tick themselves.
type harness struct {
	region  *Region
	d       *Dispatcher[testType]
	workers []*WorkerAgent[testType]
	metrics *AtomicMetrics
}

func newHarness(t *testing.T, workers, payloadSize int, opts Options) *harness {
	t.Helper()

	region, err := NewRegion(workers, payloadSize)
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}
	m := &AtomicMetrics{}
	if opts.Metrics == nil {
		opts.Metrics = m
	}
	if opts.Wait.Attempts == 0 {
		opts.Wait = WaitPolicy{Attempts: 1, Initial: time.Millisecond, Max: time.Millisecond}
	}

	h := &harness{
		region:  region,
		d:       NewDispatcher[testType](region, opts),
		metrics: m,
	}
	for i := range workers {
		w, err := NewWorkerAgent[testType](region.Binding(i), opts)
		if err != nil {
			t.Fatalf("NewWorkerAgent(%d): %v", i, err)
		}
		h.workers = append(h.workers, w)
	}
	return h
}

// register adds id to the dispatcher and every agent.
func (h *harness) register(t *testing.T, id testType, prio int, exec Executor, done CompletionFunc[testType]) {
	t.Helper()
	if err := h.d.AddTaskType(id, prio, done); err != nil {
		t.Fatalf("dispatcher AddTaskType: %v", err)
	}
	for _, w := range h.workers {
		if err := w.AddTaskType(id, exec); err != nil {
			t.Fatalf("worker AddTaskType: %v", err)
		}
	}
}

// finish plays the worker role for slot i without running an executor.
func (h *harness) finish(t *testing.T, i int) {
	t.Helper()
	c := h.region.cell(i)
	if !c.claim() {
		t.Fatalf("slot %d: claim failed from %v", i, c.load())
	}
	c.store(Complete)
}

func (h *harness) tag(i int) testType {
	return decodeTag[testType](h.region.cell(i).tag.Load())
}

func noopExec([]byte) {}

func noopDone([]byte, *Dispatcher[testType]) {}
