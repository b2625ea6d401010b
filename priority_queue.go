package taskfarm

import (
	"container/heap"
	"sync"
)

const (
	prioCap = 256
)

// taskHeap is a min-heap over Task.Less.
type taskHeap[K TaskTypeID] []*Task[K]

func (h taskHeap[K]) Len() int           { return len(h) }
func (h taskHeap[K]) Less(i, j int) bool { return h[i].Less(h[j]) }
func (h taskHeap[K]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *taskHeap[K]) Push(x any) {
	*h = append(*h, x.(*Task[K]))
}

func (h *taskHeap[K]) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// taskQueue is the dispatcher's pending-work container.
//
// The mutex makes Delegate safe from any goroutine. It is held only for
// the duration of a heap operation and never across a user callback, so
// completion callbacks may push while a tick is popping.
type taskQueue[K TaskTypeID] struct {
	mu sync.Mutex
	h  taskHeap[K]
}

func newTaskQueue[K TaskTypeID]() *taskQueue[K] {
	q := &taskQueue[K]{h: make(taskHeap[K], 0, prioCap)}
	heap.Init(&q.h)
	return q
}

// Push inserts t in O(log n).
func (q *taskQueue[K]) Push(t *Task[K]) int {
	q.mu.Lock()
	heap.Push(&q.h, t)
	n := q.h.Len()
	q.mu.Unlock()
	return n
}

// Pop removes the minimal task. It returns false if the queue is empty.
func (q *taskQueue[K]) Pop() (*Task[K], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.h.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&q.h).(*Task[K]), true
}

// Peek returns the minimal task without removing it.
func (q *taskQueue[K]) Peek() (*Task[K], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.h.Len() == 0 {
		return nil, false
	}
	return q.h[0], true
}

func (q *taskQueue[K]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.h.Len()
}
