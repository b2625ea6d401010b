package taskfarm

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Dispatcher owns the pending-task queue and the dispatcher side of every
// slot. It has no goroutine of its own: progress happens only when the
// host calls Tick (directly or through AutoTick).
//
// Delegate is safe from any goroutine. Tick calls must be serialized by
// the host; overlapping calls panic with ErrConcurrentTick.
type Dispatcher[K TaskTypeID] struct {
	region *Region
	queue  *taskQueue[K]
	types  dispatcherRegistry[K]
	opts   Options

	// cursor is the slot the next round-robin search starts from.
	// Only Tick reads or writes it.
	cursor int

	seq     atomic.Uint64
	ticking atomic.Bool
}

// NewDispatcher creates the dispatcher for region.
//
// opts.Workers and opts.PayloadSize are ignored; the region defines both.
func NewDispatcher[K TaskTypeID](region *Region, opts Options) *Dispatcher[K] {
	opts.Workers = region.Workers()
	opts.PayloadSize = region.PayloadSize()
	opts.FillDefaults()
	return &Dispatcher[K]{
		region: region,
		queue:  newTaskQueue[K](),
		opts:   opts,
	}
}

// Delegate queues a task of type id carrying a copy of payload.
//
// It fails immediately if id has no dispatcher registration or payload is
// longer than the slot buffer; once queued, a task is never dropped.
// The queue is unbounded.
func (d *Dispatcher[K]) Delegate(id K, payload []byte) error {
	e, ok := d.types.get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTaskType, encodeTag(id))
	}
	if len(payload) > d.region.PayloadSize() {
		return fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(payload), d.region.PayloadSize())
	}

	t := &Task[K]{
		Type:      id,
		Priority:  e.priority,
		CreatedAt: time.Now(),
		Payload:   bytes.Clone(payload),
		seq:       d.seq.Add(1),
	}
	n := d.queue.Push(t)
	d.opts.Metrics.IncDelegated()
	d.opts.Metrics.SetQueued(n)
	return nil
}

// MustDelegate is like Delegate but panics on error.
func (d *Dispatcher[K]) MustDelegate(id K, payload []byte) {
	if err := d.Delegate(id, payload); err != nil {
		panic(err)
	}
}

// Tick performs one non-blocking dispatch step:
//
//  1. every Complete slot is handed to its completion callback and reset
//     to Ready;
//  2. queued tasks are assigned round-robin to Ready slots until the
//     queue is empty or no slot is Ready.
//
// Completion callbacks run before assignment, so tasks they delegate can
// be dispatched in the same tick. When every slot is busy Tick changes
// nothing and returns.
func (d *Dispatcher[K]) Tick() {
	if !d.ticking.CompareAndSwap(false, true) {
		panic(ErrConcurrentTick)
	}
	defer d.ticking.Store(false)

	d.drainCompleted()
	if d.opts.ResetFaultedAfter > 0 {
		d.resetFaulted(time.Now())
	}
	for d.assignNext() {
	}
	d.opts.Metrics.SetQueued(d.queue.Len())
}

// AutoTick calls Tick every interval until ctx is done, then returns
// ctx.Err(). It is the only place a dispatcher loops.
func (d *Dispatcher[K]) AutoTick(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = d.opts.TickInterval
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.Tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Tick()
		}
	}
}

func (d *Dispatcher[K]) drainCompleted() {
	for i := range d.region.Workers() {
		c := d.region.cell(i)
		// acquire: pairs with the worker's Store(Complete)
		if c.load() != Complete {
			continue
		}
		raw := c.tag.Load()
		e, ok := d.types.get(decodeTag[K](raw))
		if !ok {
			panic(fmt.Errorf("%w: %d on worker %d", ErrMissingCompletion, raw, i))
		}
		e.onComplete(d.region.Buffer(i), d)
		c.store(Ready)
	}
}

// assignNext moves one task from the queue into a Ready slot.
// It reports false when nothing was assigned.
func (d *Dispatcher[K]) assignNext() bool {
	if d.queue.Len() == 0 {
		return false
	}
	idx := d.findReady()
	if idx < 0 {
		return false
	}
	t, ok := d.queue.Pop()
	if !ok {
		return false
	}

	buf := d.region.Buffer(idx)
	clear(buf)
	copy(buf, t.Payload)

	c := d.region.cell(idx)
	c.tag.Store(encodeTag(t.Type))
	// release: buffer and tag are visible to whoever claims Start
	c.store(Start)
	c.ring()

	d.cursor = (idx + 1) % d.region.Workers()
	d.opts.Metrics.IncDispatched(idx)
	return true
}

// findReady scans slots round-robin from the cursor and returns the first
// Ready index, or -1.
func (d *Dispatcher[K]) findReady() int {
	n := d.region.Workers()
	for i := range n {
		idx := (d.cursor + i) % n
		if d.region.cell(idx).load() == Ready {
			return idx
		}
	}
	return -1
}

// resetFaulted returns faulted slots to Ready once they have been claimed
// for ResetFaultedAfter. A faulted slot's executor has already unwound, so
// nothing else touches its buffer.
func (d *Dispatcher[K]) resetFaulted(now time.Time) {
	for i := range d.region.Workers() {
		c := d.region.cell(i)
		if !c.faulted.Load() {
			continue
		}
		claimed := time.Unix(0, c.claimedAt.Load())
		if now.Sub(claimed) < d.opts.ResetFaultedAfter {
			continue
		}
		if !c.state.CompareAndSwap(uint32(Working), uint32(Ready)) {
			continue
		}
		c.faulted.Store(false)

		lg.FromContext(d.opts.Context).Warn("faulted slot reset",
			lg.Int("worker", i),
			lg.String("wedged_for", now.Sub(claimed).String()),
		)
		reportInternalError(&d.opts, fmt.Errorf("%w: worker %d, task type %d", ErrSlotReset, i, c.tag.Load()))
	}
}

// QueueLength returns the number of tasks waiting for a slot.
func (d *Dispatcher[K]) QueueLength() int { return d.queue.Len() }

// Cursor returns the slot index the next round-robin search starts at.
func (d *Dispatcher[K]) Cursor() int { return d.cursor }

// Region returns the shared region the dispatcher writes to.
func (d *Dispatcher[K]) Region() *Region { return d.region }

// SlotStates returns a snapshot of every slot's state.
func (d *Dispatcher[K]) SlotStates() []SlotState {
	out := make([]SlotState, d.region.Workers())
	for i := range out {
		out[i] = d.region.State(i)
	}
	return out
}
