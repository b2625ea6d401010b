package taskfarm

import (
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"
)

// cachePad is used to prevent false sharing between neighbouring cells.
type cachePad = cpu.CacheLinePad

// SlotState is the lifecycle state of one worker slot.
//
// State machine:
//
//	Ready    → Start     [dispatcher, store after payload and tag are written]
//	Start    → Working   [worker, CAS]
//	Working  → Complete  [worker, store after the executor returns]
//	Complete → Ready     [dispatcher, store after the completion callback]
//
// Every transition has exactly one owner. Only Start → Working can race
// (the same worker re-checking after a spurious wake, or a misbehaving
// driver running two agents on one slot), so it is the only CAS.
type SlotState uint32

const (
	// Ready means the slot is idle and its previous result was consumed.
	Ready SlotState = iota
	// Start means a task was assigned but not yet claimed.
	Start
	// Working means a worker claimed the task and is executing it.
	Working
	// Complete means the result is in the buffer, waiting for collection.
	Complete
)

func (s SlotState) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Start:
		return "Start"
	case Working:
		return "Working"
	case Complete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// slotCell is the atomic half of a slot. The payload half lives in the
// Region arena.
//
// Ordering: all fields are accessed through sync/atomic, whose operations
// are sequentially consistent. The pairs that matter are
//
//   - dispatcher: buffer write, tag.Store, state.Store(Start)   (release)
//     worker:     state.CompareAndSwap(Start, Working), tag.Load, buffer read (acquire)
//   - worker:     buffer write, state.Store(Complete)            (release)
//     dispatcher: state.Load() == Complete, buffer read          (acquire)
//
// No lock guards the buffer; these pairs are the only synchronization.
type slotCell struct {
	_     cachePad
	state atomic.Uint32
	tag   atomic.Uint32

	// claimedAt is the UnixNano of the last successful claim.
	claimedAt atomic.Int64

	// faulted is set by the worker when the executor panicked; the slot
	// stays Working until the dispatcher resets it (if enabled).
	faulted atomic.Bool

	// doorbell wakes a worker blocked in its bounded wait. It carries no
	// data and does not guard the buffer.
	doorbell chan struct{}
	_        cachePad
}

func (c *slotCell) load() SlotState { return SlotState(c.state.Load()) }

func (c *slotCell) store(s SlotState) { c.state.Store(uint32(s)) }

// claim performs the Start → Working CAS. Exactly one caller observes true
// for a given assignment.
func (c *slotCell) claim() bool {
	statClaimAttempt()
	if c.state.CompareAndSwap(uint32(Start), uint32(Working)) {
		c.claimedAt.Store(time.Now().UnixNano())
		return true
	}
	statClaimMiss()
	return false
}

// ring wakes the worker if it is waiting. It never blocks.
func (c *slotCell) ring() {
	select {
	case c.doorbell <- struct{}{}:
	default:
	}
}
