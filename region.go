package taskfarm

import (
	"fmt"
)

// Region is the shared memory every dispatcher and worker agent of one
// farm agree on: one atomic cell per worker and one contiguous payload
// arena cut into fixed-size buffers.
//
// It is the only channel used for payload exchange.
type Region struct {
	cells       []slotCell
	arena       []byte
	payloadSize int
}

// WorkerBinding holds the three things a worker needs from its runtime:
// its index, the shared region and its own payload buffer.
type WorkerBinding struct {
	Index  int
	Region *Region
	Buffer []byte
}

// NewRegion allocates the shared region for workers slots of payloadSize
// bytes each.
func NewRegion(workers, payloadSize int) (*Region, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("taskfarm: invalid worker count %d", workers)
	}
	if payloadSize <= 0 {
		return nil, fmt.Errorf("taskfarm: invalid payload size %d", payloadSize)
	}
	r := &Region{
		cells:       make([]slotCell, workers),
		arena:       make([]byte, workers*payloadSize),
		payloadSize: payloadSize,
	}
	for i := range r.cells {
		r.cells[i].doorbell = make(chan struct{}, 1)
	}
	return r, nil
}

// Workers returns the number of slots.
func (r *Region) Workers() int { return len(r.cells) }

// PayloadSize returns the size of every slot buffer.
func (r *Region) PayloadSize() int { return r.payloadSize }

// Buffer returns slot i's payload buffer.
//
// The slice is capped at its length, so append can never spill into the
// neighbouring slot.
func (r *Region) Buffer(i int) []byte {
	lo := i * r.payloadSize
	hi := lo + r.payloadSize
	return r.arena[lo:hi:hi]
}

// Binding returns the worker-side view of slot i.
func (r *Region) Binding(i int) WorkerBinding {
	return WorkerBinding{Index: i, Region: r, Buffer: r.Buffer(i)}
}

// State returns the current state of slot i.
func (r *Region) State(i int) SlotState { return r.cells[i].load() }

func (r *Region) cell(i int) *slotCell { return &r.cells[i] }
