package taskfarm

import (
	"time"
)

// TaskTypeID is the constraint for task-type identifiers.
//
// Callers declare their own closed set of task types as constants of a
// named integer type. The raw numeric form only exists inside the shared
// slot cells; everywhere else the named type is used.
type TaskTypeID interface {
	~uint8 | ~uint16 | ~uint32
}

// Task is a pending unit of work owned by the dispatcher queue.
//
// Payload is a private copy made at Delegate time. Once the task is popped
// its bytes are copied into a slot buffer and the task is discarded.
type Task[K TaskTypeID] struct {
	Type      K
	Priority  int
	CreatedAt time.Time
	Payload   []byte

	// seq orders tasks whose CreatedAt readings are equal.
	seq uint64
}

// Less reports whether t must be served before o.
//
// Lower Priority wins. Within a priority class the earlier submission
// wins, which keeps each class FIFO.
func (t *Task[K]) Less(o *Task[K]) bool {
	if t.Priority != o.Priority {
		return t.Priority < o.Priority
	}
	if !t.CreatedAt.Equal(o.CreatedAt) {
		return t.CreatedAt.Before(o.CreatedAt)
	}
	return t.seq < o.seq
}

func encodeTag[K TaskTypeID](id K) uint32 { return uint32(id) }

func decodeTag[K TaskTypeID](raw uint32) K { return K(raw) }
