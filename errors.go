package taskfarm

import (
	"errors"
)

var (
	// ErrUnknownTaskType is returned by Delegate for an id that was never
	// registered with the dispatcher.
	ErrUnknownTaskType = errors.New("taskfarm: unknown task type")

	// ErrPayloadTooLarge is returned by Delegate when the payload does not
	// fit in a slot buffer.
	ErrPayloadTooLarge = errors.New("taskfarm: payload exceeds buffer size")

	// ErrNilCallback is returned when a task type is registered without
	// the callback its role needs.
	ErrNilCallback = errors.New("taskfarm: nil callback")

	// ErrMissingExecutor is raised by a worker that claimed a task whose
	// type has no executor.
	ErrMissingExecutor = errors.New("taskfarm: no executor for task type")

	// ErrMissingCompletion is raised by the dispatcher when a completed
	// slot carries a type without a completion callback.
	ErrMissingCompletion = errors.New("taskfarm: no completion callback for task type")

	// ErrConcurrentTick is raised when two Tick calls overlap on one
	// dispatcher.
	ErrConcurrentTick = errors.New("taskfarm: overlapping dispatcher ticks")

	// ErrExecutorPanic wraps a recovered executor panic.
	ErrExecutorPanic = errors.New("taskfarm: executor panicked")

	// ErrSlotReset reports a faulted slot that was reset; its task is lost.
	ErrSlotReset = errors.New("taskfarm: faulted slot reset")

	// ErrFarmStarted is returned when a farm is reconfigured after Start.
	ErrFarmStarted = errors.New("taskfarm: farm already started")
)
