// Package taskfarm provides an in-process task farm: a fixed set of
// worker goroutines fed by a priority queue and coordinated through a
// shared memory region instead of channels.
//
// Design goals
//
// The package is designed around the following principles:
//
//   - Payloads are copied once, into a fixed-size slot buffer, and
//     results are written back in place
//   - Ownership of a slot is decided by atomic state transitions only
//   - No component owns a hidden run loop; progress is driven by ticks
//   - Programming errors fail fast instead of silently dropping work
//
// Architecture overview
//
// A farm is composed of three loosely coupled parts:
//
//   1. Region
//      One atomic state cell and one payload buffer per worker. The
//      buffers are cut from a single contiguous arena.
//
//   2. Dispatcher
//      Holds the priority queue and the completion callbacks. Each Tick
//      collects finished slots and assigns queued tasks round-robin.
//
//   3. WorkerAgent
//      Holds the executors. Each Tick claims the assigned task, runs it
//      on the slot buffer and marks the slot complete.
//
// Farm wires the three together and runs each agent on its own
// goroutine. Hosts with their own scheduler can use the parts directly.
//
// Slot lifecycle
//
//	Ready → Start → Working → Complete → Ready
//
// The dispatcher owns Ready → Start and Complete → Ready, the worker owns
// Start → Working (a compare-and-swap) and Working → Complete. The
// dispatcher's payload and tag writes happen before its Start store; the
// worker's claim CAS makes them visible. The worker's Complete store
// publishes the result the same way in the other direction.
//
// Ordering
//
// Tasks are served by ascending priority value, then by submission time.
// Completion order across workers is not guaranteed to follow dispatch
// order.
//
// Backpressure
//
// Delegate never blocks and the queue is unbounded. When every slot is
// busy, Tick dispatches nothing and returns.
//
// Error handling
//
// Delegate returns ErrUnknownTaskType or ErrPayloadTooLarge immediately.
// A claimed task whose type has no executor panics with
// ErrMissingExecutor. An executor panic is recovered and reported
// through Options.OnTaskFault; the slot then stays Working. Setting
// Options.ResetFaultedAfter lets the dispatcher reclaim such slots, at
// the cost of the task they held.
//
// CPU pinning
//
// On Linux, Farm workers may optionally be pinned to specific CPUs.
// This can improve cache locality for CPU-bound executors but is not
// universally beneficial.
package taskfarm
