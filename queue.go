package relayq

import (
	"context"
	"fmt"
	"sync"
)

// Queue is a bounded worker pool. At most concurrency tasks run at once;
// pending tasks start in FIFO submission order as slots free. A task's
// failure is delivered only to its own caller and never affects siblings.
type Queue struct {
	mu          sync.Mutex
	concurrency int
	running     int
	pending     []*TaskHandle
	closed      bool
	stateHook   func(pending, running int)
}

// TaskHandle resolves to the eventual result or failure of a submitted task.
type TaskHandle struct {
	fn    func() (any, error)
	value any
	err   error
	done  chan struct{}
}

// NewQueue creates a queue running at most concurrency tasks at once.
// Non-positive values fall back to the default of 5.
func NewQueue(concurrency int) *Queue {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Queue{concurrency: concurrency}
}

// Submit admits a task. The returned handle resolves once the task has run;
// after Close the handle resolves immediately with ErrQueueClosed.
func (q *Queue) Submit(fn func() (any, error)) *TaskHandle {
	handle := &TaskHandle{
		fn:   fn,
		done: make(chan struct{}),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		handle.err = ErrQueueClosed
		close(handle.done)
		return handle
	}
	q.pending = append(q.pending, handle)
	q.dispatchLocked()
	q.notifyLocked()
	q.mu.Unlock()

	return handle
}

// Wait blocks until the task completes or ctx is done. An abandoned task
// still runs to completion; there is no cancellation once admitted.
func (t *TaskHandle) Wait(ctx context.Context) (any, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel closed when the task has completed.
func (t *TaskHandle) Done() <-chan struct{} {
	return t.done
}

// Running returns the number of tasks currently executing.
func (q *Queue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Pending returns the number of tasks waiting for a slot.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close rejects further submissions and fails all pending tasks with
// ErrQueueClosed. Running tasks complete normally.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	rejected := q.pending
	q.pending = nil
	q.notifyLocked()
	q.mu.Unlock()

	for _, handle := range rejected {
		handle.err = ErrQueueClosed
		close(handle.done)
	}
}

// dispatchLocked grants free slots to pending tasks in submission order.
// Callers must hold q.mu.
func (q *Queue) dispatchLocked() {
	for q.running < q.concurrency && len(q.pending) > 0 {
		handle := q.pending[0]
		q.pending = q.pending[1:]
		q.running++
		go q.run(handle)
	}
}

func (q *Queue) run(handle *TaskHandle) {
	defer func() {
		if r := recover(); r != nil {
			handle.err = fmt.Errorf("relayq: task panic: %v", r)
		}
		close(handle.done)

		q.mu.Lock()
		q.running--
		q.dispatchLocked()
		q.notifyLocked()
		q.mu.Unlock()
	}()

	handle.value, handle.err = handle.fn()
}

func (q *Queue) notifyLocked() {
	if q.stateHook != nil {
		q.stateHook(len(q.pending), q.running)
	}
}
