package httpclient

import (
	"context"
	"sync"
)

// Task is the handle to one in-flight dispatch. The transfer starts when
// Dispatch is called; there is no separate start step.
type Task interface {
	// Cancel aborts the transfer if it has not finished. The completion is
	// still delivered, carrying the transport's cancellation error.
	Cancel()

	// Done is closed once the transport has delivered its completion.
	Done() <-chan struct{}

	// Wait blocks until Done is closed or ctx ends, whichever is first.
	Wait(ctx context.Context) error
}

// task is the Task used by Client and MockTransport.
type task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func newTask(cancel context.CancelFunc) *task {
	if cancel == nil {
		cancel = func() {}
	}
	return &task{cancel: cancel, done: make(chan struct{})}
}

func (t *task) Cancel() {
	t.cancel()
}

func (t *task) Done() <-chan struct{} {
	return t.done
}

func (t *task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finish marks the task as complete. Safe to call more than once.
func (t *task) finish() {
	t.once.Do(func() {
		close(t.done)
		t.cancel()
	})
}
