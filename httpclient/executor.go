package httpclient

import (
	"sync"
)

// Executor runs completion callbacks in a chosen execution context.
//
// Without an Executor, a Request invokes its completion on whatever
// goroutine the transport completes on. Configure one with WithExecutor
// when callbacks must run somewhere specific, such as a single goroutine
// that owns UI or other non-thread-safe state.
type Executor interface {
	Execute(fn func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(fn func())

// Execute calls f(fn).
func (f ExecutorFunc) Execute(fn func()) {
	f(fn)
}

// SerialExecutor runs callbacks one at a time, in submission order, on a
// single dedicated goroutine.
//
// Example:
//
//	main := httpclient.NewSerialExecutor()
//	defer main.Close()
//
//	req, _ := httpclient.NewRequestFromPath(url, httpclient.WithExecutor(main))
//	req.Fetch(func(res httpclient.Result[*httpclient.DataResponse]) {
//	    // always runs on main's goroutine
//	})
type SerialExecutor struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewSerialExecutor starts a SerialExecutor. Call Close to stop it.
func NewSerialExecutor() *SerialExecutor {
	e := &SerialExecutor{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *SerialExecutor) run() {
	defer close(e.done)
	for {
		e.mu.Lock()
		batch := e.pending
		e.pending = nil
		closed := e.closed
		e.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		if len(batch) == 0 {
			if closed {
				return
			}
			<-e.wake
		}
	}
}

// Execute enqueues fn. It never blocks, so callbacks may submit more work
// to the same executor. After Close, fn runs on the calling goroutine so
// no completion is lost.
func (e *SerialExecutor) Execute(fn func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		fn()
		return
	}
	e.pending = append(e.pending, fn)
	e.mu.Unlock()
	e.signal()
}

// Close stops accepting callbacks and waits until the queued ones have run.
// It must not be called from a callback running on e.
func (e *SerialExecutor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.signal()
	<-e.done
}

func (e *SerialExecutor) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}
