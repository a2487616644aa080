package httpclient

// Result is the outcome of a fallible operation: either a success carrying a
// value of type T, or a failure carrying an error.
//
// A Result is a success exactly when its error is nil, so the zero value is
// a success holding the zero T. Results are immutable once built.
//
// Example:
//
//	req.Fetch(func(res httpclient.Result[*httpclient.DataResponse]) {
//	    resp, err := res.Get()
//	    if err != nil {
//	        log.Printf("fetch failed: %v", err)
//	        return
//	    }
//	    fmt.Println(resp.String())
//	})
type Result[T any] struct {
	value T
	err   error
}

// Success returns a successful Result holding v.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure returns a failed Result holding err.
//
// Failure panics if err is nil: a failure without a cause would be
// indistinguishable from a success.
func Failure[T any](err error) Result[T] {
	if err == nil {
		panic("httpclient: Failure called with nil error")
	}
	return Result[T]{err: err}
}

// Catch runs fn and captures its return values as a Result.
func Catch[T any](fn func() (T, error)) Result[T] {
	v, err := fn()
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

// FlatMap chains fn onto a successful Result. A failure passes through
// unchanged and fn is not called.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Failure[U](r.err)
	}
	return fn(r.value)
}

// IsSuccess reports whether r holds a value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// IsFailure reports whether r holds an error.
func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

// SuccessValue returns the success value and true, or the zero T and false
// for a failure.
func (r Result[T]) SuccessValue() (T, bool) {
	if r.err != nil {
		var zero T
		return zero, false
	}
	return r.value, true
}

// FailureValue returns the failure error, or nil for a success.
func (r Result[T]) FailureValue() error {
	return r.err
}

// Get unpacks r into Go's usual (value, error) pair.
func (r Result[T]) Get() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}
