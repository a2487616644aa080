package httpclient

import "net/http"

// CompletionFunc receives the raw outcome of one transport operation.
//
// A nil data slice means the transport produced no body at all; a non-nil
// empty slice is an empty body. meta is nil when the transport has no
// response to describe (typically because err is set).
type CompletionFunc func(data []byte, meta Metadata, err error)

// Transport performs one asynchronous byte fetch per Dispatch call.
//
// Implementations must be safe for concurrent use: a single Transport is
// shared by every Request built on top of it. Dispatch returns immediately;
// onComplete is invoked exactly once, on a goroutine of the transport's
// choosing.
//
// Client is the production implementation and MockTransport is the test
// double.
type Transport interface {
	Dispatch(req *http.Request, onComplete CompletionFunc) Task
}
