package httpclient

import (
	"io"
	"sync/atomic"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// trackedBody wraps a response body so the request span covers the body
// transfer. The span ends on EOF or Close, whichever comes first, and
// onDone receives the number of bytes read.
type trackedBody struct {
	body  io.ReadCloser
	span  trace.Span
	read  atomic.Int64
	ended atomic.Bool

	onDone func(bytesRead int64)
}

func newTrackedBody(span trace.Span, body io.ReadCloser, onDone func(int64)) io.ReadCloser {
	if body == nil {
		return nil
	}
	return &trackedBody{body: body, span: span, onDone: onDone}
}

func (b *trackedBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	b.read.Add(int64(n))

	switch err {
	case nil:
	case io.EOF:
		b.end()
	default:
		b.span.RecordError(err)
		b.span.SetStatus(codes.Error, err.Error())
	}

	return n, err
}

func (b *trackedBody) Close() error {
	b.end()
	return b.body.Close()
}

func (b *trackedBody) end() {
	if !b.ended.CompareAndSwap(false, true) {
		return
	}
	if b.onDone != nil {
		b.onDone(b.read.Load())
	}
	b.span.End()
}
