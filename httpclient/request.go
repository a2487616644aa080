package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

// Request pairs a prepared *http.Request with the Transport that sends it.
//
// A Request is immutable: every Fetch call dispatches a fresh clone of the
// prepared request, so the same Request may be fetched many times and from
// many goroutines.
//
// Create a Request from a path string:
//
//	req, err := httpclient.NewRequestFromPath("https://api.example.com/users")
//	if err != nil {
//	    return err
//	}
//	req.Fetch(func(res httpclient.Result[*httpclient.DataResponse]) {
//	    switch resp, err := res.Get(); {
//	    case err != nil:
//	        log.Println(err)
//	    default:
//	        fmt.Println(resp.String())
//	    }
//	})
//
// Or from a prepared *http.Request:
//
//	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
//	req := httpclient.NewRequest(httpReq, httpclient.WithTransport(client))
type Request struct {
	// req is the prepared request. It is never handed out or sent directly.
	req *http.Request

	// transport performs the dispatch. Shared, not owned.
	transport Transport

	// executor, when set, runs every completion callback.
	executor Executor
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// WithTransport sets the Transport used to dispatch the request.
// Default: Shared().
func WithTransport(t Transport) RequestOption {
	return func(r *Request) {
		if t != nil {
			r.transport = t
		}
	}
}

// WithExecutor makes every completion callback run through e instead of
// on the transport's completion goroutine.
func WithExecutor(e Executor) RequestOption {
	return func(r *Request) {
		r.executor = e
	}
}

// WithHeaders applies headers to the prepared request, last write wins.
func WithHeaders(hs ...Header) RequestOption {
	return func(r *Request) {
		SetHeaders(r.req, hs...)
	}
}

// WithContext binds ctx to the prepared request. Cancelling ctx aborts
// every transfer started from the Request.
func WithContext(ctx context.Context) RequestOption {
	return func(r *Request) {
		if ctx != nil {
			r.req = r.req.WithContext(ctx)
		}
	}
}

// NewRequest wraps a prepared request. The request is cloned, so later
// changes to req do not affect the returned Request.
//
// req must not be nil; use CreateRequest or NewRequestFromPath to build
// from an unchecked path. A body without GetBody is read once here and
// replayed on every fetch. If that read fails, every fetch fails with the
// read error.
func NewRequest(req *http.Request, opts ...RequestOption) *Request {
	if req == nil {
		panic("httpclient: NewRequest called with nil *http.Request")
	}

	r := &Request{
		req: req.Clone(req.Context()),
	}
	bufferBody(r.req)
	for _, opt := range opts {
		opt(r)
	}
	if r.transport == nil {
		r.transport = Shared()
	}
	return r
}

// bufferBody makes a single-use body replayable by installing GetBody.
func bufferBody(req *http.Request) {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		req.Body = http.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return nil, err }
		return
	}

	req.ContentLength = int64(len(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	req.Body, _ = req.GetBody()
}

// NewRequestFromURL builds a GET Request for u.
func NewRequestFromURL(u *url.URL, opts ...RequestOption) *Request {
	return NewRequest(NewGETRequest(u), opts...)
}

// NewRequestFromPath builds a GET Request from a URL string.
//
// Surrounding whitespace is trimmed first. It returns ErrEmptyPath when
// nothing is left, and an *Error of kind KindInvalidPath carrying the
// trimmed string when it is not a usable absolute URL.
//
// Example:
//
//	_, err := httpclient.NewRequestFromPath("  ")
//	errors.Is(err, httpclient.ErrEmptyPath) // true
func NewRequestFromPath(path string, opts ...RequestOption) (*Request, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyPath
	}

	u, ok := ParseURL(path)
	if !ok {
		return nil, invalidPathError(path)
	}

	return NewRequestFromURL(u, opts...), nil
}

// CreateRequest is NewRequestFromPath returning a Result instead of an
// error pair.
func CreateRequest(path string, opts ...RequestOption) Result[*Request] {
	return Catch(func() (*Request, error) {
		return NewRequestFromPath(path, opts...)
	})
}

// ParseURL parses s as an absolute URL. It rejects strings containing
// whitespace and strings without a scheme.
func ParseURL(s string) (*url.URL, bool) {
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	return u, true
}

// NewGETRequest builds a bare GET request for u with a background context.
func NewGETRequest(u *url.URL) *http.Request {
	return (&http.Request{
		Method:     http.MethodGet,
		URL:        u,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     make(http.Header),
		Host:       u.Host,
	}).WithContext(context.Background())
}

// HTTPRequest returns a copy of the prepared request.
func (r *Request) HTTPRequest() *http.Request {
	return r.req.Clone(r.req.Context())
}

// Transport returns the transport the Request dispatches through.
func (r *Request) Transport() Transport {
	return r.transport
}

// WithHeaders returns a copy of r with hs applied. r is unchanged.
func (r *Request) WithHeaders(hs ...Header) *Request {
	req := r.req.Clone(r.req.Context())
	SetHeaders(req, hs...)
	return &Request{req: req, transport: r.transport, executor: r.executor}
}

// Fetch dispatches the request and reports the classified outcome.
//
// The returned Task is already running. onComplete is called exactly once
// with either the response or the first failure found by Classify.
func (r *Request) Fetch(onComplete func(Result[*DataResponse])) Task {
	return r.dispatch(func(res Result[*DataResponse]) func() {
		return func() { onComplete(res) }
	})
}

// FetchJSON dispatches the request and parses a successful body as JSON.
//
// Upstream failures are passed through unchanged; parse errors are the
// JSON decoder's own.
func (r *Request) FetchJSON(opts JSONOptions, onComplete func(Result[*JSONResponse])) Task {
	return r.dispatch(func(res Result[*DataResponse]) func() {
		out := FlatMap(res, func(resp *DataResponse) Result[*JSONResponse] {
			return DecodeJSONResponse(resp, opts)
		})
		return func() { onComplete(out) }
	})
}

// FetchDecoded dispatches r and decodes a successful body into T with
// decoder (JSONDecoder{} when nil).
//
// It is a function rather than a method because Go methods cannot declare
// type parameters.
//
// Example:
//
//	type Product struct {
//	    Title string `json:"title"`
//	}
//	httpclient.FetchDecoded(req, nil, func(res httpclient.Result[*httpclient.DecodedResponse[Product]]) {
//	    if resp, ok := res.SuccessValue(); ok {
//	        fmt.Println(resp.Decoded.Title)
//	    }
//	})
func FetchDecoded[T any](
	r *Request,
	decoder Decoder,
	onComplete func(Result[*DecodedResponse[T]]),
) Task {
	return r.dispatch(func(res Result[*DataResponse]) func() {
		out := FlatMap(res, func(resp *DataResponse) Result[*DecodedResponse[T]] {
			return DecodeResponse[T](resp, decoder)
		})
		return func() { onComplete(out) }
	})
}

// dispatch sends a clone of the prepared request, classifies the outcome
// on the transport's goroutine and hands the callback built by then to the
// executor.
func (r *Request) dispatch(then func(Result[*DataResponse]) func()) Task {
	req := r.req.Clone(r.req.Context())

	// Bodies are single-use readers; rewind through GetBody so repeated
	// fetches of the same Request each send the full body.
	if r.req.GetBody != nil {
		body, err := r.req.GetBody()
		if err != nil {
			t := newTask(nil)
			r.complete(then(Failure[*DataResponse](err)))
			t.finish()
			return t
		}
		req.Body = body
	}

	return r.transport.Dispatch(req, func(data []byte, meta Metadata, err error) {
		r.complete(then(Classify(data, meta, err)))
	})
}

func (r *Request) complete(fn func()) {
	if r.executor == nil {
		fn()
		return
	}
	r.executor.Execute(fn)
}
