package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"
)

// Compile-time interface check.
var _ Transport = (*MockTransport)(nil)

// responder produces the raw outcome for one dispatched request.
type responder func(req *http.Request) ([]byte, Metadata, error)

type stub struct {
	matcher func(*http.Request) bool
	respond responder
}

// MockTransport is a Transport for tests. It answers requests from
// configured stubs and records every request it receives.
//
// Stubs are checked in the order they were added; the first match wins.
// Requests no stub matches fall back to StubResponse/StubError, and fail
// when neither is set.
//
// Example:
//
//	mock := httpclient.NewMockTransport().
//	    StubPath("/products/1", http.StatusOK, `{"id":1}`).
//	    StubResponse(http.StatusNotFound, "")
//
//	req, _ := httpclient.NewRequestFromPath(
//	    "https://api.example.com/products/1",
//	    httpclient.WithTransport(mock),
//	)
type MockTransport struct {
	mu       sync.RWMutex
	stubs    []stub
	fallback responder
	requests []*http.Request
	bodies   [][]byte
	hook     func(*http.Request)
	latency  time.Duration
	inline   bool
}

// NewMockTransport creates a MockTransport that completes asynchronously
// and has no stubs.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// httpResponder answers with an HTTP response for the request URL. The body
// is copied per call.
func httpResponder(statusCode int, body string, header http.Header) responder {
	return func(req *http.Request) ([]byte, Metadata, error) {
		meta := NewHTTPMetadata(statusCode, req.URL.String(), header.Clone())
		meta.ContentLength = int64(len(body))
		return []byte(body), meta, nil
	}
}

// StubResponse answers every otherwise unmatched request with statusCode
// and body.
func (m *MockTransport) StubResponse(statusCode int, body string) *MockTransport {
	return m.setFallback(httpResponder(statusCode, body, nil))
}

// StubError fails every otherwise unmatched request with err.
func (m *MockTransport) StubError(err error) *MockTransport {
	return m.setFallback(func(*http.Request) ([]byte, Metadata, error) {
		return nil, nil, err
	})
}

// StubOutcome answers every otherwise unmatched request with exactly the
// given triple. It exists to drive the classifier through combinations a
// real transport rarely produces, such as a nil body.
func (m *MockTransport) StubOutcome(data []byte, meta Metadata, err error) *MockTransport {
	return m.setFallback(func(*http.Request) ([]byte, Metadata, error) {
		return data, meta, err
	})
}

func (m *MockTransport) setFallback(r responder) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = r
	return m
}

// StubPath answers requests for path.
func (m *MockTransport) StubPath(path string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.URL.Path == path
	}, statusCode, body)
}

// StubPathRegex answers requests whose path matches pattern.
func (m *MockTransport) StubPathRegex(pattern string, statusCode int, body string) *MockTransport {
	re := regexp.MustCompile(pattern)
	return m.StubFunc(func(req *http.Request) bool {
		return re.MatchString(req.URL.Path)
	}, statusCode, body)
}

// StubMethod answers requests with the given method.
func (m *MockTransport) StubMethod(method string, statusCode int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool {
		return req.Method == method
	}, statusCode, body)
}

// StubFunc answers requests accepted by matcher.
func (m *MockTransport) StubFunc(
	matcher func(*http.Request) bool,
	statusCode int,
	body string,
) *MockTransport {
	return m.addStub(matcher, httpResponder(statusCode, body, nil))
}

// StubFuncHeader is StubFunc with response headers.
func (m *MockTransport) StubFuncHeader(
	matcher func(*http.Request) bool,
	statusCode int,
	body string,
	header http.Header,
) *MockTransport {
	return m.addStub(matcher, httpResponder(statusCode, body, header))
}

// StubFuncError fails requests accepted by matcher with err.
func (m *MockTransport) StubFuncError(matcher func(*http.Request) bool, err error) *MockTransport {
	return m.addStub(matcher, func(*http.Request) ([]byte, Metadata, error) {
		return nil, nil, err
	})
}

func (m *MockTransport) addStub(matcher func(*http.Request) bool, r responder) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, stub{matcher: matcher, respond: r})
	return m
}

// OnRequest sets a hook called with each request as it is dispatched.
func (m *MockTransport) OnRequest(fn func(*http.Request)) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = fn
	return m
}

// WithLatency delays every completion by d. Cancelling the Task or the
// request context during the delay completes with the context error.
func (m *MockTransport) WithLatency(d time.Duration) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
	return m
}

// Inline makes Dispatch complete on the calling goroutine before it
// returns.
func (m *MockTransport) Inline() *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inline = true
	return m
}

// Dispatch implements Transport.
func (m *MockTransport) Dispatch(req *http.Request, onComplete CompletionFunc) Task {
	ctx, cancel := context.WithCancel(req.Context())
	t := newTask(cancel)

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	hook, latency, inline := m.hook, m.latency, m.inline
	m.mu.Unlock()

	if hook != nil {
		hook(req)
	}

	run := func() {
		defer t.finish()

		if latency > 0 {
			timer := time.NewTimer(latency)
			defer timer.Stop()
			select {
			case <-timer.C:
			case <-ctx.Done():
			}
		}
		if err := ctx.Err(); err != nil {
			onComplete(nil, nil, err)
			return
		}

		onComplete(m.respond(req))
	}

	if inline {
		run()
	} else {
		go run()
	}
	return t
}

func (m *MockTransport) respond(req *http.Request) ([]byte, Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.stubs {
		if s.matcher(req) {
			return s.respond(req)
		}
	}
	if m.fallback != nil {
		return m.fallback(req)
	}
	return nil, nil, fmt.Errorf("no stub found for request: %s %s", req.Method, req.URL)
}

// Requests returns all requests dispatched so far.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*http.Request{}, m.requests...)
}

// RequestCount returns the number of requests dispatched.
func (m *MockTransport) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil if none.
func (m *MockTransport) LastRequest() *http.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

// LastRequestBody returns the body sent with the most recent request, or
// nil if it had none.
func (m *MockTransport) LastRequestBody() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.bodies) == 0 {
		return nil
	}
	return m.bodies[len(m.bodies)-1]
}

// Reset clears recorded requests, stubs and settings.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = nil
	m.fallback = nil
	m.requests = nil
	m.bodies = nil
	m.hook = nil
	m.latency = 0
	m.inline = false
}
