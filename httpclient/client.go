package httpclient

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

// Compile-time interface check.
var _ Transport = (*Client)(nil)

// Client is the production Transport. It sends requests through an
// *http.Client whose transport is instrumented with OpenTelemetry tracing
// and metrics, reads each body fully and reports the raw outcome.
//
// A Client is safe for concurrent use and should be reused: it owns a
// connection pool.
//
//	client := httpclient.New(
//	    httpclient.WithServiceName("catalog"),
//	    httpclient.WithDebug(true),
//	)
//
//	req, err := httpclient.NewRequestFromPath(
//	    "https://api.example.com/products/1",
//	    httpclient.WithTransport(client),
//	)
type Client struct {
	// httpClient is the underlying HTTP client with the instrumented transport.
	httpClient *http.Client

	// config holds all client configuration.
	config *internalConfig
}

// New creates a Client with a fresh *http.Transport built from the
// configured Config.
func New(opts ...Option) *Client {
	cfg := newConfig(opts...)
	return newClient(&http.Client{}, cfg.buildTransport(), cfg)
}

// NewWithTransport creates a Client that sends through base instead of a
// transport built from Config. Config.Timeout still applies.
//
// Example - route through a test server's transport:
//
//	client := httpclient.NewWithTransport(srv.Client().Transport)
func NewWithTransport(base http.RoundTripper, opts ...Option) *Client {
	cfg := newConfig(opts...)
	if base == nil {
		base = cfg.buildTransport()
	}
	return newClient(&http.Client{}, base, cfg)
}

// WrapClient creates a Client on top of an existing *http.Client. Its
// transport, timeout, cookie jar and redirect policy are kept; WithConfig
// has no effect. hc itself is not modified.
func WrapClient(hc *http.Client, opts ...Option) *Client {
	cfg := newConfig(opts...)
	if hc == nil {
		hc = &http.Client{}
	}

	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	c := newClient(&http.Client{
		Jar:           hc.Jar,
		CheckRedirect: hc.CheckRedirect,
	}, base, cfg)
	c.httpClient.Timeout = hc.Timeout
	return c
}

func newClient(hc *http.Client, base http.RoundTripper, cfg *internalConfig) *Client {
	hc.Transport = newOtelTransport(base, cfg)
	hc.Timeout = cfg.httpConfig.Timeout
	return &Client{httpClient: hc, config: cfg}
}

var shared = sync.OnceValue(func() *Client {
	return New()
})

// Shared returns the process-wide default Client. Requests use it unless
// WithTransport says otherwise. It is created on first use.
func Shared() *Client {
	return shared()
}

// HTTP returns the underlying *http.Client for advanced use cases.
//
// Use this when you need to:
//   - Pass the client to third-party libraries expecting *http.Client
//   - Stream a body instead of buffering it
//
// Requests sent this way are still traced, but request interceptors and
// debug logging do not run.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}

// Dispatch implements Transport.
//
// The transfer runs on its own goroutine. onComplete receives the full
// body, the response metadata and the first error met on the way: a
// request interceptor, the round trip, a response interceptor or the body
// read. Cancelling the returned Task cancels the request's context.
func (c *Client) Dispatch(req *http.Request, onComplete CompletionFunc) Task {
	ctx, cancel := context.WithCancel(req.Context())
	t := newTask(cancel)
	req = req.Clone(ctx)

	go func() {
		defer t.finish()
		data, meta, err := c.do(req)
		onComplete(data, meta, err)
	}()

	return t
}

func (c *Client) do(req *http.Request) ([]byte, Metadata, error) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}

	if err := c.config.Interceptors.ApplyRequestInterceptors(req); err != nil {
		return nil, nil, err
	}

	logger := c.config.Logger
	if c.config.Debug {
		logRequest(logger, req, c.config.GenerateCurl)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.config.Debug {
			logFailure(logger, req, err, time.Since(start))
		}
		return nil, nil, err
	}
	defer resp.Body.Close()

	// Protocol handlers such as http.NewFileTransport leave Request unset.
	if resp.Request == nil {
		resp.Request = req
	}

	if err := c.config.Interceptors.ApplyResponseInterceptors(resp, req); err != nil {
		return nil, nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if c.config.Debug {
			logFailure(logger, req, err, time.Since(start))
		}
		return nil, nil, err
	}

	if c.config.Debug {
		logResponse(logger, resp, len(data), time.Since(start))
	}

	return data, metadataFromResponse(resp), nil
}
