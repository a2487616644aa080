package httpclient

import (
	"fmt"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Compile-time interface check.
var _ http.RoundTripper = (*otelTransport)(nil)

// otelTransport wraps an http.RoundTripper with OpenTelemetry tracing and
// metrics. The client span stays open until the response body is drained
// or closed, so it covers the whole transfer.
type otelTransport struct {
	base http.RoundTripper
	cfg  *internalConfig
}

func newOtelTransport(base http.RoundTripper, cfg *internalConfig) *otelTransport {
	return &otelTransport{base: base, cfg: cfg}
}

// RoundTrip implements http.RoundTripper.
func (t *otelTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.cfg.shouldTrace(req) {
		return t.base.RoundTrip(req)
	}

	start := time.Now()
	ctx, span := t.cfg.Tracer.Start(req.Context(), t.spanName(req),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.requestAttributes(req)...),
	)

	// RoundTrip must not modify the caller's request.
	req = req.Clone(ctx)
	if t.cfg.Propagators != nil {
		t.cfg.Propagators.Inject(ctx, propagation.HeaderCarrier(req.Header))
	}

	baseAttrs := t.cfg.baseAttributes()
	m := t.cfg.Metrics
	m.addActiveRequests(ctx, 1, baseAttrs)

	if req.ContentLength > 0 {
		m.recordRequestBodySize(ctx, req.ContentLength, baseAttrs)
	}

	var nt *networkTrace
	if t.cfg.EnableNetworkTrace {
		nt = &networkTrace{}
		req = req.WithContext(httptrace.WithClientTrace(ctx, nt.clientTrace()))
	}

	resp, err := t.base.RoundTrip(req)

	if nt != nil {
		nt.record(ctx, span, m, baseAttrs)
	}

	if err != nil {
		errorType := classifyError(err)
		setSpanError(span, err, errorType)
		m.recordError(ctx, errorType, baseAttrs)
		m.recordRequestDuration(ctx, time.Since(start), t.metricAttributes(req, nil, errorType))
		m.addActiveRequests(ctx, -1, baseAttrs)
		span.End()
		return nil, err
	}

	span.SetAttributes(t.responseAttributes(resp)...)
	errorType := errorTypeFromStatusCode(resp.StatusCode)
	if errorType != "" {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
		span.SetAttributes(attribute.String("error.type", errorType))
	}

	durationAttrs := t.metricAttributes(req, resp, errorType)
	body := newTrackedBody(span, resp.Body, func(n int64) {
		m.recordResponseBodySize(ctx, n, baseAttrs)
		m.recordRequestDuration(ctx, time.Since(start), durationAttrs)
		m.addActiveRequests(ctx, -1, baseAttrs)
	})
	if body == nil {
		m.recordRequestDuration(ctx, time.Since(start), durationAttrs)
		m.addActiveRequests(ctx, -1, baseAttrs)
		span.End()
		return resp, nil
	}
	resp.Body = body

	return resp, nil
}

func (t *otelTransport) spanName(req *http.Request) string {
	if t.cfg.SpanNameFormatter != nil {
		return t.cfg.SpanNameFormatter(req.Method, req)
	}
	return "HTTP " + req.Method
}

// serverAttributes returns server.address and server.port for u, using
// the scheme's default port when none is given.
func serverAttributes(u *url.URL) []attribute.KeyValue {
	if u == nil {
		return nil
	}

	attrs := make([]attribute.KeyValue, 0, 2)
	if host := u.Hostname(); host != "" {
		attrs = append(attrs, attribute.String("server.address", host))
	}

	if p, err := strconv.Atoi(u.Port()); err == nil {
		attrs = append(attrs, attribute.Int("server.port", p))
		return attrs
	}
	switch u.Scheme {
	case "http":
		attrs = append(attrs, attribute.Int("server.port", 80))
	case "https":
		attrs = append(attrs, attribute.Int("server.port", 443))
	}
	return attrs
}

func (t *otelTransport) requestAttributes(req *http.Request) []attribute.KeyValue {
	attrs := t.cfg.baseAttributes()
	attrs = append(attrs, attribute.String("http.request.method", req.Method))

	if req.URL != nil {
		attrs = append(attrs,
			attribute.String("url.full", redactedURL(req.URL)),
			attribute.String("url.scheme", req.URL.Scheme),
		)
		attrs = append(attrs, serverAttributes(req.URL)...)
	}

	if req.ContentLength > 0 {
		attrs = append(attrs, attribute.Int64("http.request.body.size", req.ContentLength))
	}
	if ua := req.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}

	return attrs
}

func (t *otelTransport) responseAttributes(resp *http.Response) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int("http.response.status_code", resp.StatusCode),
	}

	if resp.ContentLength > 0 {
		attrs = append(attrs, attribute.Int64("http.response.body.size", resp.ContentLength))
	}

	// "HTTP/1.1" -> "1.1", "HTTP/2.0" -> "2"
	if v, ok := strings.CutPrefix(resp.Proto, "HTTP/"); ok {
		if v == "2.0" {
			v = "2"
		}
		attrs = append(attrs, attribute.String("network.protocol.version", v))
	}

	return attrs
}

// metricAttributes returns the low-cardinality attributes used on the
// duration histogram. resp is nil for transport failures.
func (t *otelTransport) metricAttributes(
	req *http.Request,
	resp *http.Response,
	errorType string,
) []attribute.KeyValue {
	attrs := t.cfg.baseAttributes()
	attrs = append(attrs, attribute.String("http.request.method", req.Method))
	attrs = append(attrs, serverAttributes(req.URL)...)

	if resp != nil {
		attrs = append(attrs, attribute.Int("http.response.status_code", resp.StatusCode))
	}
	if errorType != "" {
		attrs = append(attrs, attribute.String("error.type", errorType))
	}

	return attrs
}

// redactedURL renders u without user credentials.
func redactedURL(u *url.URL) string {
	if u.User == nil {
		return u.String()
	}
	return u.Redacted()
}
