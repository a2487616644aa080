package httpclient

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	metricRequestDuration    = "http.client.request.duration"
	metricRequestBodySize    = "http.client.request.body.size"
	metricResponseBodySize   = "http.client.response.body.size"
	metricConnectionDuration = "http.client.connection.duration"
	metricDNSDuration        = "http.client.dns.duration"
	metricTLSDuration        = "http.client.tls.duration"
	metricTTFB               = "http.client.ttfb"
	metricActiveRequests     = "http.client.active_requests"
	metricRequestErrors      = "http.client.request.error"
	metricOpenedConnections  = "http.client.connection.opened"
)

var (
	latencyBuckets = []float64{
		0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10,
	}
	phaseBuckets = []float64{
		0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
	}
	sizeBuckets = []float64{
		0, 100, 1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024,
	}
)

// metrics holds the instruments recorded for every traced dispatch.
// A nil *metrics records nothing.
type metrics struct {
	requestDuration    metric.Float64Histogram
	requestBodySize    metric.Int64Histogram
	responseBodySize   metric.Int64Histogram
	connectionDuration metric.Float64Histogram
	dnsDuration        metric.Float64Histogram
	tlsDuration        metric.Float64Histogram
	ttfb               metric.Float64Histogram

	// activeRequests counts dispatches whose response body is still open.
	activeRequests metric.Int64UpDownCounter

	// requestErrors counts transport failures by error.type.
	requestErrors metric.Int64Counter

	// openedConnections counts new (not reused) connections.
	openedConnections metric.Int64Counter
}

// newMetrics creates and registers metric instruments.
func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}

	seconds := []struct {
		dst     *metric.Float64Histogram
		name    string
		desc    string
		buckets []float64
	}{
		{&m.requestDuration, metricRequestDuration, "Duration of HTTP client requests in seconds", latencyBuckets},
		{&m.connectionDuration, metricConnectionDuration, "Time to establish HTTP connection in seconds", phaseBuckets},
		{&m.dnsDuration, metricDNSDuration, "DNS lookup duration in seconds", phaseBuckets},
		{&m.tlsDuration, metricTLSDuration, "TLS handshake duration in seconds", phaseBuckets},
		{&m.ttfb, metricTTFB, "Time to first response byte in seconds", latencyBuckets},
	}
	for _, h := range seconds {
		inst, err := meter.Float64Histogram(h.name,
			metric.WithDescription(h.desc),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(h.buckets...),
		)
		if err != nil {
			return nil, err
		}
		*h.dst = inst
	}

	var err error
	m.requestBodySize, err = meter.Int64Histogram(metricRequestBodySize,
		metric.WithDescription("Size of HTTP client request bodies in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sizeBuckets...),
	)
	if err != nil {
		return nil, err
	}

	m.responseBodySize, err = meter.Int64Histogram(metricResponseBodySize,
		metric.WithDescription("Size of HTTP client response bodies in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sizeBuckets...),
	)
	if err != nil {
		return nil, err
	}

	m.activeRequests, err = meter.Int64UpDownCounter(metricActiveRequests,
		metric.WithDescription("Number of active HTTP client requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.requestErrors, err = meter.Int64Counter(metricRequestErrors,
		metric.WithDescription("Number of HTTP client request errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	m.openedConnections, err = meter.Int64Counter(metricOpenedConnections,
		metric.WithDescription("Number of new HTTP client connections"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metrics) recordRequestDuration(ctx context.Context, d time.Duration, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	m.requestDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

func (m *metrics) recordRequestBodySize(ctx context.Context, size int64, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	m.requestBodySize.Record(ctx, size, metric.WithAttributes(attrs...))
}

func (m *metrics) recordResponseBodySize(ctx context.Context, size int64, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	m.responseBodySize.Record(ctx, size, metric.WithAttributes(attrs...))
}

// netPhase identifies a connection phase measured by networkTrace.
type netPhase int

const (
	phaseDNS netPhase = iota
	phaseConnect
	phaseTLS
	phaseTTFB
)

func (m *metrics) recordPhase(ctx context.Context, p netPhase, d time.Duration, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}

	var h metric.Float64Histogram
	switch p {
	case phaseDNS:
		h = m.dnsDuration
	case phaseConnect:
		h = m.connectionDuration
	case phaseTLS:
		h = m.tlsDuration
	case phaseTTFB:
		h = m.ttfb
	default:
		return
	}
	h.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

func (m *metrics) recordConnectionOpened(ctx context.Context, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	m.openedConnections.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metrics) addActiveRequests(ctx context.Context, delta int64, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	m.activeRequests.Add(ctx, delta, metric.WithAttributes(attrs...))
}

func (m *metrics) recordError(ctx context.Context, errorType string, attrs []attribute.KeyValue) {
	if m == nil {
		return
	}
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, attrs...)
	all = append(all, attribute.String("error.type", errorType))
	m.requestErrors.Add(ctx, 1, metric.WithAttributes(all...))
}
