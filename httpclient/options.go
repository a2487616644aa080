package httpclient

import (
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	// scope is the instrumentation scope name for OpenTelemetry.
	scope = "github.com/kroma-labs/networker/httpclient"
)

// =============================================================================
// Config - HTTP Transport Configuration
// =============================================================================

// Config holds the settings of the *http.Transport that Client builds.
//
// Connection management, timeouts and TLS all belong to the transport; the
// request wrapper never adds policy of its own on top. Use DefaultConfig()
// and change only what you need:
//
//	cfg := httpclient.DefaultConfig()
//	cfg.Timeout = 5 * time.Second
//
//	client := httpclient.New(httpclient.WithConfig(cfg))
type Config struct {
	// Timeout bounds the whole exchange, including reading the body.
	// Zero means no timeout.
	//
	// Default: 30s
	Timeout time.Duration

	// DialTimeout bounds TCP connection establishment.
	//
	// Default: 10s
	DialTimeout time.Duration

	// KeepAlive is the TCP keep-alive probe interval.
	//
	// Default: 30s
	KeepAlive time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake.
	//
	// Default: 10s
	TLSHandshakeTimeout time.Duration

	// ResponseHeaderTimeout bounds the wait for response headers once the
	// request is written. Zero means no separate limit.
	//
	// Default: 0
	ResponseHeaderTimeout time.Duration

	// IdleConnTimeout is how long an idle keep-alive connection is kept.
	//
	// Default: 90s
	IdleConnTimeout time.Duration

	// MaxIdleConns caps idle connections across all hosts.
	//
	// Default: 100
	MaxIdleConns int

	// MaxIdleConnsPerHost caps idle connections per host.
	//
	// Default: 10
	MaxIdleConnsPerHost int

	// DisableCompression stops the transport from requesting gzip and
	// transparently decompressing responses.
	//
	// Default: false
	DisableCompression bool
}

// DefaultConfig returns the settings used by Shared() and by New() when no
// WithConfig option is given. They mirror net/http's DefaultTransport with
// an overall timeout added.
func DefaultConfig() Config {
	return Config{
		Timeout:               30 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 0,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		DisableCompression:    false,
	}
}

// =============================================================================
// Internal Configuration
// =============================================================================

// internalConfig holds all Client configuration.
type internalConfig struct {
	httpConfig Config

	// === OpenTelemetry ===

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *metrics

	// ServiceName is added as "http.client.name" to spans and metrics.
	ServiceName string

	// EnableNetworkTrace records DNS, connect, TLS and TTFB timings.
	// Default: true
	EnableNetworkTrace bool

	// Filters decide which requests are traced. All must return true.
	Filters []Filter

	// SpanNameFormatter names spans. Default: "HTTP {method}".
	SpanNameFormatter SpanNameFormatter

	// Propagators inject trace context into outgoing headers.
	// Default: W3C TraceContext + Baggage.
	Propagators propagation.TextMapPropagator

	// === Logging ===

	Logger       zerolog.Logger
	Debug        bool
	GenerateCurl bool

	// === Dispatch ===

	Interceptors *InterceptorChain

	// Protocols registers extra URL schemes on the built transport.
	Protocols map[string]http.RoundTripper
}

// newConfig creates a new internal config with defaults and applies options.
func newConfig(opts ...Option) *internalConfig {
	cfg := &internalConfig{
		httpConfig:         DefaultConfig(),
		TracerProvider:     otel.GetTracerProvider(),
		MeterProvider:      otel.GetMeterProvider(),
		EnableNetworkTrace: true,
		Propagators: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		Logger:       zerolog.New(os.Stdout).With().Timestamp().Logger(),
		Interceptors: NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	cfg.Tracer = cfg.TracerProvider.Tracer(scope)
	cfg.Meter = cfg.MeterProvider.Meter(scope)

	// Metrics stay nil if instrument creation fails; recording is a no-op then.
	cfg.Metrics, _ = newMetrics(cfg.Meter)

	return cfg
}

// buildTransport creates an http.Transport from the configuration.
func (cfg *internalConfig) buildTransport() *http.Transport {
	hc := cfg.httpConfig

	dialer := &net.Dialer{
		Timeout:   hc.DialTimeout,
		KeepAlive: hc.KeepAlive,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          hc.MaxIdleConns,
		MaxIdleConnsPerHost:   hc.MaxIdleConnsPerHost,
		IdleConnTimeout:       hc.IdleConnTimeout,
		TLSHandshakeTimeout:   hc.TLSHandshakeTimeout,
		ResponseHeaderTimeout: hc.ResponseHeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		DisableCompression:    hc.DisableCompression,
	}

	for scheme, rt := range cfg.Protocols {
		transport.RegisterProtocol(scheme, rt)
	}

	return transport
}

// baseAttributes returns common attributes for all spans and metrics.
func (cfg *internalConfig) baseAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 1)
	if cfg.ServiceName != "" {
		attrs = append(attrs, attribute.String("http.client.name", cfg.ServiceName))
	}
	return attrs
}

// shouldTrace reports whether every filter accepts req.
func (cfg *internalConfig) shouldTrace(req *http.Request) bool {
	for _, f := range cfg.Filters {
		if !f(req) {
			return false
		}
	}
	return true
}

// =============================================================================
// Options - Functional Options for Client Configuration
// =============================================================================

// Filter determines whether a request should be traced.
// Return true to trace the request, false to skip tracing.
type Filter func(r *http.Request) bool

// SpanNameFormatter formats span names based on the HTTP request.
type SpanNameFormatter func(method string, r *http.Request) string

// Option configures a Client.
type Option func(*internalConfig)

// WithConfig sets the HTTP transport configuration.
//
// Example:
//
//	cfg, err := httpclient.ConfigFromEnv("NETWORKER")
//	if err != nil {
//	    return err
//	}
//	client := httpclient.New(httpclient.WithConfig(cfg))
func WithConfig(c Config) Option {
	return func(cfg *internalConfig) {
		cfg.httpConfig = c
	}
}

// WithServiceName sets the "http.client.name" attribute on spans and
// metrics.
func WithServiceName(name string) Option {
	return func(cfg *internalConfig) {
		cfg.ServiceName = name
	}
}

// WithTracerProvider sets a custom OpenTelemetry TracerProvider.
// If not called, the global provider from otel.GetTracerProvider() is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *internalConfig) {
		cfg.TracerProvider = tp
	}
}

// WithMeterProvider sets a custom OpenTelemetry MeterProvider.
// If not called, the global provider from otel.GetMeterProvider() is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *internalConfig) {
		cfg.MeterProvider = mp
	}
}

// WithDisableNetworkTrace turns off DNS/connect/TLS/TTFB span events and
// timing metrics.
func WithDisableNetworkTrace() Option {
	return func(cfg *internalConfig) {
		cfg.EnableNetworkTrace = false
	}
}

// WithFilter adds a filter to determine which requests should be traced.
// Requests rejected by any filter are sent without a span or metrics.
//
// Example - Skip health checks:
//
//	client := httpclient.New(
//	    httpclient.WithFilter(func(r *http.Request) bool {
//	        return !strings.HasPrefix(r.URL.Path, "/health")
//	    }),
//	)
func WithFilter(f Filter) Option {
	return func(cfg *internalConfig) {
		cfg.Filters = append(cfg.Filters, f)
	}
}

// WithSpanNameFormatter sets a custom function to generate span names.
func WithSpanNameFormatter(f SpanNameFormatter) Option {
	return func(cfg *internalConfig) {
		cfg.SpanNameFormatter = f
	}
}

// WithPropagators sets the propagators used to inject trace context into
// outgoing requests.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *internalConfig) {
		cfg.Propagators = p
	}
}

// WithLogger sets the zerolog logger used for debug and error events.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *internalConfig) {
		cfg.Logger = logger
	}
}

// WithDebug logs every request and response at debug level.
func WithDebug(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.Debug = enabled
	}
}

// WithGenerateCurl attaches an equivalent cURL command to request debug
// events. It only has an effect together with WithDebug(true).
func WithGenerateCurl(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.GenerateCurl = enabled
	}
}

// WithRequestInterceptor adds an interceptor that runs on every outgoing
// request before it is sent.
//
// Example:
//
//	client := httpclient.New(
//	    httpclient.WithRequestInterceptor(httpclient.AuthBearerInterceptor(token)),
//	    httpclient.WithRequestInterceptor(httpclient.UserAgentInterceptor("networker/1.0")),
//	)
func WithRequestInterceptor(i RequestInterceptor) Option {
	return func(cfg *internalConfig) {
		cfg.Interceptors.AddRequestInterceptor(i)
	}
}

// WithResponseInterceptor adds an interceptor that inspects every response
// before its body is read. An interceptor error becomes the transport
// error of that dispatch.
func WithResponseInterceptor(i ResponseInterceptor) Option {
	return func(cfg *internalConfig) {
		cfg.Interceptors.AddResponseInterceptor(i)
	}
}

// WithProtocol registers rt for URL scheme on the transport built by New.
// Responses for schemes other than http and https are reported as
// *OpaqueMetadata, which Classify rejects with ErrUnknownResponse.
//
// Example:
//
//	client := httpclient.New(
//	    httpclient.WithProtocol("file", http.NewFileTransport(http.Dir("/srv"))),
//	)
func WithProtocol(scheme string, rt http.RoundTripper) Option {
	return func(cfg *internalConfig) {
		if cfg.Protocols == nil {
			cfg.Protocols = make(map[string]http.RoundTripper)
		}
		cfg.Protocols[scheme] = rt
	}
}
