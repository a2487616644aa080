package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http/httptrace"
	"strconv"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Values of the error.type attribute for transport failures.
const (
	ErrorTypeTimeout           = "timeout"
	ErrorTypeCancelled         = "cancelled"
	ErrorTypeDNSError          = "dns_error"
	ErrorTypeTLSError          = "tls_error"
	ErrorTypeConnectionRefused = "connection_refused"
	ErrorTypeConnectionReset   = "connection_reset"
	ErrorTypeEOF               = "eof"
	ErrorTypeUnknown           = "unknown"
)

// phase is a start/end pair collected from httptrace.
type phase struct {
	start, end time.Time
}

func (p phase) complete() bool { return !p.start.IsZero() && !p.end.IsZero() }
func (p phase) duration() time.Duration { return p.end.Sub(p.start) }

// networkTrace collects connection timings for one round trip. httptrace
// may call hooks from dialing goroutines, so fields are guarded by mu.
type networkTrace struct {
	mu sync.Mutex

	dns     phase
	connect phase
	tls     phase

	gotConn   time.Time
	wrote     time.Time
	firstByte time.Time

	reused   bool
	wasIdle  bool
	remote   string
	alpn     string
	dnsAddrs []string
}

func (nt *networkTrace) set(fn func()) {
	nt.mu.Lock()
	fn()
	nt.mu.Unlock()
}

// clientTrace returns hooks that fill nt.
func (nt *networkTrace) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			nt.set(func() { nt.dns.start = time.Now() })
		},
		DNSDone: func(info httptrace.DNSDoneInfo) {
			nt.set(func() {
				nt.dns.end = time.Now()
				for _, a := range info.Addrs {
					nt.dnsAddrs = append(nt.dnsAddrs, a.String())
				}
			})
		},
		ConnectStart: func(_, _ string) {
			nt.set(func() {
				if nt.connect.start.IsZero() {
					nt.connect.start = time.Now()
				}
			})
		},
		ConnectDone: func(_, _ string, err error) {
			if err != nil {
				return
			}
			nt.set(func() { nt.connect.end = time.Now() })
		},
		TLSHandshakeStart: func() {
			nt.set(func() { nt.tls.start = time.Now() })
		},
		TLSHandshakeDone: func(state tls.ConnectionState, _ error) {
			nt.set(func() {
				nt.tls.end = time.Now()
				nt.alpn = state.NegotiatedProtocol
			})
		},
		GotConn: func(info httptrace.GotConnInfo) {
			nt.set(func() {
				nt.gotConn = time.Now()
				nt.reused = info.Reused
				nt.wasIdle = info.WasIdle
				if info.Conn != nil && info.Conn.RemoteAddr() != nil {
					nt.remote = info.Conn.RemoteAddr().String()
				}
			})
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			nt.set(func() { nt.wrote = time.Now() })
		},
		GotFirstResponseByte: func() {
			nt.set(func() { nt.firstByte = time.Now() })
		},
	}
}

// record adds span events and timing metrics for the collected phases.
func (nt *networkTrace) record(
	ctx context.Context,
	span trace.Span,
	m *metrics,
	attrs []attribute.KeyValue,
) {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	addPhase := func(name string, p phase, extra ...attribute.KeyValue) {
		span.AddEvent(name+".start", trace.WithTimestamp(p.start))
		extra = append(extra, attribute.Float64(name+".duration_ms", float64(p.duration().Milliseconds())))
		span.AddEvent(name+".done", trace.WithTimestamp(p.end), trace.WithAttributes(extra...))
	}

	if nt.dns.complete() {
		addPhase("dns", nt.dns, attribute.StringSlice("dns.addresses", nt.dnsAddrs))
		m.recordPhase(ctx, phaseDNS, nt.dns.duration(), attrs)
	}
	if nt.connect.complete() {
		addPhase("connect", nt.connect)
		m.recordPhase(ctx, phaseConnect, nt.connect.duration(), attrs)
	}
	if nt.tls.complete() {
		addPhase("tls", nt.tls, attribute.String("tls.protocol", nt.alpn))
		m.recordPhase(ctx, phaseTLS, nt.tls.duration(), attrs)
	}

	if !nt.gotConn.IsZero() {
		span.AddEvent("got_conn", trace.WithTimestamp(nt.gotConn), trace.WithAttributes(
			attribute.Bool("connection.reused", nt.reused),
			attribute.Bool("connection.was_idle", nt.wasIdle),
			attribute.String("network.peer.address", nt.remote),
		))
		if !nt.reused {
			m.recordConnectionOpened(ctx, attrs)
		}
	}

	if !nt.wrote.IsZero() {
		span.AddEvent("wrote_request", trace.WithTimestamp(nt.wrote))
	}

	if ttfb := (phase{start: nt.wrote, end: nt.firstByte}); ttfb.complete() {
		span.AddEvent("got_first_response_byte", trace.WithTimestamp(nt.firstByte),
			trace.WithAttributes(attribute.Float64("ttfb_ms", float64(ttfb.duration().Milliseconds()))))
		m.recordPhase(ctx, phaseTTFB, ttfb.duration(), attrs)
	}
}

// classifyError maps a transport error onto an error.type value.
func classifyError(err error) string {
	var (
		netErr  net.Error
		dnsErr  *net.DNSError
		recErr  tls.RecordHeaderError
		certErr *tls.CertificateVerificationError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return ErrorTypeCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.As(err, &dnsErr):
		return ErrorTypeDNSError
	case errors.As(err, &netErr) && netErr.Timeout():
		return ErrorTypeTimeout
	case errors.As(err, &recErr), errors.As(err, &certErr):
		return ErrorTypeTLSError
	case errors.Is(err, syscall.ECONNREFUSED):
		return ErrorTypeConnectionRefused
	case errors.Is(err, syscall.ECONNRESET):
		return ErrorTypeConnectionReset
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrorTypeEOF
	default:
		return ErrorTypeUnknown
	}
}

// errorTypeFromStatusCode returns the error.type for 4xx and 5xx codes,
// which is the code itself.
func errorTypeFromStatusCode(statusCode int) string {
	if statusCode >= 400 {
		return strconv.Itoa(statusCode)
	}
	return ""
}

func setSpanError(span trace.Span, err error, errorType string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.type", errorType))
}
