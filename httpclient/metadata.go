package httpclient

import (
	"net/http"
	"net/url"
	"strconv"
)

// Metadata describes the response a transport produced. It is a closed
// union of *HTTPMetadata and *OpaqueMetadata; no other implementations
// exist.
type Metadata interface {
	isMetadata()
}

// HTTPMetadata is the metadata of a well-formed HTTP response.
type HTTPMetadata struct {
	// StatusCode is the numeric HTTP status, e.g. 200.
	StatusCode int

	// Status is the status line text as received, e.g. "200 OK".
	Status string

	// Proto is the protocol version, e.g. "HTTP/1.1".
	Proto string

	// Header holds the response header fields.
	Header http.Header

	// URL is the URL the response was served for, after redirects.
	URL *url.URL

	// ContentLength is the declared body length, or -1 when unknown.
	ContentLength int64
}

// OpaqueMetadata describes a response that did not come from an HTTP
// exchange, such as a file: URL served by a registered protocol handler.
type OpaqueMetadata struct {
	URL           *url.URL
	ContentType   string
	ContentLength int64
}

func (*HTTPMetadata) isMetadata()   {}
func (*OpaqueMetadata) isMetadata() {}

// LocalizedStatusCode renders the status code with its reason phrase,
// e.g. "404 - Not Found".
func (m *HTTPMetadata) LocalizedStatusCode() string {
	return strconv.Itoa(m.StatusCode) + " - " + statusReason(m.StatusCode)
}

// NewHTTPMetadata builds metadata for a synthetic HTTP response. It is
// mostly useful for Transport implementations and tests.
func NewHTTPMetadata(statusCode int, rawURL string, header http.Header) *HTTPMetadata {
	u, _ := url.Parse(rawURL)
	if header == nil {
		header = make(http.Header)
	}
	return &HTTPMetadata{
		StatusCode:    statusCode,
		Status:        strconv.Itoa(statusCode) + " " + http.StatusText(statusCode),
		Proto:         "HTTP/1.1",
		Header:        header,
		URL:           u,
		ContentLength: -1,
	}
}

// metadataFromResponse maps an *http.Response onto the Metadata union.
// Only http and https exchanges count as HTTP responses.
func metadataFromResponse(resp *http.Response) Metadata {
	var u *url.URL
	if resp.Request != nil {
		u = resp.Request.URL
	}

	if u != nil && u.Scheme != "http" && u.Scheme != "https" {
		return &OpaqueMetadata{
			URL:           u,
			ContentType:   resp.Header.Get("Content-Type"),
			ContentLength: resp.ContentLength,
		}
	}

	return &HTTPMetadata{
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		Proto:         resp.Proto,
		Header:        resp.Header,
		URL:           u,
		ContentLength: resp.ContentLength,
	}
}

// statusReason returns the standard reason phrase for code, falling back to
// the name of its status class for unregistered codes.
func statusReason(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	switch {
	case code >= 100 && code < 200:
		return "informational"
	case code >= 200 && code < 300:
		return "success"
	case code >= 300 && code < 400:
		return "redirection"
	case code >= 400 && code < 500:
		return "client error"
	case code >= 500 && code < 600:
		return "server error"
	default:
		return "unknown status"
	}
}
