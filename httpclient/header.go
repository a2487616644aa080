package httpclient

import "net/http"

// Header is a single name/value pair of an HTTP header field.
//
// Header names are case-insensitive per RFC 9110; SetHeader canonicalizes
// them through http.Header. A Header may carry no value at all, in which
// case applying it removes the field from the request.
//
// Example:
//
//	var contentTypeHTML = httpclient.NewHeader("Content-Type", "text/html")
//
//	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
//	httpclient.SetHeader(req, contentTypeHTML)
type Header struct {
	name     string
	value    string
	hasValue bool
}

// NewHeader returns a header with the given name and value.
func NewHeader(name, value string) Header {
	return Header{name: name, value: value, hasValue: true}
}

// UnsetHeader returns a header with no value. Applying it deletes name
// from the request.
func UnsetHeader(name string) Header {
	return Header{name: name}
}

// Name returns the header field name as given.
func (h Header) Name() string {
	return h.name
}

// Value returns the header value and whether one is present.
func (h Header) Value() (string, bool) {
	return h.value, h.hasValue
}

// SetHeader applies h to req, replacing any existing values for the same
// field name. Headers with an empty name are ignored.
func SetHeader(req *http.Request, h Header) {
	if req == nil || h.name == "" {
		return
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if !h.hasValue {
		req.Header.Del(h.name)
		return
	}
	req.Header.Set(h.name, h.value)
}

// SetHeaders applies hs to req in order; the last header for a given name
// wins.
func SetHeaders(req *http.Request, hs ...Header) {
	for _, h := range hs {
		SetHeader(req, h)
	}
}
