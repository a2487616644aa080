package httpclient

import (
	"net/http"

	"github.com/google/uuid"
)

// DefaultCorrelationIDHeader is the header CorrelationIDInterceptor sets
// when given an empty header name.
const DefaultCorrelationIDHeader = "X-Correlation-ID"

// RequestInterceptor modifies a request before Client sends it. Returning
// an error aborts the dispatch with that error.
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor inspects a response before its body is read.
// Returning an error fails the dispatch with that error.
type ResponseInterceptor func(resp *http.Response, req *http.Request) error

// InterceptorChain runs interceptors in the order they were added. Chains
// are populated while a Client is configured and only read afterwards.
type InterceptorChain struct {
	request  []RequestInterceptor
	response []ResponseInterceptor
}

// NewInterceptorChain creates an empty interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// AddRequestInterceptor appends i. Nil interceptors are ignored.
func (c *InterceptorChain) AddRequestInterceptor(i RequestInterceptor) {
	if i != nil {
		c.request = append(c.request, i)
	}
}

// AddResponseInterceptor appends i. Nil interceptors are ignored.
func (c *InterceptorChain) AddResponseInterceptor(i ResponseInterceptor) {
	if i != nil {
		c.response = append(c.response, i)
	}
}

// ApplyRequestInterceptors runs the request interceptors, stopping at the
// first error.
func (c *InterceptorChain) ApplyRequestInterceptors(req *http.Request) error {
	for _, i := range c.request {
		if err := i(req); err != nil {
			return err
		}
	}
	return nil
}

// ApplyResponseInterceptors runs the response interceptors, stopping at
// the first error.
func (c *InterceptorChain) ApplyResponseInterceptors(resp *http.Response, req *http.Request) error {
	for _, i := range c.response {
		if err := i(resp, req); err != nil {
			return err
		}
	}
	return nil
}

// HeaderInterceptor applies hs to every request with SetHeader semantics:
// valued headers replace, unset headers remove.
func HeaderInterceptor(hs ...Header) RequestInterceptor {
	return func(req *http.Request) error {
		SetHeaders(req, hs...)
		return nil
	}
}

// AuthBearerInterceptor sets "Authorization: Bearer <token>".
func AuthBearerInterceptor(token string) RequestInterceptor {
	return HeaderInterceptor(NewHeader("Authorization", "Bearer "+token))
}

// AuthBearerFuncInterceptor is AuthBearerInterceptor with the token fetched
// per request, for tokens that rotate.
func AuthBearerFuncInterceptor(tokenFunc func() (string, error)) RequestInterceptor {
	return func(req *http.Request) error {
		token, err := tokenFunc()
		if err != nil {
			return err
		}
		SetHeader(req, NewHeader("Authorization", "Bearer "+token))
		return nil
	}
}

// APIKeyInterceptor sets headerName to apiKey.
func APIKeyInterceptor(headerName, apiKey string) RequestInterceptor {
	return HeaderInterceptor(NewHeader(headerName, apiKey))
}

// UserAgentInterceptor sets the User-Agent header.
func UserAgentInterceptor(userAgent string) RequestInterceptor {
	return HeaderInterceptor(NewHeader("User-Agent", userAgent))
}

// CorrelationIDInterceptor sets headerName to a fresh ID on every request
// that does not carry one already. An empty headerName means
// DefaultCorrelationIDHeader and a nil idFunc generates random UUIDs.
func CorrelationIDInterceptor(headerName string, idFunc func() string) RequestInterceptor {
	if headerName == "" {
		headerName = DefaultCorrelationIDHeader
	}
	if idFunc == nil {
		idFunc = uuid.NewString
	}
	return func(req *http.Request) error {
		if req.Header.Get(headerName) == "" {
			SetHeader(req, NewHeader(headerName, idFunc()))
		}
		return nil
	}
}
