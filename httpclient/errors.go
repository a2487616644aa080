package httpclient

import "errors"

// Kind identifies one failure this package raises itself. Transport and
// decoder errors are never mapped to a Kind; they are passed through as-is.
type Kind int

const (
	// KindEmptyPath means a path string was empty after trimming.
	KindEmptyPath Kind = iota + 1

	// KindInvalidPath means a path string could not be parsed as a URL.
	KindInvalidPath

	// KindEmptyData means the transport finished without error but
	// produced no body.
	KindEmptyData

	// KindUnknownResponse means the transport result was not an HTTP
	// response.
	KindUnknownResponse

	// KindUnsuccessfulHTTPStatusCode means the status code was outside
	// 200-299.
	KindUnsuccessfulHTTPStatusCode

	// KindInvalidImageData means a successful body could not be decoded as
	// an image.
	KindInvalidImageData
)

// String returns the kind's identifier.
func (k Kind) String() string {
	switch k {
	case KindEmptyPath:
		return "empty_path"
	case KindInvalidPath:
		return "invalid_path"
	case KindEmptyData:
		return "empty_data"
	case KindUnknownResponse:
		return "unknown_response"
	case KindUnsuccessfulHTTPStatusCode:
		return "unsuccessful_http_status_code"
	case KindInvalidImageData:
		return "invalid_image_data"
	default:
		return "unknown"
	}
}

// Error is a failure raised by this package.
//
// Use errors.Is with the Err* sentinels to test the kind, and AsError (or
// errors.As) to reach the payload:
//
//	_, err := res.Get()
//	if errors.Is(err, httpclient.ErrUnsuccessfulHTTPStatusCode) {
//	    e, _ := httpclient.AsError(err)
//	    log.Printf("server said %s: %s",
//	        e.Response.LocalizedStatusCode(), e.Response.String())
//	}
type Error struct {
	// Kind is the failure kind.
	Kind Kind

	// Path is the offending path string, set for KindInvalidPath.
	Path string

	// Response is the full response envelope, set for
	// KindUnsuccessfulHTTPStatusCode.
	Response *DataResponse
}

// Sentinel errors, one per Kind. They match any *Error of the same kind.
var (
	ErrEmptyPath                  = &Error{Kind: KindEmptyPath}
	ErrInvalidPath                = &Error{Kind: KindInvalidPath}
	ErrEmptyData                  = &Error{Kind: KindEmptyData}
	ErrUnknownResponse            = &Error{Kind: KindUnknownResponse}
	ErrUnsuccessfulHTTPStatusCode = &Error{Kind: KindUnsuccessfulHTTPStatusCode}
	ErrInvalidImageData           = &Error{Kind: KindInvalidImageData}
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyPath:
		return "string path is empty"
	case KindInvalidPath:
		return "invalid path for URL: " + e.Path
	case KindEmptyData:
		return "there is no data in the server response"
	case KindUnknownResponse:
		return "server response was not recognized"
	case KindUnsuccessfulHTTPStatusCode:
		if e.Response == nil || e.Response.Response == nil {
			return "unsuccessful HTTP status code"
		}
		return "unsuccessful HTTP status code: " + e.Response.LocalizedStatusCode()
	case KindInvalidImageData:
		return "unsupported data for image to initialize"
	default:
		return "httpclient: unknown error"
	}
}

// Is reports whether target is an *Error of the same kind. A target
// without payload (such as the Err* sentinels) matches on kind alone;
// otherwise the payloads must be equal too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	if t.Path == "" && t.Response == nil {
		return true
	}
	return t.Path == e.Path && t.Response.Equal(e.Response)
}

// UnsuccessfulResponse returns the envelope carried by a
// KindUnsuccessfulHTTPStatusCode error, or nil for any other kind.
func (e *Error) UnsuccessfulResponse() *DataResponse {
	if e.Kind != KindUnsuccessfulHTTPStatusCode {
		return nil
	}
	return e.Response
}

// AsError extracts the *Error from err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func invalidPathError(path string) *Error {
	return &Error{Kind: KindInvalidPath, Path: path}
}

func unsuccessfulStatusError(resp *DataResponse) *Error {
	return &Error{Kind: KindUnsuccessfulHTTPStatusCode, Response: resp}
}
