package httpclient

import (
	"bytes"
)

// DataResponse pairs a raw response body with the metadata of the HTTP
// response that carried it.
//
// Example usage:
//
//	req.Fetch(func(res httpclient.Result[*httpclient.DataResponse]) {
//	    resp, err := res.Get()
//	    if err != nil {
//	        return
//	    }
//	    fmt.Printf("%d bytes from %s\n", len(resp.Data), resp.Response.URL)
//	})
type DataResponse struct {
	// Data is the response body. It is never nil for a DataResponse
	// produced by Classify.
	Data []byte

	// Response is the HTTP metadata of the response.
	Response *HTTPMetadata
}

// String returns the body decoded as UTF-8. Invalid sequences are kept
// as-is.
func (r *DataResponse) String() string {
	return string(r.Data)
}

// StatusCode returns the HTTP status code of the response.
func (r *DataResponse) StatusCode() int {
	if r.Response == nil {
		return 0
	}
	return r.Response.StatusCode
}

// LocalizedStatusCode returns the status code with its reason phrase,
// e.g. "500 - Internal Server Error".
func (r *DataResponse) LocalizedStatusCode() string {
	if r.Response == nil {
		return ""
	}
	return r.Response.LocalizedStatusCode()
}

// Equal reports whether r and other hold the same body, status code and
// URL. Two nil responses are equal.
func (r *DataResponse) Equal(other *DataResponse) bool {
	if r == nil || other == nil {
		return r == other
	}
	if !bytes.Equal(r.Data, other.Data) {
		return false
	}
	if r.Response == nil || other.Response == nil {
		return r.Response == other.Response
	}
	if r.Response.StatusCode != other.Response.StatusCode {
		return false
	}
	return urlString(r.Response) == urlString(other.Response)
}

func urlString(m *HTTPMetadata) string {
	if m.URL == nil {
		return ""
	}
	return m.URL.String()
}

// JSONResponse pairs a parsed JSON document with the HTTP metadata.
//
// JSON holds the generic tree produced by DecodeJSON: map[string]any,
// []any, string, float64 (or json.Number), bool or nil.
type JSONResponse struct {
	JSON     any
	Response *HTTPMetadata
}

// DecodedResponse pairs a typed value decoded from the body with the HTTP
// metadata.
type DecodedResponse[T any] struct {
	Decoded  T
	Response *HTTPMetadata
}

// DecodeResponse decodes r's body into T and keeps r's metadata.
func DecodeResponse[T any](r *DataResponse, decoder Decoder) Result[*DecodedResponse[T]] {
	return FlatMap(DecodeValue[T](r.Data, decoder), func(v T) Result[*DecodedResponse[T]] {
		return Success(&DecodedResponse[T]{Decoded: v, Response: r.Response})
	})
}

// DecodeJSONResponse parses r's body as JSON and keeps r's metadata.
func DecodeJSONResponse(r *DataResponse, opts JSONOptions) Result[*JSONResponse] {
	return FlatMap(DecodeJSON(r.Data, opts), func(v any) Result[*JSONResponse] {
		return Success(&JSONResponse{JSON: v, Response: r.Response})
	})
}
