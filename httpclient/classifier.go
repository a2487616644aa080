package httpclient

// Classify turns the raw outcome of one transport operation into a
// Result.
//
// The checks run in a fixed order and the first match wins:
//   - err != nil: failure carrying err unchanged
//   - data == nil: ErrEmptyData
//   - meta is nil or not *HTTPMetadata: ErrUnknownResponse
//   - status code outside 200-299: ErrUnsuccessfulHTTPStatusCode carrying
//     the full DataResponse
//
// Anything else is a success. Classify is pure; it performs no I/O and
// returns equal results for equal inputs.
//
// Example:
//
//	res := httpclient.Classify(body, meta, nil)
//	if e, ok := httpclient.AsError(res.FailureValue()); ok {
//	    fmt.Println(e.Kind)
//	}
func Classify(data []byte, meta Metadata, err error) Result[*DataResponse] {
	if err != nil {
		return Failure[*DataResponse](err)
	}

	if data == nil {
		return Failure[*DataResponse](ErrEmptyData)
	}

	var httpMeta *HTTPMetadata
	switch m := meta.(type) {
	case *HTTPMetadata:
		httpMeta = m
	case *OpaqueMetadata:
		return Failure[*DataResponse](ErrUnknownResponse)
	}
	if httpMeta == nil {
		return Failure[*DataResponse](ErrUnknownResponse)
	}

	resp := &DataResponse{Data: data, Response: httpMeta}
	if !isSuccessStatus(httpMeta.StatusCode) {
		return Failure[*DataResponse](unsuccessfulStatusError(resp))
	}

	return Success(resp)
}

// isSuccessStatus returns true for 2xx status codes.
func isSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}
