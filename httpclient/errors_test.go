package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "given empty path, then describes empty path",
			err:  ErrEmptyPath,
			want: "string path is empty",
		},
		{
			name: "given invalid path, then includes the path",
			err:  invalidPathError("not a url"),
			want: "invalid path for URL: not a url",
		},
		{
			name: "given empty data, then describes missing body",
			err:  ErrEmptyData,
			want: "there is no data in the server response",
		},
		{
			name: "given unknown response, then describes unrecognized response",
			err:  ErrUnknownResponse,
			want: "server response was not recognized",
		},
		{
			name: "given unsuccessful status, then includes localized status code",
			err: unsuccessfulStatusError(&DataResponse{
				Data:     []byte{},
				Response: NewHTTPMetadata(http.StatusNotFound, "https://example.com/", nil),
			}),
			want: "unsuccessful HTTP status code: 404 - Not Found",
		},
		{
			name: "given unregistered status code, then falls back to status class",
			err: unsuccessfulStatusError(&DataResponse{
				Data:     []byte{},
				Response: NewHTTPMetadata(599, "https://example.com/", nil),
			}),
			want: "unsuccessful HTTP status code: 599 - server error",
		},
		{
			name: "given invalid image data, then describes unsupported data",
			err:  ErrInvalidImageData,
			want: "unsupported data for image to initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Is(t *testing.T) {
	resp := &DataResponse{
		Data:     []byte("oops"),
		Response: NewHTTPMetadata(http.StatusInternalServerError, "https://example.com/a", nil),
	}

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "given same kind sentinel, then matches",
			err:    invalidPathError("x y"),
			target: ErrInvalidPath,
			want:   true,
		},
		{
			name:   "given different kind sentinel, then does not match",
			err:    invalidPathError("x y"),
			target: ErrEmptyPath,
			want:   false,
		},
		{
			name:   "given equal payload, then matches",
			err:    invalidPathError("x y"),
			target: invalidPathError("x y"),
			want:   true,
		},
		{
			name:   "given different payload, then does not match",
			err:    invalidPathError("x y"),
			target: invalidPathError("a b"),
			want:   false,
		},
		{
			name:   "given wrapped error, then matches through the chain",
			err:    fmt.Errorf("load product: %w", unsuccessfulStatusError(resp)),
			target: ErrUnsuccessfulHTTPStatusCode,
			want:   true,
		},
		{
			name: "given equal response envelope, then matches",
			err:  unsuccessfulStatusError(resp),
			target: unsuccessfulStatusError(&DataResponse{
				Data:     []byte("oops"),
				Response: NewHTTPMetadata(http.StatusInternalServerError, "https://example.com/a", nil),
			}),
			want: true,
		},
		{
			name: "given different status in envelope, then does not match",
			err:  unsuccessfulStatusError(resp),
			target: unsuccessfulStatusError(&DataResponse{
				Data:     []byte("oops"),
				Response: NewHTTPMetadata(http.StatusBadGateway, "https://example.com/a", nil),
			}),
			want: false,
		},
		{
			name:   "given non-package error, then does not match",
			err:    errors.New("string path is empty"),
			target: ErrEmptyPath,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestAsError(t *testing.T) {
	t.Run("given wrapped package error, then extracts it", func(t *testing.T) {
		e, ok := AsError(fmt.Errorf("context: %w", invalidPathError("bad path")))
		require.True(t, ok)
		assert.Equal(t, KindInvalidPath, e.Kind)
		assert.Equal(t, "bad path", e.Path)
	})

	t.Run("given foreign error, then reports false", func(t *testing.T) {
		e, ok := AsError(errors.New("other"))
		assert.False(t, ok)
		assert.Nil(t, e)
	})
}

func TestError_UnsuccessfulResponse(t *testing.T) {
	resp := &DataResponse{Data: []byte("x"), Response: NewHTTPMetadata(http.StatusTeapot, "https://example.com/", nil)}

	assert.Same(t, resp, unsuccessfulStatusError(resp).UnsuccessfulResponse())
	assert.Nil(t, ErrEmptyData.UnsuccessfulResponse())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "empty_path", KindEmptyPath.String())
	assert.Equal(t, "unsuccessful_http_status_code", KindUnsuccessfulHTTPStatusCode.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
