package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func mustRequest(t *testing.T, path string, opts ...RequestOption) *Request {
	t.Helper()
	req, err := NewRequestFromPath(path, opts...)
	require.NoError(t, err)
	return req
}

// fetchSync runs Fetch and waits for its completion.
func fetchSync(t *testing.T, req *Request) Result[*DataResponse] {
	t.Helper()

	results := make(chan Result[*DataResponse], 1)
	task := req.Fetch(func(res Result[*DataResponse]) { results <- res })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, task.Wait(ctx))

	select {
	case res := <-results:
		return res
	case <-ctx.Done():
		t.Fatal("completion not delivered")
		return Result[*DataResponse]{}
	}
}

func TestNewRequestFromPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
		wantURL string
	}{
		{
			name:    "given whitespace only, then empty path",
			path:    "  ",
			wantErr: ErrEmptyPath,
		},
		{
			name:    "given empty string, then empty path",
			path:    "",
			wantErr: ErrEmptyPath,
		},
		{
			name:    "given text with spaces, then invalid path carrying the trimmed text",
			path:    " not a url ",
			wantErr: invalidPathError("not a url"),
		},
		{
			name:    "given host without scheme, then invalid path",
			path:    "example.com/products",
			wantErr: invalidPathError("example.com/products"),
		},
		{
			name:    "given unparseable URL, then invalid path",
			path:    "http://[::1",
			wantErr: invalidPathError("http://[::1"),
		},
		{
			name:    "given URL with surrounding whitespace, then trims it",
			path:    "\t https://dummyjson.com/products/1 \n",
			wantURL: "https://dummyjson.com/products/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequestFromPath(tt.path, WithTransport(NewMockTransport()))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, req)
				return
			}
			require.NoError(t, err)
			httpReq := req.HTTPRequest()
			assert.Equal(t, http.MethodGet, httpReq.Method)
			assert.Equal(t, tt.wantURL, httpReq.URL.String())
		})
	}
}

func TestCreateRequest(t *testing.T) {
	t.Run("given valid path, then success", func(t *testing.T) {
		res := CreateRequest("https://example.com/")
		assert.True(t, res.IsSuccess())
	})

	t.Run("given invalid path, then failure with payload", func(t *testing.T) {
		res := CreateRequest("not a url")
		e, ok := AsError(res.FailureValue())
		require.True(t, ok)
		assert.Equal(t, KindInvalidPath, e.Kind)
		assert.Equal(t, "not a url", e.Path)
	})
}

func TestNewRequest_DefaultTransport(t *testing.T) {
	req := mustRequest(t, "https://example.com/")

	assert.Same(t, Shared(), req.Transport())
}

func TestRequest_Fetch(t *testing.T) {
	ok := NewHTTPMetadata(http.StatusOK, testURL, nil)
	serverError := NewHTTPMetadata(http.StatusInternalServerError, testURL, nil)
	errTimeout := context.DeadlineExceeded

	tests := []struct {
		name     string
		data     []byte
		meta     Metadata
		err      error
		wantErr  error
		wantBody []byte
	}{
		{
			name:    "given transport timeout, then fails with the timeout error",
			err:     errTimeout,
			wantErr: errTimeout,
		},
		{
			name:    "given empty body without metadata, then unknown response",
			data:    []byte{},
			wantErr: ErrUnknownResponse,
		},
		{
			name:    "given no body with 200, then empty data",
			meta:    ok,
			wantErr: ErrEmptyData,
		},
		{
			name:    "given body with 500, then unsuccessful status carrying the envelope",
			data:    []byte("oops"),
			meta:    serverError,
			wantErr: unsuccessfulStatusError(&DataResponse{Data: []byte("oops"), Response: serverError}),
		},
		{
			name:     "given body with 200, then success",
			data:     []byte("hello"),
			meta:     ok,
			wantBody: []byte("hello"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockTransport().StubOutcome(tt.data, tt.meta, tt.err)
			req := mustRequest(t, testURL, WithTransport(mock))

			res := fetchSync(t, req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, res.FailureValue(), tt.wantErr)
				return
			}
			resp, err := res.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, resp.Data)
			assert.Equal(t, "hello", resp.String())
			assert.Equal(t, 1, mock.RequestCount())
		})
	}
}

func TestRequest_FetchJSON(t *testing.T) {
	body := `{"id":1,"title":"Essence Mascara Lash Princess","tags":["beauty","mascara"],"price":9.99}`

	t.Run("given valid JSON with 200, then parsed tree equals reference parse", func(t *testing.T) {
		mock := NewMockTransport().Inline().StubResponse(http.StatusOK, body)
		req := mustRequest(t, "https://dummyjson.com/products/1", WithTransport(mock))

		var res Result[*JSONResponse]
		req.FetchJSON(JSONOptions{}, func(r Result[*JSONResponse]) { res = r })

		got, err := res.Get()
		require.NoError(t, err)
		want, err := DecodeJSON([]byte(body), JSONOptions{}).Get()
		require.NoError(t, err)
		assert.Equal(t, want, got.JSON)
		assert.Equal(t, http.StatusOK, got.Response.StatusCode)
	})

	t.Run("given malformed JSON with 200, then decoder error", func(t *testing.T) {
		mock := NewMockTransport().Inline().StubResponse(http.StatusOK, `{"id":`)
		req := mustRequest(t, testURL, WithTransport(mock))

		var res Result[*JSONResponse]
		req.FetchJSON(JSONOptions{}, func(r Result[*JSONResponse]) { res = r })

		require.True(t, res.IsFailure())
		_, isPackageErr := AsError(res.FailureValue())
		assert.False(t, isPackageErr)
	})

	t.Run("given 404, then upstream failure passes through", func(t *testing.T) {
		mock := NewMockTransport().Inline().StubResponse(http.StatusNotFound, `{"message":"not found"}`)
		req := mustRequest(t, testURL, WithTransport(mock))

		var res Result[*JSONResponse]
		req.FetchJSON(JSONOptions{}, func(r Result[*JSONResponse]) { res = r })

		assert.ErrorIs(t, res.FailureValue(), ErrUnsuccessfulHTTPStatusCode)
	})
}

func TestFetchDecoded(t *testing.T) {
	t.Run("given JSON body, then decodes into T", func(t *testing.T) {
		mock := NewMockTransport().Inline().StubResponse(http.StatusOK, `{"id":1,"title":"Mascara","price":9.99}`)
		req := mustRequest(t, testURL, WithTransport(mock))

		var res Result[*DecodedResponse[product]]
		FetchDecoded(req, nil, func(r Result[*DecodedResponse[product]]) { res = r })

		got, err := res.Get()
		require.NoError(t, err)
		assert.Equal(t, product{ID: 1, Title: "Mascara", Price: 9.99}, got.Decoded)
	})

	t.Run("given YAML decoder, then decodes YAML body", func(t *testing.T) {
		mock := NewMockTransport().Inline().StubResponse(http.StatusOK, "id: 2\ntitle: Lipstick\n")
		req := mustRequest(t, testURL, WithTransport(mock))

		var res Result[*DecodedResponse[product]]
		FetchDecoded(req, YAMLDecoder{}, func(r Result[*DecodedResponse[product]]) { res = r })

		got, err := res.Get()
		require.NoError(t, err)
		assert.Equal(t, product{ID: 2, Title: "Lipstick"}, got.Decoded)
	})

	t.Run("given transport error, then decoder is not called", func(t *testing.T) {
		errConn := errors.New("connection refused")
		mock := NewMockTransport().Inline().StubError(errConn)
		req := mustRequest(t, testURL, WithTransport(mock))

		called := false
		decoder := DecoderFunc(func([]byte, any) error {
			called = true
			return nil
		})

		var res Result[*DecodedResponse[product]]
		FetchDecoded(req, decoder, func(r Result[*DecodedResponse[product]]) { res = r })

		assert.Same(t, errConn, res.FailureValue())
		assert.False(t, called)
	})
}

func TestRequest_Executor(t *testing.T) {
	t.Run("given executor, then every completion runs through it", func(t *testing.T) {
		var executed atomic.Int32
		exec := ExecutorFunc(func(fn func()) {
			executed.Add(1)
			fn()
		})
		mock := NewMockTransport().StubResponse(http.StatusOK, "ok")
		req := mustRequest(t, testURL, WithTransport(mock), WithExecutor(exec))

		res := fetchSync(t, req)

		require.True(t, res.IsSuccess())
		assert.Equal(t, int32(1), executed.Load())
	})

	t.Run("given serial executor, then completions run in order on one goroutine", func(t *testing.T) {
		exec := NewSerialExecutor()
		mock := NewMockTransport().Inline().StubResponse(http.StatusOK, "ok")
		req := mustRequest(t, testURL, WithTransport(mock), WithExecutor(exec))

		var (
			mu    sync.Mutex
			order []int
		)
		for i := range 10 {
			req.Fetch(func(Result[*DataResponse]) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
			})
		}
		exec.Close()

		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
	})

	t.Run("given closed executor, then completion still delivered", func(t *testing.T) {
		exec := NewSerialExecutor()
		exec.Close()
		mock := NewMockTransport().StubResponse(http.StatusOK, "ok")
		req := mustRequest(t, testURL, WithTransport(mock), WithExecutor(exec))

		res := fetchSync(t, req)

		assert.True(t, res.IsSuccess())
	})
}

func TestRequest_Headers(t *testing.T) {
	mock := NewMockTransport().Inline().StubResponse(http.StatusOK, "ok")
	req := mustRequest(t, testURL,
		WithTransport(mock),
		WithHeaders(NewHeader("Accept", "application/json"), NewHeader("X-Trace", "1")),
	)

	t.Run("given headers option, then they are sent", func(t *testing.T) {
		req.Fetch(func(Result[*DataResponse]) {})
		sent := mock.LastRequest()
		assert.Equal(t, "application/json", sent.Header.Get("Accept"))
		assert.Equal(t, "1", sent.Header.Get("X-Trace"))
	})

	t.Run("given WithHeaders on request, then returns copy and leaves original intact", func(t *testing.T) {
		derived := req.WithHeaders(UnsetHeader("X-Trace"), NewHeader("Accept", "text/html"))

		derived.Fetch(func(Result[*DataResponse]) {})
		sent := mock.LastRequest()
		assert.Equal(t, "text/html", sent.Header.Get("Accept"))
		assert.Empty(t, sent.Header.Get("X-Trace"))

		assert.Equal(t, "application/json", req.HTTPRequest().Header.Get("Accept"))
		assert.Equal(t, "1", req.HTTPRequest().Header.Get("X-Trace"))
	})

	t.Run("given mutated HTTPRequest copy, then request is unaffected", func(t *testing.T) {
		cp := req.HTTPRequest()
		cp.Header.Set("Accept", "changed")
		assert.Equal(t, "application/json", req.HTTPRequest().Header.Get("Accept"))
	})
}

func TestRequest_RepeatedFetchResendsBody(t *testing.T) {
	mock := NewMockTransport().Inline().StubResponse(http.StatusCreated, `{"id":9}`)
	httpReq, err := http.NewRequest(http.MethodPost, testURL, strings.NewReader(`{"title":"new"}`))
	require.NoError(t, err)
	req := NewRequest(httpReq, WithTransport(mock))

	for range 3 {
		var res Result[*DataResponse]
		req.Fetch(func(r Result[*DataResponse]) { res = r })

		require.True(t, res.IsSuccess())
		assert.Equal(t, `{"title":"new"}`, string(mock.LastRequestBody()))
	}
	assert.Equal(t, 3, mock.RequestCount())
}

func TestRequest_SingleUseBodyIsReplayed(t *testing.T) {
	mock := NewMockTransport().Inline().StubResponse(http.StatusCreated, "ok")
	httpReq, err := http.NewRequest(http.MethodPost, testURL, nil)
	require.NoError(t, err)
	httpReq.Body = io.NopCloser(strings.NewReader("payload"))
	require.Nil(t, httpReq.GetBody)

	req := NewRequest(httpReq, WithTransport(mock))

	for i := range 3 {
		var res Result[*DataResponse]
		req.Fetch(func(r Result[*DataResponse]) { res = r })

		require.True(t, res.IsSuccess())
		assert.Equal(t, "payload", string(mock.LastRequestBody()), "fetch %d", i)
	}
}

func TestRequest_UnreadableBody(t *testing.T) {
	errRead := errors.New("disk gone")
	httpReq, err := http.NewRequest(http.MethodPost, testURL, nil)
	require.NoError(t, err)
	httpReq.Body = io.NopCloser(iotest.ErrReader(errRead))

	mock := NewMockTransport().StubResponse(http.StatusOK, "ok")
	req := NewRequest(httpReq, WithTransport(mock))

	res := fetchSync(t, req)

	assert.ErrorIs(t, res.FailureValue(), errRead)
	assert.Zero(t, mock.RequestCount())
}

func TestNewRequest_NilRequest(t *testing.T) {
	assert.PanicsWithValue(t, "httpclient: NewRequest called with nil *http.Request", func() {
		NewRequest(nil)
	})
}

func TestRequest_GetBodyFailure(t *testing.T) {
	errRewind := errors.New("body cannot be replayed")
	httpReq, err := http.NewRequest(http.MethodPost, testURL, strings.NewReader("x"))
	require.NoError(t, err)
	httpReq.GetBody = func() (io.ReadCloser, error) { return nil, errRewind }

	mock := NewMockTransport().StubResponse(http.StatusOK, "ok")
	req := NewRequest(httpReq, WithTransport(mock))

	res := fetchSync(t, req)

	assert.Same(t, errRewind, res.FailureValue())
	assert.Zero(t, mock.RequestCount())
}

func TestRequest_Cancel(t *testing.T) {
	mock := NewMockTransport().WithLatency(time.Minute).StubResponse(http.StatusOK, "late")
	req := mustRequest(t, testURL, WithTransport(mock))

	results := make(chan Result[*DataResponse], 1)
	task := req.Fetch(func(res Result[*DataResponse]) { results <- res })
	task.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, task.Wait(ctx))

	res := <-results
	assert.ErrorIs(t, res.FailureValue(), context.Canceled)
}

func TestRequest_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := NewMockTransport().StubResponse(http.StatusOK, "ok")
	req := mustRequest(t, testURL, WithTransport(mock), WithContext(ctx))

	res := fetchSync(t, req)

	assert.ErrorIs(t, res.FailureValue(), context.Canceled)
}

func TestRequest_ConcurrentFetch(t *testing.T) {
	mock := NewMockTransport().
		StubPathRegex(`^/products/\d+$`, http.StatusOK, `{"id":1}`).
		StubResponse(http.StatusNotFound, "")
	ok := mustRequest(t, "https://dummyjson.com/products/1", WithTransport(mock))
	missing := mustRequest(t, "https://dummyjson.com/users/1", WithTransport(mock))

	var succeeded, failed atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for i := range 50 {
		req := ok
		if i%2 == 1 {
			req = missing
		}
		g.Go(func() error {
			results := make(chan Result[*DataResponse], 1)
			task := req.Fetch(func(res Result[*DataResponse]) { results <- res })
			if err := task.Wait(ctx); err != nil {
				return err
			}
			if (<-results).IsSuccess() {
				succeeded.Add(1)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, int32(25), succeeded.Load())
	assert.Equal(t, int32(25), failed.Load())
	assert.Equal(t, 50, mock.RequestCount())
}
