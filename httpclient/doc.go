// Package httpclient is a thin asynchronous wrapper over an HTTP transport.
//
// It fetches a resource, turns the transport's raw outcome into a single
// success-or-failure Result and optionally decodes the body as JSON, an
// image or any type a Decoder understands.
//
// # Features
//
//   - Result[T]: one value carrying either a payload or an error
//   - Strict outcome classification: transport error, missing body,
//     non-HTTP response and non-2xx status are all failures
//   - Typed errors comparable with errors.Is (ErrEmptyData, ErrEmptyPath, ...)
//   - Pluggable Transport; Client is the production one, MockTransport the
//     test double
//   - Completion callbacks delivered inline or through an Executor
//   - OpenTelemetry tracing and metrics, including DNS, connect, TLS and
//     TTFB timings
//   - zerolog debug logging with optional cURL reproduction commands
//
// # Quick Start
//
//	req, err := httpclient.NewRequestFromPath("https://dummyjson.com/products/1")
//	if err != nil {
//	    return err
//	}
//
//	task := req.FetchJSON(httpclient.JSONOptions{}, func(res httpclient.Result[*httpclient.JSONResponse]) {
//	    resp, err := res.Get()
//	    if err != nil {
//	        log.Println(err)
//	        return
//	    }
//	    fmt.Println(resp.Response.StatusCode, resp.JSON)
//	})
//	_ = task.Wait(ctx)
//
// # Classification
//
// Classify applies these rules in order, and the first that applies wins:
//
//  1. a transport error fails with that error, unchanged
//  2. a nil body fails with ErrEmptyData
//  3. metadata that is not *HTTPMetadata fails with ErrUnknownResponse
//  4. a status outside 200..299 fails with an unsuccessful-status *Error
//     carrying the body and metadata
//  5. otherwise the exchange succeeds with a *DataResponse
//
// An empty but present body is a success.
//
// # Typed Decoding
//
//	type Product struct {
//	    ID    int    `json:"id"`
//	    Title string `json:"title"`
//	}
//
//	httpclient.FetchDecoded(req, httpclient.JSONDecoder{}, func(res httpclient.Result[*httpclient.DecodedResponse[Product]]) {
//	    // ...
//	})
//
// XMLDecoder and YAMLDecoder cover the other common formats; DecoderFunc
// adapts any unmarshal function.
//
// # Transport Configuration
//
//	cfg, err := httpclient.ConfigFromEnv("NETWORKER")
//	if err != nil {
//	    return err
//	}
//
//	client := httpclient.New(
//	    httpclient.WithConfig(cfg),
//	    httpclient.WithServiceName("catalog"),
//	    httpclient.WithRequestInterceptor(httpclient.CorrelationIDInterceptor("", nil)),
//	)
//	req, err := httpclient.NewRequestFromPath(url, httpclient.WithTransport(client))
//
// Without WithTransport, requests use Shared().
//
// # Images
//
// FetchImage decodes PNG, JPEG and GIF bodies. Building with the noimage
// tag removes image support; ImageSupported reports which variant is
// compiled in.
//
// # Testing
//
//	mock := httpclient.NewMockTransport().
//	    StubPath("/products/1", http.StatusOK, `{"id":1}`)
//
//	req, _ := httpclient.NewRequestFromPath(
//	    "https://api.example.com/products/1",
//	    httpclient.WithTransport(mock),
//	)
package httpclient
