package httpclient

import (
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maskedHeaders are rendered as *** in generated cURL commands.
var maskedHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie"}

// generateCurlCommand renders a cURL command equivalent to req.
//
// Example output:
//
//	curl -X POST 'https://api.example.com/users' -H 'Authorization: ***' -H 'Content-Type: application/json' -d '{"name":"John"}'
func generateCurlCommand(req *http.Request, body []byte) string {
	parts := []string{"curl"}

	if req.Method != "" && req.Method != http.MethodGet {
		parts = append(parts, "-X", req.Method)
	}

	parts = append(parts, shellQuote(redactedURL(req.URL)))

	keys := make([]string, 0, len(req.Header))
	for k := range req.Header {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		for _, v := range req.Header[k] {
			if slices.Contains(maskedHeaders, http.CanonicalHeaderKey(k)) {
				v = "***"
			}
			parts = append(parts, "-H", shellQuote(k+": "+v))
		}
	}

	if len(body) > 0 {
		parts = append(parts, "-d", shellQuote(string(body)))
	}

	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// requestBody returns a copy of req's body for logging, or nil when the
// body cannot be replayed.
func requestBody(req *http.Request) []byte {
	if req.GetBody == nil {
		return nil
	}
	rc, err := req.GetBody()
	if err != nil {
		return nil
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	return b
}

func logRequest(logger zerolog.Logger, req *http.Request, withCurl bool) {
	ev := logger.Debug().
		Str("method", req.Method).
		Str("url", redactedURL(req.URL)).
		Str("host", req.URL.Host)
	if withCurl {
		ev = ev.Str("curl", generateCurlCommand(req, requestBody(req)))
	}
	ev.Msg("HTTP request")
}

func logResponse(logger zerolog.Logger, resp *http.Response, size int, elapsed time.Duration) {
	logger.Debug().
		Int("status", resp.StatusCode).
		Str("status_text", resp.Status).
		Int("body_size", size).
		Dur("duration_ms", elapsed).
		Msg("HTTP response")
}

func logFailure(logger zerolog.Logger, req *http.Request, err error, elapsed time.Duration) {
	logger.Debug().
		Err(err).
		Str("method", req.Method).
		Str("url", redactedURL(req.URL)).
		Str("error_type", classifyError(err)).
		Dur("duration_ms", elapsed).
		Msg("HTTP request failed")
}
