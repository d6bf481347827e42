package taskapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id shared with the server logs.
const RequestIDHeader = "X-Request-ID"

type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	attrs := []any{
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Duration("latency", time.Since(start)),
	}
	if err != nil {
		t.logger.Warn("task api request failed", append(attrs, slog.String("error", err.Error()))...)
		return nil, err
	}
	t.logger.Debug("task api request", append(attrs, slog.Int("status", resp.StatusCode))...)
	return resp, nil
}
