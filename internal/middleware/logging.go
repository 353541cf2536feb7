package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingTransport wraps an http.RoundTripper and logs every request
type LoggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// Logging creates a transport that logs requests made through next.
// A nil next uses http.DefaultTransport.
func Logging(logger *slog.Logger, next http.RoundTripper) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &LoggingTransport{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper
func (t *LoggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(r)

	duration := time.Since(start)

	if err != nil {
		t.logger.Warn("http request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	t.logger.Debug("http request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Int64("size", resp.ContentLength),
		slog.Duration("duration", duration),
	)
	return resp, nil
}
