package apiclient

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const errorPreviewLen = 200

// loggingTransport logs every backend call and, for failed responses, a preview
// of the error body.
type loggingTransport struct {
	base   http.RoundTripper
	logger *zap.Logger
}

// NewLoggingTransport wraps base (http.DefaultTransport when nil) with request logging.
func NewLoggingTransport(base http.RoundTripper, logger *zap.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.logger.Warn("backend request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	}

	if resp.StatusCode < 400 {
		t.logger.Debug("backend request", fields...)
		return resp, nil
	}

	if resp.Body != nil {
		head, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		// The caller reads the preview again followed by whatever was left.
		resp.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(head), resp.Body), resp.Body}
		if readErr == nil {
			fields = append(fields, zap.String("body", previewBody(head, errorPreviewLen)))
		}
	}
	t.logger.Warn("backend request returned error status", fields...)

	return resp, nil
}

// previewBody compacts whitespace and truncates to maxLen runes.
func previewBody(body []byte, maxLen int) string {
	if len(body) == 0 {
		return "(empty)"
	}

	preview := []rune(strings.Join(strings.Fields(string(body)), " "))
	if len(preview) > maxLen {
		return string(preview[:maxLen]) + "..."
	}
	return string(preview)
}
