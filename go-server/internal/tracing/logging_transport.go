package tracing

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redacted = "***REDACTED***"

// loggingTransport logs outbound requests and their outcome. Bodies are
// never touched, so streaming and size limits of the caller are unaffected.
type loggingTransport struct {
	base   http.RoundTripper
	logger *zap.Logger
}

// NewLoggingTransport wraps base (http.DefaultTransport when nil) with debug logging.
func NewLoggingTransport(logger *zap.Logger, base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base, logger: logger}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target := zap.String("url", req.URL.Redacted())
	t.logger.Debug("Outbound request",
		zap.String("method", req.Method),
		target,
		zap.Int64("content_length", req.ContentLength),
		zap.Object("headers", headerFields(req.Header)),
	)

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := zap.Duration("duration", time.Since(start))

	if err != nil {
		t.logger.Warn("Outbound request failed", zap.String("method", req.Method), target, elapsed, zap.Error(err))
		return nil, err
	}

	t.logger.Log(responseLevel(resp.StatusCode), "Outbound response",
		target,
		zap.Int("status_code", resp.StatusCode),
		elapsed,
		zap.Int64("content_length", resp.ContentLength),
		zap.Object("headers", headerFields(resp.Header)),
	)
	return resp, nil
}

func responseLevel(status int) zapcore.Level {
	if status >= http.StatusBadRequest {
		return zapcore.WarnLevel
	}
	return zapcore.DebugLevel
}

// headerFields logs headers as an object with credentials masked.
type headerFields http.Header

func (h headerFields) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for key, values := range h {
		if sensitiveHeader(key) {
			enc.AddString(key, redacted)
			continue
		}
		enc.AddString(key, strings.Join(values, ", "))
	}
	return nil
}

func sensitiveHeader(key string) bool {
	key = strings.ToLower(key)
	for _, marker := range []string{"authorization", "cookie", "token", "secret", "api-key"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
