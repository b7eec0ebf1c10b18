package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/config"
)

type lokiSink struct {
	mu       sync.Mutex
	requests []lokiPushRequest
}

func (s *lokiSink) handler(w http.ResponseWriter, r *http.Request) {
	var req lokiPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *lokiSink) all() []lokiPushRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]lokiPushRequest(nil), s.requests...)
}

func testConfig(lokiURL string) *config.Config {
	return &config.Config{
		ServiceName: "linkvault",
		Environment: "test",
		LogLevel:    "info",
		LokiURL:     lokiURL,
	}
}

func TestNew_PushesToLoki(t *testing.T) {
	sink := &lokiSink{}
	server := httptest.NewServer(http.HandlerFunc(sink.handler))
	defer server.Close()

	log, shutdown, err := New(testConfig(server.URL))
	require.NoError(t, err)

	log.Info("Request completed", zap.String("method", "GET"), zap.String("path", "/api/links"), zap.Int("status", 200))
	log.Debug("below level")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))

	pushes := sink.all()
	require.Len(t, pushes, 1)
	stream := pushes[0].Streams[0]
	assert.Equal(t, map[string]string{
		"service_name": "linkvault",
		"environment":  "test",
		"job":          lokiJob,
		"level":        "info",
		"method":       "GET",
		"path":         "/api/links",
		"status":       "200",
	}, stream.Stream)
	require.Len(t, stream.Values, 1)
	assert.Contains(t, stream.Values[0][1], "Request completed")
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := testConfig("")
	cfg.LogLevel = "loud"

	_, _, err := New(cfg)
	assert.Error(t, err)
}

func TestNew_ConsoleOnly(t *testing.T) {
	log, shutdown, err := New(testConfig(""))
	require.NoError(t, err)

	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
	assert.NoError(t, shutdown(context.Background()))
}

func TestLokiWriter_CopiesBuffer(t *testing.T) {
	sink := &lokiSink{}
	server := httptest.NewServer(http.HandlerFunc(sink.handler))
	defer server.Close()

	w := newLokiWriter(server.URL, server.Client(), map[string]string{"job": lokiJob})
	buf := []byte(`{"level":"warn","msg":"first"}`)
	_, err := w.Write(buf)
	require.NoError(t, err)
	copy(buf, bytes.Repeat([]byte("x"), len(buf)))

	require.NoError(t, w.Shutdown(context.Background()))

	pushes := sink.all()
	require.Len(t, pushes, 1)
	assert.Equal(t, `{"level":"warn","msg":"first"}`, pushes[0].Streams[0].Values[0][1])
	assert.Equal(t, "warn", pushes[0].Streams[0].Stream["level"])
}

func TestLokiLoggingTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var out bytes.Buffer
	client := &http.Client{Transport: NewLokiLoggingTransport(nil, &out)}

	resp, err := client.Post(server.URL, "application/json", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Contains(t, out.String(), "[LOKI] push url="+server.URL)
	assert.Contains(t, out.String(), "status=204")
}
