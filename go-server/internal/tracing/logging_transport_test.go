package tracing

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingTransport_LogsAndPreservesBodies(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Set-Cookie", "session=abc")
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer upstream.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client := &http.Client{Transport: NewLoggingTransport(zap.New(core), nil)}

	req, err := http.NewRequest(http.MethodPost, upstream.URL+"/v1/traces", strings.NewReader("payload"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("Content-Type", "application/x-protobuf")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "echo:payload", string(body))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Outbound request", entries[0].Message)
	assert.Equal(t, "Outbound response", entries[1].Message)

	reqHeaders := entries[0].ContextMap()["headers"].(map[string]interface{})
	assert.Equal(t, redacted, reqHeaders["Authorization"])
	assert.Equal(t, "application/x-protobuf", reqHeaders["Content-Type"])
	respHeaders := entries[1].ContextMap()["headers"].(map[string]interface{})
	assert.Equal(t, redacted, respHeaders["Set-Cookie"])
}

func TestLoggingTransport_ErrorStatusIsWarn(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	client := &http.Client{Transport: NewLoggingTransport(zap.New(core), http.DefaultTransport)}

	resp, err := client.Get(upstream.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(404), logs.All()[0].ContextMap()["status_code"])
}

func TestLoggingTransport_TransportError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	client := &http.Client{Transport: NewLoggingTransport(zap.New(core), nil)}

	_, err := client.Get("http://127.0.0.1:1/")
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Outbound request failed").Len())
}

func TestLoggingTransport_RedactsURLPassword(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	client := &http.Client{Transport: NewLoggingTransport(zap.New(core), nil)}

	target := strings.Replace(upstream.URL, "http://", "http://user:hunter2@", 1)
	resp, err := client.Get(target)
	require.NoError(t, err)
	resp.Body.Close()

	for _, entry := range logs.All() {
		assert.NotContains(t, entry.ContextMap()["url"], "hunter2")
	}
}

func TestSensitiveHeader(t *testing.T) {
	for _, key := range []string{"Authorization", "Cookie", "X-Auth-Token", "X-Api-Key", "Client-Secret"} {
		assert.True(t, sensitiveHeader(key), key)
	}
	assert.False(t, sensitiveHeader("Content-Type"))
	assert.False(t, sensitiveHeader("User-Agent"))
}
