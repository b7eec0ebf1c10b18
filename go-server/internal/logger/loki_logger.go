package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fonsecaaso/linkvault/go-server/config"
)

const lokiJob = "linkvault-api"

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

type lokiPushRequest struct {
	Streams []lokiStream `json:"streams"`
}

// New builds the service logger: a console core plus, when LOKI_URL is set,
// a Loki push core. The returned shutdown waits for in-flight pushes.
func New(cfg *config.Config) (*zap.Logger, func(context.Context) error, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	var consoleEncoder zapcore.Encoder
	if cfg.Environment == "development" {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level),
	}

	shutdown := func(context.Context) error { return nil }

	if cfg.LokiURL != "" {
		transport := http.DefaultTransport
		if cfg.LokiDebug {
			transport = NewLokiLoggingTransport(transport, os.Stderr)
		}
		writer := newLokiWriter(cfg.LokiURL, &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		}, map[string]string{
			"service_name": cfg.ServiceName,
			"environment":  cfg.Environment,
			"job":          lokiJob,
		})

		lokiConfig := zap.NewProductionEncoderConfig()
		lokiConfig.TimeKey = "ts"
		lokiConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(lokiConfig), writer, level))

		shutdown = writer.Shutdown
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, shutdown, nil
}

// lokiWriter pushes each encoded entry to Loki on its own goroutine.
type lokiWriter struct {
	url    string
	client *http.Client
	labels map[string]string
	wg     sync.WaitGroup
}

func newLokiWriter(url string, client *http.Client, labels map[string]string) *lokiWriter {
	return &lokiWriter{url: url, client: client, labels: labels}
}

// Write implements io.Writer. p is reused by zap after Write returns.
func (w *lokiWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)
	ts := strconv.FormatInt(time.Now().UnixNano(), 10)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.push(ts, line)
	}()
	return len(p), nil
}

func (w *lokiWriter) push(ts string, line []byte) {
	payload, err := json.Marshal(lokiPushRequest{
		Streams: []lokiStream{{
			Stream: w.streamLabels(line),
			Values: [][]string{{ts, string(bytes.TrimRight(line, "\n"))}},
		}},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal loki request: %v\n", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create loki request: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	// Loki being down must never fail a log write.
	resp, err := w.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to send log to loki: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		fmt.Fprintf(os.Stderr, "loki returned error: %d\n", resp.StatusCode)
	}
}

// streamLabels adds low-cardinality fields of the entry to the static labels.
func (w *lokiWriter) streamLabels(line []byte) map[string]string {
	labels := make(map[string]string, len(w.labels)+4)
	for k, v := range w.labels {
		labels[k] = v
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(line, &entry); err != nil {
		return labels
	}
	for _, key := range []string{"level", "method", "path"} {
		if v, ok := entry[key].(string); ok && v != "" {
			labels[key] = v
		}
	}
	if status, ok := entry["status"].(float64); ok {
		labels["status"] = strconv.Itoa(int(status))
	}
	return labels
}

func (w *lokiWriter) Sync() error {
	return nil
}

// Shutdown waits for pending pushes or until ctx is done.
func (w *lokiWriter) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
