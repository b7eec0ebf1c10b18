package logger

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// lokiLoggingTransport traces Loki pushes to a plain writer. It cannot log
// through zap, since that would feed its own output back into Loki.
type lokiLoggingTransport struct {
	base http.RoundTripper
	out  io.Writer
}

func NewLokiLoggingTransport(base http.RoundTripper, out io.Writer) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &lokiLoggingTransport{base: base, out: out}
}

func (t *lokiLoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	fmt.Fprintf(t.out, "[LOKI] push url=%s size=%d\n", req.URL.String(), req.ContentLength)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.out, "[LOKI] push failed duration=%v error=%v\n", time.Since(start), err)
		return nil, err
	}

	fmt.Fprintf(t.out, "[LOKI] response status=%d duration=%v\n", resp.StatusCode, time.Since(start))
	return resp, nil
}
