package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
)

const unmatchedRoute = "unmatched"

// MetricsMiddleware records request metrics labelled by route template.
// Requests to the skipped route templates (health checks, the scrape
// endpoint) are passed through untouched.
func MetricsMiddleware(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.FullPath()]; ok {
			c.Next()
			return
		}

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		reqSize := requestSize(c.Request)
		cw := &countingWriter{ResponseWriter: c.Writer}
		c.Writer = cw

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.RecordHTTPMetrics(c.Request.Method, route, strconv.Itoa(cw.Status()), time.Since(start), reqSize, cw.written)
	}
}

// countingWriter tallies response body bytes.
type countingWriter struct {
	gin.ResponseWriter
	written int64
}

func (w *countingWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *countingWriter) WriteString(s string) (int, error) {
	n, err := w.ResponseWriter.WriteString(s)
	w.written += int64(n)
	return n, err
}

// requestSize approximates the wire size of r: request line, headers and
// declared body length.
func requestSize(r *http.Request) int64 {
	size := int64(len(r.Method) + len(r.URL.RequestURI()) + len(r.Proto))
	for name, values := range r.Header {
		for _, v := range values {
			size += int64(len(name) + len(v) + 4) // ": " and CRLF
		}
	}
	if r.ContentLength > 0 {
		size += r.ContentLength
	}
	return size
}
