package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "linkvault"

var httpLabels = []string{"method", "path", "status"}

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by route template and status.",
	}, httpLabels)

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, httpLabels)

	HTTPRequestSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_size_bytes",
		Help:      "Approximate HTTP request size.",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	HTTPResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response body size.",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, httpLabels)

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being handled.",
	})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter, by route template.",
	}, []string{"path"})

	// outcome is the resolver error kind, or "extracted" / "fallback".
	TitleResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "title",
		Name:      "resolutions_total",
		Help:      "Title resolutions by outcome.",
	}, []string{"outcome"})

	TitleFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "title",
		Name:      "fetch_duration_seconds",
		Help:      "Upstream page fetch time, including failed fetches.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	StoreOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Link and folder operations by result.",
	}, []string{"entity", "operation", "status"})

	CacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cache lookups that found an entry.",
	}, []string{"cache_type"})

	CacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cache lookups that found nothing.",
	}, []string{"cache_type"})

	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Store query latency by query type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"query_type"})

	// state is "in_use" or "idle".
	DBConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "connections",
		Help:      "Store connections by state.",
	}, []string{"state"})

	GoRoutines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "runtime",
		Name:      "goroutines",
		Help:      "Number of goroutines.",
	})

	MemoryUsage = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "runtime",
		Name:      "memory_bytes",
		Help:      "Memory statistics from runtime.MemStats.",
	}, []string{"type"})
)

// StartSystemMetricsCollection samples runtime stats, and runs every extra
// sampler, once per interval until ctx is done.
func StartSystemMetricsCollection(ctx context.Context, interval time.Duration, samplers ...func()) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			collectSystemMetrics()
			for _, sample := range samplers {
				sample()
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func collectSystemMetrics() {
	GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	for kind, v := range map[string]uint64{
		"alloc":        m.Alloc,
		"sys":          m.Sys,
		"heap_in_use":  m.HeapInuse,
		"stack_in_use": m.StackInuse,
	} {
		MemoryUsage.WithLabelValues(kind).Set(float64(v))
	}
}

// RecordHTTPMetrics records metrics for an HTTP request
func RecordHTTPMetrics(method, path, status string, duration time.Duration, requestSize, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	HTTPResponseSize.WithLabelValues(method, path, status).Observe(float64(responseSize))
}

// RecordPoolStats publishes a snapshot of the store connection pool.
func RecordPoolStats(inUse, idle int) {
	DBConnections.WithLabelValues("in_use").Set(float64(inUse))
	DBConnections.WithLabelValues("idle").Set(float64(idle))
}

// ObserveDBQuery records the time elapsed since start. Intended for defer.
func ObserveDBQuery(queryType string, start time.Time) {
	DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(start).Seconds())
}

// RecordStoreOperation counts a link or folder operation by its result.
func RecordStoreOperation(entity, operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StoreOperationsTotal.WithLabelValues(entity, operation, status).Inc()
}
