package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/config"
	"github.com/fonsecaaso/linkvault/go-server/internal/logger"
	"github.com/fonsecaaso/linkvault/go-server/internal/tracing"
)

// Observability holds the logger, the otel providers and the scrape handler.
type Observability struct {
	Logger            *zap.Logger
	PrometheusHandler http.Handler

	shutdowns []namedShutdown
	status    Status
}

type namedShutdown struct {
	name string
	fn   func(context.Context) error
}

// Status tracks which components are initialized
type Status struct {
	TracingEnabled bool
	MetricsEnabled bool
	LokiEnabled    bool
}

// Setup installs the global zap logger and otel providers. OTLP export is
// only configured when an endpoint is set; the prometheus scrape handler is
// always available.
func Setup(ctx context.Context, cfg *config.Config) (*Observability, error) {
	log, logShutdown, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	zap.ReplaceGlobals(log)

	obs := &Observability{Logger: log}
	obs.status.LokiEnabled = cfg.LokiURL != ""

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	var exportClient *http.Client
	if cfg.OTLPEndpoint != "" {
		exportClient = &http.Client{
			Transport: tracing.NewLoggingTransport(log.With(zap.String("component", "OTLPExporter")), nil),
		}

		tracerShutdown, err := initTracing(ctx, res, cfg.OTLPEndpoint, exportClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
		obs.shutdowns = append(obs.shutdowns, namedShutdown{"tracer", tracerShutdown})
		obs.status.TracingEnabled = true
	}

	meterShutdown, handler, err := initMetrics(ctx, res, cfg.OTLPEndpoint, exportClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	obs.shutdowns = append(obs.shutdowns, namedShutdown{"meter", meterShutdown})
	obs.PrometheusHandler = handler
	obs.status.MetricsEnabled = true

	// Logger goes last so the other components can still log while stopping.
	obs.shutdowns = append(obs.shutdowns, namedShutdown{"logger", logShutdown})

	log.Info("Observability initialized",
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
		zap.Bool("otlp_export", cfg.OTLPEndpoint != ""),
		zap.Bool("loki", obs.status.LokiEnabled),
	)
	return obs, nil
}

func (o *Observability) Status() Status {
	return o.status
}

// Shutdown flushes every component, continuing past individual failures.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	for _, s := range o.shutdowns {
		if err := s.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", s.name, err))
		}
	}
	_ = o.Logger.Sync()
	return errors.Join(errs...)
}

func initTracing(ctx context.Context, res *resource.Resource, endpoint string, client *http.Client) (func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(otlpHostPort(endpoint)),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithHTTPClient(client),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(exporter,
		sdktrace.WithMaxExportBatchSize(512),
		sdktrace.WithMaxQueueSize(2048),
		sdktrace.WithBatchTimeout(5*time.Second),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tracerProvider)

	return tracerProvider.Shutdown, nil
}

// initMetrics registers an otel prometheus reader and, with an endpoint, an
// OTLP push reader. The returned handler serves both the promauto collectors
// and the otel instruments.
func initMetrics(ctx context.Context, res *resource.Resource, endpoint string, client *http.Client) (func(context.Context) error, http.Handler, error) {
	registry := prometheus.NewRegistry()
	prometheusExporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	opts := []metric.Option{
		metric.WithResource(res),
		metric.WithReader(prometheusExporter),
	}

	if endpoint != "" {
		otlpExporter, err := otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(otlpHostPort(endpoint)),
			otlpmetrichttp.WithInsecure(),
			otlpmetrichttp.WithHTTPClient(client),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, metric.WithReader(metric.NewPeriodicReader(otlpExporter, metric.WithInterval(30*time.Second))))
	}

	meterProvider := metric.NewMeterProvider(opts...)
	otel.SetMeterProvider(meterProvider)

	handler := promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, registry},
		promhttp.HandlerOpts{},
	)
	return meterProvider.Shutdown, handler, nil
}

// otlpHostPort reduces an endpoint to host:port. The exporters append the
// standard /v1/traces and /v1/metrics paths themselves.
func otlpHostPort(endpoint string) string {
	endpoint = strings.TrimSpace(strings.Trim(endpoint, `"`))

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if idx := strings.Index(endpoint, "/"); idx != -1 {
			return endpoint[:idx]
		}
		return endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return strings.TrimPrefix(endpoint, "http://")
	}
	return parsed.Host
}
