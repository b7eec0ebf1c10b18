package title

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 5 * 1024 * 1024

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	accept    = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
)

// Result is a resolved title for the requested URL.
type Result struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Options struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Resolver fetches pages and extracts their titles. It is safe for concurrent use.
type Resolver struct {
	client       *http.Client
	timeout      time.Duration
	maxBodyBytes int64
	tracer       trace.Tracer
	logger       *zap.Logger
}

func NewResolver(opts Options) *Resolver {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	return &Resolver{
		client:       &http.Client{Transport: opts.Transport},
		timeout:      opts.Timeout,
		maxBodyBytes: opts.MaxBodyBytes,
		tracer:       otel.Tracer("github.com/fonsecaaso/linkvault/go-server/internal/title"),
		logger:       zap.L().With(zap.String("component", "TitleResolver")),
	}
}

// Validate checks that rawURL is an absolute http or https URL.
func Validate(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidInput)
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return nil, ErrInvalidInput
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Host == "" {
		return nil, ErrInvalidInput
	}
	return u, nil
}

// Resolve fetches rawURL once and returns its title. When the page yields no
// title, the result carries FallbackTitle(rawURL).
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (Result, error) {
	target, err := Validate(rawURL)
	if err != nil {
		metrics.TitleResolutionsTotal.WithLabelValues(string(KindOf(err))).Inc()
		return Result{}, err
	}

	ctx, span := r.tracer.Start(ctx, "title.Resolve",
		trace.WithAttributes(attribute.String("url.host", target.Host)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	doc, err := r.fetch(ctx, target.String())
	metrics.TitleFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := KindOf(err)
		metrics.TitleResolutionsTotal.WithLabelValues(string(kind)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		r.logger.Info("Title resolution failed",
			zap.String("url", rawURL),
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return Result{}, err
	}

	result := Result{Title: Extract(doc), URL: rawURL}
	outcome := "extracted"
	if result.Title == "" {
		result.Title = FallbackTitle(rawURL)
		outcome = "fallback"
	}
	metrics.TitleResolutionsTotal.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.String("title.outcome", outcome))

	r.logger.Debug("Title resolved",
		zap.String("url", rawURL),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func (r *Resolver) fetch(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Status: reasonPhrase(resp)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBodyBytes))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	var reader io.Reader = bytes.NewReader(body)
	if len(body) > 0 {
		decoded, err := charset.NewReader(reader, resp.Header.Get("Content-Type"))
		if err == nil {
			reader = decoded
		} else {
			reader = bytes.NewReader(body)
		}
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrFetchFailed, err)
}

func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
