package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/repository"
	"github.com/fonsecaaso/linkvault/go-server/internal/title"
)

// TitleResolver is implemented by *title.Resolver.
type TitleResolver interface {
	Resolve(ctx context.Context, rawURL string) (title.Result, error)
}

// TitleService resolves page titles through an optional cache.
type TitleService struct {
	resolver TitleResolver
	cache    repository.TitleCache
	logger   *zap.Logger
}

// NewTitleService creates a TitleService. cache may be nil.
func NewTitleService(resolver TitleResolver, cache repository.TitleCache) *TitleService {
	return &TitleService{
		resolver: resolver,
		cache:    cache,
		logger:   zap.L().With(zap.String("component", "TitleService")),
	}
}

// Resolve validates rawURL, then serves the title from cache or the resolver.
// Only successful resolutions are cached.
func (s *TitleService) Resolve(ctx context.Context, rawURL string) (title.Result, error) {
	if _, err := title.Validate(rawURL); err != nil {
		return title.Result{}, err
	}

	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, rawURL)
		if err != nil {
			s.logger.Warn("Cache error", zap.Error(err), zap.String("url", rawURL))
		} else if found {
			return title.Result{Title: cached, URL: rawURL}, nil
		}
	}

	result, err := s.resolver.Resolve(ctx, rawURL)
	if err != nil {
		return title.Result{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rawURL, result.Title); err != nil {
			s.logger.Warn("Failed to cache title", zap.Error(err), zap.String("url", rawURL))
		}
	}
	return result, nil
}

// TitleOrFallback never fails: any resolver error degrades to the URL-derived title.
func (s *TitleService) TitleOrFallback(ctx context.Context, rawURL string) string {
	result, err := s.Resolve(ctx, rawURL)
	if err != nil {
		s.logger.Debug("Using fallback title",
			zap.String("url", rawURL),
			zap.String("kind", string(title.KindOf(err))))
		return title.FallbackTitle(rawURL)
	}
	return result.Title
}
