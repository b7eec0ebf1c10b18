package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
	"github.com/fonsecaaso/linkvault/go-server/internal/model"
	"github.com/fonsecaaso/linkvault/go-server/internal/repository"
)

// TitleSource supplies a title for links created without one.
type TitleSource interface {
	TitleOrFallback(ctx context.Context, rawURL string) string
}

type LinkService struct {
	repo   repository.LinkRepository
	titles TitleSource
	logger *zap.Logger
}

// NewLinkService creates a LinkService. titles may be nil, in which case
// untitled links keep an empty title.
func NewLinkService(repo repository.LinkRepository, titles TitleSource) *LinkService {
	return &LinkService{
		repo:   repo,
		titles: titles,
		logger: zap.L().With(zap.String("component", "LinkService")),
	}
}

func (s *LinkService) List(ctx context.Context, ownerID string, filter model.LinkFilter) ([]model.Link, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	filter.SortBy = model.ParseSortOrder(string(filter.SortBy))

	links, err := s.repo.List(ctx, ownerID, filter)
	metrics.RecordStoreOperation("link", "list", err)
	return links, err
}

func (s *LinkService) Get(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	link, err := s.repo.FindByID(ctx, ownerID, id)
	metrics.RecordStoreOperation("link", "get", err)
	return link, err
}

// Create normalizes the URL and fills a missing title from the page or the URL.
func (s *LinkService) Create(ctx context.Context, ownerID string, input model.NewLink) (*model.Link, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	normalized, err := NormalizeURL(input.URL)
	if err != nil {
		return nil, err
	}
	input.URL = normalized
	input.Title = strings.TrimSpace(input.Title)
	input.Label = strings.TrimSpace(input.Label)

	if input.Title == "" && s.titles != nil {
		input.Title = s.titles.TitleOrFallback(ctx, input.URL)
		s.logger.Debug("Filled missing link title", zap.String("url", input.URL), zap.String("title", input.Title))
	}

	link, err := s.repo.Create(ctx, ownerID, input)
	metrics.RecordStoreOperation("link", "create", err)
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) Update(ctx context.Context, ownerID string, id int64, patch model.LinkPatch) (*model.Link, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: no valid fields to update", ErrInvalidInput)
	}

	if patch.URL != nil {
		normalized, err := NormalizeURL(*patch.URL)
		if err != nil {
			return nil, err
		}
		patch.URL = &normalized
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}
	if patch.Label != nil {
		trimmed := strings.TrimSpace(*patch.Label)
		patch.Label = &trimmed
	}

	link, err := s.repo.Update(ctx, ownerID, id, patch)
	metrics.RecordStoreOperation("link", "update", err)
	return link, err
}

func (s *LinkService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, ownerID, id)
	metrics.RecordStoreOperation("link", "delete", err)
	return err
}

func (s *LinkService) ToggleFavorite(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	link, err := s.repo.ToggleFavorite(ctx, ownerID, id)
	metrics.RecordStoreOperation("link", "toggle_favorite", err)
	return link, err
}
