package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/model"
	"github.com/fonsecaaso/linkvault/go-server/internal/title"
)

// MockLinkRepository is a mock implementation of repository.LinkRepository
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) List(ctx context.Context, ownerID string, filter model.LinkFilter) ([]model.Link, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Link), args.Error(1)
}

func (m *MockLinkRepository) FindByID(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Link), args.Error(1)
}

func (m *MockLinkRepository) Create(ctx context.Context, ownerID string, link model.NewLink) (*model.Link, error) {
	args := m.Called(ctx, ownerID, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Link), args.Error(1)
}

func (m *MockLinkRepository) Update(ctx context.Context, ownerID string, id int64, patch model.LinkPatch) (*model.Link, error) {
	args := m.Called(ctx, ownerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Link), args.Error(1)
}

func (m *MockLinkRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockLinkRepository) ToggleFavorite(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Link), args.Error(1)
}

// MockFolderRepository is a mock implementation of repository.FolderRepository
type MockFolderRepository struct {
	mock.Mock
}

func (m *MockFolderRepository) List(ctx context.Context, ownerID string, filter model.FolderFilter) ([]model.Folder, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderRepository) FindByID(ctx context.Context, ownerID string, id int64) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) FindWithLinkCount(ctx context.Context, ownerID string, id int64) (*model.FolderWithCount, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FolderWithCount), args.Error(1)
}

func (m *MockFolderRepository) Create(ctx context.Context, ownerID, name string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) Update(ctx context.Context, ownerID string, id int64, patch model.FolderPatch) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockFolderRepository) TogglePin(ctx context.Context, ownerID string, id int64) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

type MockTitleResolver struct {
	mock.Mock
}

func (m *MockTitleResolver) Resolve(ctx context.Context, rawURL string) (title.Result, error) {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(title.Result), args.Error(1)
}

type MockTitleCache struct {
	mock.Mock
}

func (m *MockTitleCache) Get(ctx context.Context, rawURL string) (string, bool, error) {
	args := m.Called(ctx, rawURL)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockTitleCache) Set(ctx context.Context, rawURL, t string) error {
	args := m.Called(ctx, rawURL, t)
	return args.Error(0)
}

type MockTitleSource struct {
	mock.Mock
}

func (m *MockTitleSource) TitleOrFallback(ctx context.Context, rawURL string) string {
	args := m.Called(ctx, rawURL)
	return args.String(0)
}

func setupTest(t *testing.T) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
}
