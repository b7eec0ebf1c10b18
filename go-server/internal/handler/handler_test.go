package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/middleware"
	"github.com/fonsecaaso/linkvault/go-server/internal/model"
	"github.com/fonsecaaso/linkvault/go-server/internal/title"
	"github.com/fonsecaaso/linkvault/go-server/internal/token"
)

const testOwner = "alice"

type MockLinkStore struct {
	mock.Mock
}

func (m *MockLinkStore) List(ctx context.Context, ownerID string, filter model.LinkFilter) ([]model.Link, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Link), args.Error(1)
}

func (m *MockLinkStore) Get(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Link), args.Error(1)
}

func (m *MockLinkStore) Create(ctx context.Context, ownerID string, input model.NewLink) (*model.Link, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Link), args.Error(1)
}

func (m *MockLinkStore) Update(ctx context.Context, ownerID string, id int64, patch model.LinkPatch) (*model.Link, error) {
	args := m.Called(ctx, ownerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Link), args.Error(1)
}

func (m *MockLinkStore) Delete(ctx context.Context, ownerID string, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockLinkStore) ToggleFavorite(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Link), args.Error(1)
}

type MockFolderStore struct {
	mock.Mock
}

func (m *MockFolderStore) List(ctx context.Context, ownerID string, filter model.FolderFilter) ([]model.Folder, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderStore) Get(ctx context.Context, ownerID string, id int64) (*model.FolderWithCount, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FolderWithCount), args.Error(1)
}

func (m *MockFolderStore) Create(ctx context.Context, ownerID, name string) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderStore) Update(ctx context.Context, ownerID string, id int64, patch model.FolderPatch) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderStore) Delete(ctx context.Context, ownerID string, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockFolderStore) TogglePin(ctx context.Context, ownerID string, id int64) (*model.Folder, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

type MockTitleFetcher struct {
	mock.Mock
}

func (m *MockTitleFetcher) Resolve(ctx context.Context, rawURL string) (title.Result, error) {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(title.Result), args.Error(1)
}

type testServer struct {
	router  *gin.Engine
	links   *MockLinkStore
	folders *MockFolderStore
	titles  *MockTitleFetcher
	token   string
}

func setupTest(t *testing.T) *testServer {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
	gin.SetMode(gin.TestMode)

	manager := token.NewManager("test-secret", "")
	signed, err := manager.GenerateToken(testOwner)
	require.NoError(t, err)

	s := &testServer{
		links:   new(MockLinkStore),
		folders: new(MockFolderStore),
		titles:  new(MockTitleFetcher),
		token:   signed,
	}

	lh := NewLinkHandler(s.links)
	fh := NewFolderHandler(s.folders)
	th := NewTitleHandler(s.titles)

	s.router = gin.New()
	api := s.router.Group("/api", middleware.AuthMiddleware(manager))
	api.POST("/fetch-title", th.FetchTitle)
	api.GET("/labels", Labels)
	api.GET("/links", lh.List)
	api.POST("/links", lh.Create)
	api.GET("/links/:id", lh.Get)
	api.PUT("/links/:id", lh.Update)
	api.DELETE("/links/:id", lh.Delete)
	api.POST("/links/:id/favorite", lh.ToggleFavorite)
	api.GET("/folders", fh.List)
	api.POST("/folders", fh.Create)
	api.GET("/folders/:id", fh.Get)
	api.PUT("/folders/:id", fh.Update)
	api.DELETE("/folders/:id", fh.Delete)
	api.POST("/folders/:id/pin", fh.TogglePin)
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func int64Ptr(v int64) *int64 { return &v }
