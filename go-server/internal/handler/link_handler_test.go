package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fonsecaaso/linkvault/go-server/internal/model"
	"github.com/fonsecaaso/linkvault/go-server/internal/repository"
	"github.com/fonsecaaso/linkvault/go-server/internal/service"
	"github.com/fonsecaaso/linkvault/go-server/internal/title"
)

func TestLinkHandler_ListParsesQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		filter model.LinkFilter
	}{
		{"no filters", "", model.LinkFilter{SortBy: model.SortByDate}},
		{"unfiled", "?folderId=null", model.LinkFilter{Folder: model.FolderScope{Unfiled: true}, SortBy: model.SortByDate}},
		{"folder id", "?folderId=7", model.LinkFilter{Folder: model.FolderScope{ID: int64Ptr(7)}, SortBy: model.SortByDate}},
		{"bad folder id ignored", "?folderId=abc", model.LinkFilter{SortBy: model.SortByDate}},
		{"search and sort", "?q=go&sortBy=alphabetical", model.LinkFilter{Search: "go", SortBy: model.SortAlphabetical}},
		{"unknown sort", "?sortBy=random", model.LinkFilter{SortBy: model.SortByDate}},
		{"favorites", "?favorite=true&sortBy=favorites", model.LinkFilter{FavoritesOnly: true, SortBy: model.SortFavoritesFirst}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTest(t)
			s.links.On("List", mock.Anything, testOwner, tt.filter).Return([]model.Link{{ID: 1}}, nil)

			w := s.do(t, http.MethodGet, "/api/links"+tt.query, "")

			assert.Equal(t, http.StatusOK, w.Code)
			s.links.AssertExpectations(t)
		})
	}
}

func TestLinkHandler_ListEmptyIsArray(t *testing.T) {
	s := setupTest(t)
	s.links.On("List", mock.Anything, testOwner, mock.Anything).Return(nil, nil)

	w := s.do(t, http.MethodGet, "/api/links?q=nothing", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"links":[]}`, w.Body.String())
}

func TestLinkHandler_Create(t *testing.T) {
	s := setupTest(t)
	input := model.NewLink{URL: "go.dev", Title: "", Label: "Tools", FolderID: int64Ptr(3)}
	s.links.On("Create", mock.Anything, testOwner, input).
		Return(&model.Link{ID: 10, URL: "https://go.dev", Title: "go.dev", FolderID: int64Ptr(3)}, nil)

	w := s.do(t, http.MethodPost, "/api/links", `{"url":"go.dev","label":"Tools","folderId":3}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Link model.Link `json:"link"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(10), resp.Link.ID)
	assert.Equal(t, "https://go.dev", resp.Link.URL)
}

func TestLinkHandler_CreateErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"url":`, nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"invalid url", `{"url":""}`, fmt.Errorf("%w: url is required", service.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"unsupported scheme", `{"url":"ftp://x"}`, fmt.Errorf("%w: %w", service.ErrInvalidInput, title.ErrUnsupportedScheme), http.StatusBadRequest, "UNSUPPORTED_SCHEME"},
		{"foreign folder", `{"url":"https://go.dev","folderId":99}`, repository.ErrFolderNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"database", `{"url":"https://go.dev"}`, fmt.Errorf("%w: boom", repository.ErrDatabaseError), http.StatusInternalServerError, "DB_ERROR"},
		{"unexpected", `{"url":"https://go.dev"}`, fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTest(t)
			if tt.err != nil {
				s.links.On("Create", mock.Anything, testOwner, mock.Anything).Return(nil, tt.err)
			}

			w := s.do(t, http.MethodPost, "/api/links", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestLinkHandler_InternalErrorsAreOpaque(t *testing.T) {
	s := setupTest(t)
	s.links.On("Get", mock.Anything, testOwner, int64(1)).
		Return(nil, fmt.Errorf("%w: dial tcp 10.0.0.5:5432: refused", repository.ErrDatabaseError))

	w := s.do(t, http.MethodGet, "/api/links/1", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestLinkHandler_GetAndBadID(t *testing.T) {
	s := setupTest(t)
	s.links.On("Get", mock.Anything, testOwner, int64(4)).Return(&model.Link{ID: 4}, nil)
	s.links.On("Get", mock.Anything, testOwner, int64(5)).Return(nil, repository.ErrLinkNotFound)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/links/4", "").Code)

	w := s.do(t, http.MethodGet, "/api/links/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Link not found", decodeError(t, w).Error)

	for _, bad := range []string{"abc", "0", "-1"} {
		w := s.do(t, http.MethodGet, "/api/links/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, w).Code)
	}
}

func TestLinkHandler_UpdateDistinguishesNullFolder(t *testing.T) {
	s := setupTest(t)
	s.links.On("Update", mock.Anything, testOwner, int64(2), mock.MatchedBy(func(p model.LinkPatch) bool {
		return p.FolderID.Set && p.FolderID.ID == nil && p.Title == nil
	})).Return(&model.Link{ID: 2}, nil).Once()
	s.links.On("Update", mock.Anything, testOwner, int64(3), mock.MatchedBy(func(p model.LinkPatch) bool {
		return !p.FolderID.Set && p.Title != nil && *p.Title == "New"
	})).Return(&model.Link{ID: 3, Title: "New"}, nil).Once()

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/links/2", `{"folderId":null}`).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/links/3", `{"title":"New"}`).Code)
	s.links.AssertExpectations(t)
}

func TestLinkHandler_DeleteAndToggleFavorite(t *testing.T) {
	s := setupTest(t)
	s.links.On("Delete", mock.Anything, testOwner, int64(8)).Return(nil)
	s.links.On("ToggleFavorite", mock.Anything, testOwner, int64(9)).Return(&model.Link{ID: 9, IsFavorite: true}, nil)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/links/8", "").Code)

	w := s.do(t, http.MethodPost, "/api/links/9/favorite", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isFavorite":true`)
}

func TestLinkHandler_RequiresToken(t *testing.T) {
	s := setupTest(t)
	s.token = "garbage"

	w := s.do(t, http.MethodGet, "/api/links", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	s.links.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}
