package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/middleware"
	"github.com/fonsecaaso/linkvault/go-server/internal/model"
)

// LinkStore is the link operations the handler needs; *service.LinkService implements it.
type LinkStore interface {
	List(ctx context.Context, ownerID string, filter model.LinkFilter) ([]model.Link, error)
	Get(ctx context.Context, ownerID string, id int64) (*model.Link, error)
	Create(ctx context.Context, ownerID string, input model.NewLink) (*model.Link, error)
	Update(ctx context.Context, ownerID string, id int64, patch model.LinkPatch) (*model.Link, error)
	Delete(ctx context.Context, ownerID string, id int64) error
	ToggleFavorite(ctx context.Context, ownerID string, id int64) (*model.Link, error)
}

type CreateLinkRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Label    string `json:"label"`
	FolderID *int64 `json:"folderId"`
}

type LinkHandler struct {
	links  LinkStore
	logger *zap.Logger
}

func NewLinkHandler(links LinkStore) *LinkHandler {
	return &LinkHandler{
		links:  links,
		logger: zap.L().With(zap.String("component", "LinkHandler")),
	}
}

// List serves GET /api/links?q=&folderId=&sortBy=&favorite=
func (h *LinkHandler) List(c *gin.Context) {
	filter := model.LinkFilter{
		Search:        c.Query("q"),
		Folder:        parseFolderScope(c),
		SortBy:        model.ParseSortOrder(c.Query("sortBy")),
		FavoritesOnly: queryBool(c, "favorite"),
	}

	links, err := h.links.List(c.Request.Context(), middleware.OwnerIDFromContext(c), filter)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if links == nil {
		links = []model.Link{}
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

// parseFolderScope reads folderId: absent applies no filter, "null" selects
// unfiled links, and an unparsable value is ignored.
func parseFolderScope(c *gin.Context) model.FolderScope {
	raw, present := c.GetQuery("folderId")
	if !present {
		return model.FolderScope{}
	}
	raw = strings.TrimSpace(raw)
	if raw == "null" {
		return model.FolderScope{Unfiled: true}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return model.FolderScope{}
	}
	return model.FolderScope{ID: &id}
}

func (h *LinkHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	link, err := h.links.Get(c.Request.Context(), middleware.OwnerIDFromContext(c), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}

func (h *LinkHandler) Create(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c, h.logger, err)
		return
	}

	link, err := h.links.Create(c.Request.Context(), middleware.OwnerIDFromContext(c), model.NewLink{
		URL:      req.URL,
		Title:    req.Title,
		Label:    req.Label,
		FolderID: req.FolderID,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"link": link})
}

func (h *LinkHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch model.LinkPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		invalidJSON(c, h.logger, err)
		return
	}

	link, err := h.links.Update(c.Request.Context(), middleware.OwnerIDFromContext(c), id, patch)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}

func (h *LinkHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.links.Delete(c.Request.Context(), middleware.OwnerIDFromContext(c), id); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}

func (h *LinkHandler) ToggleFavorite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	link, err := h.links.ToggleFavorite(c.Request.Context(), middleware.OwnerIDFromContext(c), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link, "isFavorite": link.IsFavorite})
}
