package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/middleware"
	"github.com/fonsecaaso/linkvault/go-server/internal/model"
)

// FolderStore is implemented by *service.FolderService.
type FolderStore interface {
	List(ctx context.Context, ownerID string, filter model.FolderFilter) ([]model.Folder, error)
	Get(ctx context.Context, ownerID string, id int64) (*model.FolderWithCount, error)
	Create(ctx context.Context, ownerID, name string) (*model.Folder, error)
	Update(ctx context.Context, ownerID string, id int64, patch model.FolderPatch) (*model.Folder, error)
	Delete(ctx context.Context, ownerID string, id int64) error
	TogglePin(ctx context.Context, ownerID string, id int64) (*model.Folder, error)
}

type CreateFolderRequest struct {
	Name string `json:"name"`
}

type FolderHandler struct {
	folders FolderStore
	logger  *zap.Logger
}

func NewFolderHandler(folders FolderStore) *FolderHandler {
	return &FolderHandler{
		folders: folders,
		logger:  zap.L().With(zap.String("component", "FolderHandler")),
	}
}

func (h *FolderHandler) List(c *gin.Context) {
	filter := model.FolderFilter{PinnedOnly: queryBool(c, "pinned")}

	folders, err := h.folders.List(c.Request.Context(), middleware.OwnerIDFromContext(c), filter)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if folders == nil {
		folders = []model.Folder{}
	}

	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

func (h *FolderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	folder, err := h.folders.Get(c.Request.Context(), middleware.OwnerIDFromContext(c), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"folder": folder})
}

func (h *FolderHandler) Create(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c, h.logger, err)
		return
	}

	folder, err := h.folders.Create(c.Request.Context(), middleware.OwnerIDFromContext(c), req.Name)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"folder": folder})
}

func (h *FolderHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch model.FolderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		invalidJSON(c, h.logger, err)
		return
	}

	folder, err := h.folders.Update(c.Request.Context(), middleware.OwnerIDFromContext(c), id, patch)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"folder": folder})
}

// Delete removes the folder. Its links survive as unfiled links.
func (h *FolderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.folders.Delete(c.Request.Context(), middleware.OwnerIDFromContext(c), id); err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Folder deleted successfully"})
}

func (h *FolderHandler) TogglePin(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	folder, err := h.folders.TogglePin(c.Request.Context(), middleware.OwnerIDFromContext(c), id)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"folder": folder, "isPinned": folder.IsPinned})
}
