package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/model"
	"github.com/fonsecaaso/linkvault/go-server/internal/title"
)

// TitleFetcher is implemented by *service.TitleService.
type TitleFetcher interface {
	Resolve(ctx context.Context, rawURL string) (title.Result, error)
}

type FetchTitleRequest struct {
	URL string `json:"url"`
}

type FetchTitleResponse struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Success bool   `json:"success"`
}

type TitleHandler struct {
	titles TitleFetcher
	logger *zap.Logger
}

func NewTitleHandler(titles TitleFetcher) *TitleHandler {
	return &TitleHandler{
		titles: titles,
		logger: zap.L().With(zap.String("component", "TitleHandler")),
	}
}

// FetchTitle serves POST /api/fetch-title.
func (h *TitleHandler) FetchTitle(c *gin.Context) {
	var req FetchTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c, h.logger, err)
		return
	}

	result, err := h.titles.Resolve(c.Request.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		h.logger.Info("Title fetch failed",
			zap.String("url", req.URL),
			zap.String("kind", string(title.KindOf(err))),
			zap.Error(err))
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, FetchTitleResponse{
		Title:   result.Title,
		URL:     result.URL,
		Success: true,
	})
}

// Labels serves GET /api/labels.
func Labels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"labels": model.PredefinedLabels})
}
