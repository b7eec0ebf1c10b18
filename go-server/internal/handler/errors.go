package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/middleware"
	"github.com/fonsecaaso/linkvault/go-server/internal/repository"
	"github.com/fonsecaaso/linkvault/go-server/internal/service"
	"github.com/fonsecaaso/linkvault/go-server/internal/title"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// handleError maps service, store and resolver errors onto HTTP responses.
// Internal failures are logged and answered with an opaque message.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	var upstream *title.UpstreamError

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "Unauthorized access",
			Code:  "UNAUTHORIZED",
		})
	case errors.Is(err, title.ErrUnsupportedScheme):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: title.ErrUnsupportedScheme.Error(),
			Code:  "UNSUPPORTED_SCHEME",
		})
	case errors.Is(err, title.ErrInvalidInput), errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid input",
			Code:    "INVALID_INPUT",
			Details: err.Error(),
		})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   upstream.Error(),
			Code:    "UPSTREAM_ERROR",
			Details: strconv.Itoa(upstream.StatusCode),
		})
	case errors.Is(err, title.ErrTimeout):
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: title.ErrTimeout.Error(),
			Code:  "TIMEOUT",
		})
	case errors.Is(err, title.ErrFetchFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: title.ErrFetchFailed.Error(),
			Code:  "FETCH_FAILED",
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: notFoundMessage(err),
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, repository.ErrDatabaseError):
		logger.Error("Database error", zap.Error(err), zap.String("request_id", middleware.RequestIDFromContext(c)))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Database error",
			Code:  "DB_ERROR",
		})
	default:
		logger.Error("Unexpected error", zap.Error(err), zap.String("request_id", middleware.RequestIDFromContext(c)))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrLinkNotFound):
		return "Link not found"
	case errors.Is(err, repository.ErrFolderNotFound):
		return "Folder not found"
	default:
		return "Not found"
	}
}

func invalidJSON(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("Invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request format",
		Code:    "INVALID_INPUT",
		Details: err.Error(),
	})
}

// pathID parses the :id route parameter. It writes a 400 and returns false
// when the id is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid id",
			Code:    "INVALID_INPUT",
			Details: "id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

// queryBool treats anything other than a parseable true as false.
func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
