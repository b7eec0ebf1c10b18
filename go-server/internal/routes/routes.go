package route

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/handler"
	"github.com/fonsecaaso/linkvault/go-server/internal/middleware"
)

const healthTimeout = 2 * time.Second

// Dependencies are the collaborators the router is assembled from.
type Dependencies struct {
	Links   handler.LinkStore
	Folders handler.FolderStore
	Titles  handler.TitleFetcher
	Tokens  middleware.TokenValidator

	// TitleLimiter throttles /api/fetch-title per owner.
	TitleLimiter *middleware.RateLimiter

	// MetricsHandler serves /api/metrics when set.
	MetricsHandler http.Handler

	// Ping reports storage health for /health when set.
	Ping func(ctx context.Context) error

	AllowedOrigins []string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.MetricsMiddleware("/health", "/api/metrics"))
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	r.GET("/health", healthHandler(deps.Ping))
	if deps.MetricsHandler != nil {
		r.GET("/api/metrics", gin.WrapH(deps.MetricsHandler))
	}

	links := handler.NewLinkHandler(deps.Links)
	folders := handler.NewFolderHandler(deps.Folders)
	titles := handler.NewTitleHandler(deps.Titles)

	api := r.Group("/api", middleware.AuthMiddleware(deps.Tokens))
	{
		fetchTitle := []gin.HandlerFunc{titles.FetchTitle}
		if deps.TitleLimiter != nil {
			fetchTitle = append([]gin.HandlerFunc{deps.TitleLimiter.Middleware()}, fetchTitle...)
		}
		api.POST("/fetch-title", fetchTitle...)
		api.GET("/labels", handler.Labels)

		api.GET("/links", links.List)
		api.POST("/links", links.Create)
		api.GET("/links/:id", links.Get)
		api.PUT("/links/:id", links.Update)
		api.DELETE("/links/:id", links.Delete)
		api.POST("/links/:id/favorite", links.ToggleFavorite)

		api.GET("/folders", folders.List)
		api.POST("/folders", folders.Create)
		api.GET("/folders/:id", folders.Get)
		api.PUT("/folders/:id", folders.Update)
		api.DELETE("/folders/:id", folders.Delete)
		api.POST("/folders/:id/pin", folders.TogglePin)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	// Credentials cannot be combined with a wildcard origin.
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				zap.L().Warn("Health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
