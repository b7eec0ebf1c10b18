package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/config"
	db "github.com/fonsecaaso/linkvault/go-server/internal/database"
	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
	"github.com/fonsecaaso/linkvault/go-server/internal/middleware"
	"github.com/fonsecaaso/linkvault/go-server/internal/observability"
	"github.com/fonsecaaso/linkvault/go-server/internal/repository"
	route "github.com/fonsecaaso/linkvault/go-server/internal/routes"
	"github.com/fonsecaaso/linkvault/go-server/internal/service"
	"github.com/fonsecaaso/linkvault/go-server/internal/title"
	"github.com/fonsecaaso/linkvault/go-server/internal/token"
	"github.com/fonsecaaso/linkvault/go-server/internal/tracing"
)

const (
	shutdownTimeout       = 15 * time.Second
	systemMetricsInterval = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("error loading configuration: %w", err)
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTPAddr = addr
			}
			autoMigrate, err := cmd.Flags().GetBool("migrate")
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, autoMigrate)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides HTTP_ADDR)")
	cmd.Flags().Bool("migrate", true, "Apply pending migrations before serving")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config, autoMigrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := observability.Setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("observability shutdown", zap.Error(err))
		}
	}()
	logger := obs.Logger

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	if autoMigrate {
		applied, err := st.migrate(ctx)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("migrations applied", zap.Int("count", applied))
	}

	redisClient, err := db.NewRedisClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("redis failed to initialize: %w", err)
	}
	var cache repository.TitleCache
	if redisClient != nil {
		defer redisClient.Close()
		cache = repository.NewRedisTitleCache(redisClient, cfg.TitleCacheTTL)
		logger.Info("redis connection established")
	}

	titles := service.NewTitleService(newResolver(cfg.TitleFetchTimeout, cfg.TitleMaxBodyBytes, cfg.TitleDebugTransport), cache)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer limiter.Stop()

	metrics.StartSystemMetricsCollection(ctx, systemMetricsInterval, st.poolStats)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := route.SetupRouter(route.Dependencies{
		Links:          service.NewLinkService(st.links, titles),
		Folders:        service.NewFolderService(st.folders),
		Titles:         titles,
		Tokens:         token.NewManager(cfg.JWTSecret, cfg.JWTIssuer),
		TitleLimiter:   limiter,
		MetricsHandler: obs.PrometheusHandler,
		Ping:           st.ping,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newResolver builds the title resolver, optionally logging its outbound fetches.
func newResolver(timeout time.Duration, maxBody int64, debug bool) *title.Resolver {
	opts := title.Options{Timeout: timeout, MaxBodyBytes: maxBody}
	if debug {
		opts.Transport = tracing.NewLoggingTransport(zap.L().With(zap.String("component", "TitleFetch")), nil)
	}
	return title.NewResolver(opts)
}
