package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/config"
	db "github.com/fonsecaaso/linkvault/go-server/internal/database"
	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
	"github.com/fonsecaaso/linkvault/go-server/internal/repository"
)

// stores bundles the repositories of the configured driver.
type stores struct {
	links     repository.LinkRepository
	folders   repository.FolderRepository
	ping      func(ctx context.Context) error
	migrate   func(ctx context.Context) (int, error)
	poolStats func() // publishes connection pool usage to metrics
	close     func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := db.NewPostgresClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("postgres failed to initialize: %w", err)
		}
		zap.L().Info("postgres connection established")
		return postgresStores(pool), nil
	case config.DriverSQLite:
		conn, err := db.NewSQLiteClient(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite failed to initialize: %w", err)
		}
		zap.L().Info("sqlite database opened", zap.String("path", cfg.SQLitePath))
		return sqliteStores(conn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

func postgresStores(pool *pgxpool.Pool) *stores {
	return &stores{
		links:   repository.NewPostgresLinkRepository(pool),
		folders: repository.NewPostgresFolderRepository(pool),
		ping:    pool.Ping,
		migrate: func(ctx context.Context) (int, error) { return db.MigratePostgres(ctx, pool) },
		poolStats: func() {
			stat := pool.Stat()
			metrics.RecordPoolStats(int(stat.AcquiredConns()), int(stat.IdleConns()))
		},
		close: pool.Close,
	}
}

func sqliteStores(conn *sql.DB) *stores {
	return &stores{
		links:   repository.NewSQLiteLinkRepository(conn),
		folders: repository.NewSQLiteFolderRepository(conn),
		ping:    conn.PingContext,
		migrate: func(ctx context.Context) (int, error) { return db.MigrateSQLite(ctx, conn) },
		poolStats: func() {
			stat := conn.Stats()
			metrics.RecordPoolStats(stat.InUse, stat.Idle)
		},
		close: func() {
			if err := conn.Close(); err != nil {
				zap.L().Warn("failed to close sqlite database", zap.Error(err))
			}
		},
	}
}
