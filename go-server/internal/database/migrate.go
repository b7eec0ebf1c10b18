package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

type migration struct {
	version string
	sql     string
}

func loadMigrations(dir string) ([]migration, error) {
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	migrations := make([]migration, 0, len(names))
	for _, name := range names {
		content, err := migrationsFS.ReadFile(dir + "/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		migrations = append(migrations, migration{
			version: strings.TrimSuffix(name, ".sql"),
			sql:     string(content),
		})
	}
	return migrations, nil
}

// MigratePostgres applies pending embedded migrations, each in its own transaction.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) (applied int, err error) {
	logger := zap.L().With(zap.String("component", "Migrations"), zap.String("driver", "postgres"))

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to create schema migrations table: %w", err)
	}

	migrations, err := loadMigrations("migrations/postgres")
	if err != nil {
		return 0, err
	}

	for _, m := range migrations {
		var exists bool
		if err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", m.version,
		).Scan(&exists); err != nil {
			return applied, fmt.Errorf("failed to check if migration has been applied: %w", err)
		}
		if exists {
			logger.Debug("Migration already applied", zap.String("version", m.version))
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return applied, fmt.Errorf("failed to begin transaction: %w", err)
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			tx.Rollback(ctx)
			return applied, fmt.Errorf("failed to apply migration %s: %w", m.version, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
			tx.Rollback(ctx)
			return applied, fmt.Errorf("failed to mark migration as applied: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return applied, fmt.Errorf("failed to commit transaction: %w", err)
		}

		applied++
		logger.Info("Migration applied", zap.String("version", m.version))
	}

	return applied, nil
}

// MigrateSQLite applies pending embedded migrations, each in its own transaction.
func MigrateSQLite(ctx context.Context, db *sql.DB) (applied int, err error) {
	logger := zap.L().With(zap.String("component", "Migrations"), zap.String("driver", "sqlite"))

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to create schema migrations table: %w", err)
	}

	migrations, err := loadMigrations("migrations/sqlite")
	if err != nil {
		return 0, err
	}

	for _, m := range migrations {
		var exists bool
		if err := db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = ?)", m.version,
		).Scan(&exists); err != nil {
			return applied, fmt.Errorf("failed to check if migration has been applied: %w", err)
		}
		if exists {
			logger.Debug("Migration already applied", zap.String("version", m.version))
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("failed to begin transaction: %w", err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("failed to mark migration as applied: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("failed to commit transaction: %w", err)
		}

		applied++
		logger.Info("Migration applied", zap.String("version", m.version))
	}

	return applied, nil
}
