package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
	"github.com/fonsecaaso/linkvault/go-server/internal/model"
)

// PostgresFolderRepository implements FolderRepository using PostgreSQL
type PostgresFolderRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresFolderRepository(db *pgxpool.Pool) *PostgresFolderRepository {
	return &PostgresFolderRepository{
		db:     db,
		logger: zap.L().With(zap.String("component", "PostgresFolderRepository")),
	}
}

func scanPostgresFolder(row pgx.Row, extra ...any) (*model.Folder, error) {
	var folder model.Folder
	dest := append([]any{
		&folder.ID, &folder.Name, &folder.OwnerID, &folder.IsPinned, &folder.CreatedAt, &folder.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (r *PostgresFolderRepository) List(ctx context.Context, ownerID string, filter model.FolderFilter) ([]model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("list_folders", time.Now())

	query, args := buildListFoldersQuery(postgresDialect, ownerID, filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list folders", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	folders := make([]model.Folder, 0)
	for rows.Next() {
		folder, err := scanPostgresFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return folders, nil
}

func (r *PostgresFolderRepository) FindByID(ctx context.Context, ownerID string, id int64) (*model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	folder, err := scanPostgresFolder(r.db.QueryRow(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE id = $1 AND user_id = $2", id, ownerID))
	if err != nil {
		return nil, r.translate(err, "Failed to find folder", id)
	}
	return folder, nil
}

func (r *PostgresFolderRepository) FindWithLinkCount(ctx context.Context, ownerID string, id int64) (*model.FolderWithCount, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var count int
	folder, err := scanPostgresFolder(r.db.QueryRow(ctx,
		`SELECT f.id, f.name, f.user_id, f.is_pinned, f.created_at, f.updated_at,
		        (SELECT COUNT(*) FROM links l WHERE l.folder_id = f.id AND l.user_id = f.user_id)
		 FROM folders f WHERE f.id = $1 AND f.user_id = $2`, id, ownerID), &count)
	if err != nil {
		return nil, r.translate(err, "Failed to find folder", id)
	}
	return &model.FolderWithCount{Folder: *folder, LinkCount: count}, nil
}

func (r *PostgresFolderRepository) Create(ctx context.Context, ownerID, name string) (*model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	now := time.Now().UTC()
	folder, err := scanPostgresFolder(r.db.QueryRow(ctx,
		`INSERT INTO folders (name, user_id, is_pinned, created_at, updated_at)
		 VALUES ($1, $2, FALSE, $3, $3)
		 RETURNING `+folderColumns,
		name, ownerID, now,
	))
	if err != nil {
		r.logger.Error("Failed to insert folder", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	r.logger.Info("Folder created", zap.Int64("id", folder.ID), zap.String("owner_id", ownerID))
	return folder, nil
}

func (r *PostgresFolderRepository) Update(ctx context.Context, ownerID string, id int64, patch model.FolderPatch) (*model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query, args := buildUpdateFolderQuery(postgresDialect, ownerID, id, patch, time.Now().UTC())
	folder, err := scanPostgresFolder(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, r.translate(err, "Failed to update folder", id)
	}
	return folder, nil
}

func (r *PostgresFolderRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("delete_folder", time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to start transaction", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback(ctx)

	detached, err := tx.Exec(ctx,
		"UPDATE links SET folder_id = NULL, updated_at = $1 WHERE folder_id = $2 AND user_id = $3",
		time.Now().UTC(), id, ownerID)
	if err != nil {
		r.logger.Error("Failed to detach links", zap.Error(err), zap.Int64("folder_id", id))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	deleted, err := tx.Exec(ctx, "DELETE FROM folders WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete folder", zap.Error(err), zap.Int64("folder_id", id))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if deleted.RowsAffected() == 0 {
		return ErrFolderNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	r.logger.Info("Folder deleted",
		zap.Int64("folder_id", id),
		zap.Int64("links_detached", detached.RowsAffected()),
		zap.String("owner_id", ownerID))
	return nil
}

func (r *PostgresFolderRepository) TogglePin(ctx context.Context, ownerID string, id int64) (*model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	folder, err := scanPostgresFolder(r.db.QueryRow(ctx,
		`UPDATE folders SET is_pinned = NOT is_pinned, updated_at = $1
		 WHERE id = $2 AND user_id = $3
		 RETURNING `+folderColumns,
		time.Now().UTC(), id, ownerID,
	))
	if err != nil {
		return nil, r.translate(err, "Failed to toggle pin", id)
	}
	return folder, nil
}

func (r *PostgresFolderRepository) translate(err error, msg string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Debug("Folder not found", zap.Int64("id", id))
		return ErrFolderNotFound
	}
	r.logger.Error(msg, zap.Error(err), zap.Int64("id", id))
	return fmt.Errorf("%w: %v", ErrDatabaseError, err)
}
