package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
	"github.com/fonsecaaso/linkvault/go-server/internal/model"
)

type SQLiteFolderRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewSQLiteFolderRepository(db *sql.DB) *SQLiteFolderRepository {
	return &SQLiteFolderRepository{
		db:     db,
		logger: zap.L().With(zap.String("component", "SQLiteFolderRepository")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func scanSQLiteFolder(row rowScanner, extra ...any) (*model.Folder, error) {
	var (
		folder    model.Folder
		createdAt int64
		updatedAt int64
	)
	dest := append([]any{
		&folder.ID, &folder.Name, &folder.OwnerID, &folder.IsPinned, &createdAt, &updatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	folder.CreatedAt = time.Unix(0, createdAt).UTC()
	folder.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &folder, nil
}

func (r *SQLiteFolderRepository) List(ctx context.Context, ownerID string, filter model.FolderFilter) ([]model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("list_folders", time.Now())

	query, args := buildListFoldersQuery(sqliteDialect, ownerID, filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list folders", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	folders := make([]model.Folder, 0)
	for rows.Next() {
		folder, err := scanSQLiteFolder(rows)
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

func (r *SQLiteFolderRepository) FindByID(ctx context.Context, ownerID string, id int64) (*model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	folder, err := scanSQLiteFolder(r.db.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE id = ? AND user_id = ?", id, ownerID))
	if err != nil {
		return nil, r.translate(err, "Failed to find folder", id)
	}
	return folder, nil
}

func (r *SQLiteFolderRepository) FindWithLinkCount(ctx context.Context, ownerID string, id int64) (*model.FolderWithCount, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var count int
	folder, err := scanSQLiteFolder(r.db.QueryRowContext(ctx,
		`SELECT f.id, f.name, f.user_id, f.is_pinned, f.created_at, f.updated_at,
		        (SELECT COUNT(*) FROM links l WHERE l.folder_id = f.id AND l.user_id = f.user_id)
		 FROM folders f WHERE f.id = ? AND f.user_id = ?`, id, ownerID), &count)
	if err != nil {
		return nil, r.translate(err, "Failed to find folder", id)
	}
	return &model.FolderWithCount{Folder: *folder, LinkCount: count}, nil
}

func (r *SQLiteFolderRepository) Create(ctx context.Context, ownerID, name string) (*model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	now := r.now().UnixNano()
	folder, err := scanSQLiteFolder(r.db.QueryRowContext(ctx,
		`INSERT INTO folders (name, user_id, is_pinned, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?)
		 RETURNING `+folderColumns,
		name, ownerID, now, now,
	))
	if err != nil {
		r.logger.Error("Failed to insert folder", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	r.logger.Info("Folder created", zap.Int64("id", folder.ID), zap.String("owner_id", ownerID))
	return folder, nil
}

func (r *SQLiteFolderRepository) Update(ctx context.Context, ownerID string, id int64, patch model.FolderPatch) (*model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query, args := buildUpdateFolderQuery(sqliteDialect, ownerID, id, patch, r.now().UnixNano())
	folder, err := scanSQLiteFolder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, r.translate(err, "Failed to update folder", id)
	}
	return folder, nil
}

func (r *SQLiteFolderRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("delete_folder", time.Now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to start transaction", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	detached, err := tx.ExecContext(ctx,
		"UPDATE links SET folder_id = NULL, updated_at = ? WHERE folder_id = ? AND user_id = ?",
		r.now().UnixNano(), id, ownerID)
	if err != nil {
		r.logger.Error("Failed to detach links", zap.Error(err), zap.Int64("folder_id", id))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	deleted, err := tx.ExecContext(ctx, "DELETE FROM folders WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete folder", zap.Error(err), zap.Int64("folder_id", id))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, err := deleted.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n == 0 {
		return ErrFolderNotFound
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	detachedCount, _ := detached.RowsAffected()
	r.logger.Info("Folder deleted",
		zap.Int64("folder_id", id),
		zap.Int64("links_detached", detachedCount),
		zap.String("owner_id", ownerID))
	return nil
}

func (r *SQLiteFolderRepository) TogglePin(ctx context.Context, ownerID string, id int64) (*model.Folder, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	folder, err := scanSQLiteFolder(r.db.QueryRowContext(ctx,
		`UPDATE folders SET is_pinned = NOT is_pinned, updated_at = ?
		 WHERE id = ? AND user_id = ?
		 RETURNING `+folderColumns,
		r.now().UnixNano(), id, ownerID,
	))
	if err != nil {
		return nil, r.translate(err, "Failed to toggle pin", id)
	}
	return folder, nil
}

func (r *SQLiteFolderRepository) translate(err error, msg string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug("Folder not found", zap.Int64("id", id))
		return ErrFolderNotFound
	}
	r.logger.Error(msg, zap.Error(err), zap.Int64("id", id))
	return fmt.Errorf("%w: %v", ErrDatabaseError, err)
}
