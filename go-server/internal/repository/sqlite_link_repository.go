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

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// SQLiteLinkRepository implements LinkRepository on an embedded SQLite
// database. Timestamps are stored as unix nanoseconds.
type SQLiteLinkRepository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewSQLiteLinkRepository(db *sql.DB) *SQLiteLinkRepository {
	return &SQLiteLinkRepository{
		db:     db,
		logger: zap.L().With(zap.String("component", "SQLiteLinkRepository")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func scanSQLiteLink(row rowScanner) (*model.Link, error) {
	var (
		link      model.Link
		folderID  sql.NullInt64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&link.ID, &link.URL, &link.Title, &link.Label, &link.OwnerID,
		&folderID, &link.IsFavorite, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if folderID.Valid {
		id := folderID.Int64
		link.FolderID = &id
	}
	link.CreatedAt = time.Unix(0, createdAt).UTC()
	link.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &link, nil
}

func (r *SQLiteLinkRepository) List(ctx context.Context, ownerID string, filter model.LinkFilter) ([]model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("list_links", time.Now())

	query, args := buildListLinksQuery(sqliteDialect, ownerID, filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list links", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	links := make([]model.Link, 0)
	for rows.Next() {
		link, err := scanSQLiteLink(rows)
		if err != nil {
			r.logger.Error("Failed to scan link", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return links, nil
}

func (r *SQLiteLinkRepository) FindByID(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	link, err := scanSQLiteLink(r.db.QueryRowContext(ctx,
		"SELECT "+linkColumns+" FROM links WHERE id = ? AND user_id = ?", id, ownerID))
	if err != nil {
		return nil, r.translate(err, "Failed to find link", id)
	}
	return link, nil
}

func (r *SQLiteLinkRepository) Create(ctx context.Context, ownerID string, newLink model.NewLink) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("create_link", time.Now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to start transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if newLink.FolderID != nil {
		if err := sqliteFolderOwned(ctx, tx, ownerID, *newLink.FolderID); err != nil {
			return nil, err
		}
	}

	now := r.now().UnixNano()
	link, err := scanSQLiteLink(tx.QueryRowContext(ctx,
		`INSERT INTO links (url, title, label, user_id, folder_id, is_favorite, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		 RETURNING `+linkColumns,
		newLink.URL, newLink.Title, newLink.Label, ownerID, nullableID(newLink.FolderID), now, now,
	))
	if err != nil {
		r.logger.Error("Failed to insert link", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	r.logger.Info("Link created", zap.Int64("id", link.ID), zap.String("owner_id", ownerID))
	return link, nil
}

func (r *SQLiteLinkRepository) Update(ctx context.Context, ownerID string, id int64, patch model.LinkPatch) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("update_link", time.Now())

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to start transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if patch.FolderID.Set && patch.FolderID.ID != nil {
		if err := sqliteFolderOwned(ctx, tx, ownerID, *patch.FolderID.ID); err != nil {
			return nil, err
		}
	}

	query, args := buildUpdateLinkQuery(sqliteDialect, ownerID, id, patch, r.now().UnixNano())
	link, err := scanSQLiteLink(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, r.translate(err, "Failed to update link", id)
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return link, nil
}

func (r *SQLiteLinkRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM links WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete link", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n == 0 {
		return ErrLinkNotFound
	}

	r.logger.Info("Link deleted", zap.Int64("id", id), zap.String("owner_id", ownerID))
	return nil
}

func (r *SQLiteLinkRepository) ToggleFavorite(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	link, err := scanSQLiteLink(r.db.QueryRowContext(ctx,
		`UPDATE links SET is_favorite = NOT is_favorite, updated_at = ?
		 WHERE id = ? AND user_id = ?
		 RETURNING `+linkColumns,
		r.now().UnixNano(), id, ownerID,
	))
	if err != nil {
		return nil, r.translate(err, "Failed to toggle favorite", id)
	}
	return link, nil
}

func (r *SQLiteLinkRepository) translate(err error, msg string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Debug("Link not found", zap.Int64("id", id))
		return ErrLinkNotFound
	}
	r.logger.Error(msg, zap.Error(err), zap.Int64("id", id))
	return fmt.Errorf("%w: %v", ErrDatabaseError, err)
}

func sqliteFolderOwned(ctx context.Context, tx *sql.Tx, ownerID string, folderID int64) error {
	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM folders WHERE id = ? AND user_id = ?)", folderID, ownerID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if !exists {
		return ErrFolderNotFound
	}
	return nil
}
