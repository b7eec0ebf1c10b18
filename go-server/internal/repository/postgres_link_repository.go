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

// PostgresLinkRepository implements LinkRepository using PostgreSQL
type PostgresLinkRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresLinkRepository creates a new PostgresLinkRepository
func NewPostgresLinkRepository(db *pgxpool.Pool) *PostgresLinkRepository {
	return &PostgresLinkRepository{
		db:     db,
		logger: zap.L().With(zap.String("component", "PostgresLinkRepository")),
	}
}

func scanPostgresLink(row pgx.Row) (*model.Link, error) {
	var link model.Link
	err := row.Scan(
		&link.ID, &link.URL, &link.Title, &link.Label, &link.OwnerID,
		&link.FolderID, &link.IsFavorite, &link.CreatedAt, &link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *PostgresLinkRepository) List(ctx context.Context, ownerID string, filter model.LinkFilter) ([]model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("list_links", time.Now())

	query, args := buildListLinksQuery(postgresDialect, ownerID, filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list links", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	links := make([]model.Link, 0)
	for rows.Next() {
		link, err := scanPostgresLink(rows)
		if err != nil {
			r.logger.Error("Failed to scan link", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		links = append(links, *link)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Failed to iterate links", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return links, nil
}

func (r *PostgresLinkRepository) FindByID(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	link, err := scanPostgresLink(r.db.QueryRow(ctx,
		"SELECT "+linkColumns+" FROM links WHERE id = $1 AND user_id = $2", id, ownerID))
	if err != nil {
		return nil, r.translate(err, "Failed to find link", id)
	}
	return link, nil
}

// Create inserts a link after checking that its folder, if any, belongs to the owner.
func (r *PostgresLinkRepository) Create(ctx context.Context, ownerID string, newLink model.NewLink) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("create_link", time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to start transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback(ctx)

	if newLink.FolderID != nil {
		if err := postgresFolderOwned(ctx, tx, ownerID, *newLink.FolderID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	link, err := scanPostgresLink(tx.QueryRow(ctx,
		`INSERT INTO links (url, title, label, user_id, folder_id, is_favorite, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, FALSE, $6, $6)
		 RETURNING `+linkColumns,
		newLink.URL, newLink.Title, newLink.Label, ownerID, nullableID(newLink.FolderID), now,
	))
	if err != nil {
		r.logger.Error("Failed to insert link", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	r.logger.Info("Link created", zap.Int64("id", link.ID), zap.String("owner_id", ownerID))
	return link, nil
}

func (r *PostgresLinkRepository) Update(ctx context.Context, ownerID string, id int64, patch model.LinkPatch) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	defer metrics.ObserveDBQuery("update_link", time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to start transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback(ctx)

	if patch.FolderID.Set && patch.FolderID.ID != nil {
		if err := postgresFolderOwned(ctx, tx, ownerID, *patch.FolderID.ID); err != nil {
			return nil, err
		}
	}

	query, args := buildUpdateLinkQuery(postgresDialect, ownerID, id, patch, time.Now().UTC())
	link, err := scanPostgresLink(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, r.translate(err, "Failed to update link", id)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	return link, nil
}

func (r *PostgresLinkRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, "DELETE FROM links WHERE id = $1 AND user_id = $2", id, ownerID)
	if err != nil {
		r.logger.Error("Failed to delete link", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	r.logger.Info("Link deleted", zap.Int64("id", id), zap.String("owner_id", ownerID))
	return nil
}

// ToggleFavorite flips is_favorite in a single statement.
func (r *PostgresLinkRepository) ToggleFavorite(ctx context.Context, ownerID string, id int64) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	link, err := scanPostgresLink(r.db.QueryRow(ctx,
		`UPDATE links SET is_favorite = NOT is_favorite, updated_at = $1
		 WHERE id = $2 AND user_id = $3
		 RETURNING `+linkColumns,
		time.Now().UTC(), id, ownerID,
	))
	if err != nil {
		return nil, r.translate(err, "Failed to toggle favorite", id)
	}
	return link, nil
}

func (r *PostgresLinkRepository) translate(err error, msg string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Debug("Link not found", zap.Int64("id", id))
		return ErrLinkNotFound
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	r.logger.Error(msg, zap.Error(err), zap.Int64("id", id))
	return fmt.Errorf("%w: %v", ErrDatabaseError, err)
}

func postgresFolderOwned(ctx context.Context, tx pgx.Tx, ownerID string, folderID int64) error {
	var exists bool
	err := tx.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM folders WHERE id = $1 AND user_id = $2)", folderID, ownerID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if !exists {
		return ErrFolderNotFound
	}
	return nil
}
