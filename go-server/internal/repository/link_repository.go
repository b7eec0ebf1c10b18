package repository

import (
	"context"

	"github.com/fonsecaaso/linkvault/go-server/internal/model"
)

// LinkRepository defines the owner-scoped link operations.
// Every method reports ErrLinkNotFound for links owned by someone else.
type LinkRepository interface {
	List(ctx context.Context, ownerID string, filter model.LinkFilter) ([]model.Link, error)
	FindByID(ctx context.Context, ownerID string, id int64) (*model.Link, error)
	Create(ctx context.Context, ownerID string, link model.NewLink) (*model.Link, error)
	Update(ctx context.Context, ownerID string, id int64, patch model.LinkPatch) (*model.Link, error)
	Delete(ctx context.Context, ownerID string, id int64) error
	ToggleFavorite(ctx context.Context, ownerID string, id int64) (*model.Link, error)
}

// FolderRepository defines the owner-scoped folder operations.
type FolderRepository interface {
	List(ctx context.Context, ownerID string, filter model.FolderFilter) ([]model.Folder, error)
	FindByID(ctx context.Context, ownerID string, id int64) (*model.Folder, error)
	FindWithLinkCount(ctx context.Context, ownerID string, id int64) (*model.FolderWithCount, error)
	Create(ctx context.Context, ownerID, name string) (*model.Folder, error)
	Update(ctx context.Context, ownerID string, id int64, patch model.FolderPatch) (*model.Folder, error)
	// Delete moves the folder's links out of it and removes the folder in one transaction.
	Delete(ctx context.Context, ownerID string, id int64) error
	TogglePin(ctx context.Context, ownerID string, id int64) (*model.Folder, error)
}
