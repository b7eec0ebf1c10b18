package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
	"github.com/fonsecaaso/linkvault/go-server/internal/model"
	"github.com/fonsecaaso/linkvault/go-server/internal/repository"
)

var errEmptyFolderName = errors.New("folder name is required")

type FolderService struct {
	repo   repository.FolderRepository
	logger *zap.Logger
}

func NewFolderService(repo repository.FolderRepository) *FolderService {
	return &FolderService{
		repo:   repo,
		logger: zap.L().With(zap.String("component", "FolderService")),
	}
}

func (s *FolderService) List(ctx context.Context, ownerID string, filter model.FolderFilter) ([]model.Folder, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	folders, err := s.repo.List(ctx, ownerID, filter)
	metrics.RecordStoreOperation("folder", "list", err)
	return folders, err
}

// Get returns the folder with the number of links filed in it.
func (s *FolderService) Get(ctx context.Context, ownerID string, id int64) (*model.FolderWithCount, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	folder, err := s.repo.FindWithLinkCount(ctx, ownerID, id)
	metrics.RecordStoreOperation("folder", "get", err)
	return folder, err
}

func (s *FolderService) Create(ctx context.Context, ownerID, name string) (*model.Folder, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, errEmptyFolderName)
	}

	folder, err := s.repo.Create(ctx, ownerID, name)
	metrics.RecordStoreOperation("folder", "create", err)
	return folder, err
}

func (s *FolderService) Update(ctx context.Context, ownerID string, id int64, patch model.FolderPatch) (*model.Folder, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: no valid fields to update", ErrInvalidInput)
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, errEmptyFolderName)
		}
		patch.Name = &trimmed
	}

	folder, err := s.repo.Update(ctx, ownerID, id, patch)
	metrics.RecordStoreOperation("folder", "update", err)
	return folder, err
}

// Delete detaches the folder's links and removes it. No link is deleted.
func (s *FolderService) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, ownerID, id)
	metrics.RecordStoreOperation("folder", "delete", err)
	if err != nil {
		s.logger.Debug("Folder delete failed", zap.Int64("folder_id", id), zap.Error(err))
	}
	return err
}

func (s *FolderService) TogglePin(ctx context.Context, ownerID string, id int64) (*model.Folder, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	folder, err := s.repo.TogglePin(ctx, ownerID, id)
	metrics.RecordStoreOperation("folder", "toggle_pin", err)
	return folder, err
}
