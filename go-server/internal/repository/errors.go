package repository

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrLinkNotFound   = fmt.Errorf("link %w", ErrNotFound)
	ErrFolderNotFound = fmt.Errorf("folder %w", ErrNotFound)
	ErrDatabaseError  = errors.New("database error")
	ErrCacheError     = errors.New("cache error")
)

const dbTimeout = 5 * time.Second
