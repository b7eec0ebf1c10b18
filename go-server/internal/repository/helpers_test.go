package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/database"
	"github.com/fonsecaaso/linkvault/go-server/internal/model"
)

func setupTest(t *testing.T) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
}

// newTestDB creates a migrated in-memory SQLite database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	setupTest(t)

	db, err := database.NewSQLiteClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = database.MigrateSQLite(context.Background(), db)
	require.NoError(t, err)
	return db
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestRepos(t *testing.T) (*SQLiteLinkRepository, *SQLiteFolderRepository) {
	t.Helper()
	db := newTestDB(t)
	clock := steppingClock()

	links := NewSQLiteLinkRepository(db)
	links.now = clock
	folders := NewSQLiteFolderRepository(db)
	folders.now = clock
	return links, folders
}

func mustCreateLink(t *testing.T, repo *SQLiteLinkRepository, ownerID string, link model.NewLink) *model.Link {
	t.Helper()
	created, err := repo.Create(context.Background(), ownerID, link)
	require.NoError(t, err)
	return created
}

func mustCreateFolder(t *testing.T, repo *SQLiteFolderRepository, ownerID, name string) *model.Folder {
	t.Helper()
	created, err := repo.Create(context.Background(), ownerID, name)
	require.NoError(t, err)
	return created
}

func linkTitles(links []model.Link) []string {
	titles := make([]string, 0, len(links))
	for _, l := range links {
		titles = append(titles, l.Title)
	}
	return titles
}

func int64Ptr(v int64) *int64 { return &v }
