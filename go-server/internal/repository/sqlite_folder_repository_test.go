package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fonsecaaso/linkvault/go-server/internal/model"
)

func TestSQLiteFolderRepository_DeleteDetachesLinks(t *testing.T) {
	links, folders := newTestRepos(t)
	ctx := context.Background()

	work := mustCreateFolder(t, folders, alice, "Work")
	other := mustCreateFolder(t, folders, alice, "Other")

	const n = 3
	var filed []*model.Link
	for i := 0; i < n; i++ {
		filed = append(filed, mustCreateLink(t, links, alice, model.NewLink{
			URL: "https://example.com", Title: "filed", FolderID: &work.ID,
		}))
	}
	keep := mustCreateLink(t, links, alice, model.NewLink{
		URL: "https://example.org", Title: "other", FolderID: &other.ID,
	})

	require.NoError(t, folders.Delete(ctx, alice, work.ID))

	_, err := folders.FindByID(ctx, alice, work.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)

	all, err := links.List(ctx, alice, model.LinkFilter{})
	require.NoError(t, err)
	assert.Len(t, all, n+1)

	for _, l := range filed {
		got, err := links.FindByID(ctx, alice, l.ID)
		require.NoError(t, err)
		assert.Nil(t, got.FolderID)
		assert.True(t, got.UpdatedAt.After(l.UpdatedAt))
	}

	untouched, err := links.FindByID(ctx, alice, keep.ID)
	require.NoError(t, err)
	require.NotNil(t, untouched.FolderID)
	assert.Equal(t, other.ID, *untouched.FolderID)
}

func TestSQLiteFolderRepository_DeleteForeignFolder(t *testing.T) {
	links, folders := newTestRepos(t)
	ctx := context.Background()

	work := mustCreateFolder(t, folders, alice, "Work")
	filed := mustCreateLink(t, links, alice, model.NewLink{URL: "https://go.dev", Title: "Go", FolderID: &work.ID})

	assert.ErrorIs(t, folders.Delete(ctx, bob, work.ID), ErrFolderNotFound)

	got, err := links.FindByID(ctx, alice, filed.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FolderID)
	assert.Equal(t, work.ID, *got.FolderID)
}

func TestSQLiteFolderRepository_ListOrder(t *testing.T) {
	_, folders := newTestRepos(t)
	ctx := context.Background()

	mustCreateFolder(t, folders, alice, "zeta")
	pinned := mustCreateFolder(t, folders, alice, "Pinned")
	mustCreateFolder(t, folders, alice, "alpha")
	mustCreateFolder(t, folders, bob, "bob's")

	_, err := folders.TogglePin(ctx, alice, pinned.ID)
	require.NoError(t, err)

	list, err := folders.List(ctx, alice, model.FolderFilter{})
	require.NoError(t, err)

	var names []string
	for _, f := range list {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Pinned", "alpha", "zeta"}, names)

	onlyPinned, err := folders.List(ctx, alice, model.FolderFilter{PinnedOnly: true})
	require.NoError(t, err)
	require.Len(t, onlyPinned, 1)
	assert.Equal(t, "Pinned", onlyPinned[0].Name)
}

func TestSQLiteFolderRepository_TogglePinTwice(t *testing.T) {
	_, folders := newTestRepos(t)
	ctx := context.Background()

	folder := mustCreateFolder(t, folders, alice, "Work")

	once, err := folders.TogglePin(ctx, alice, folder.ID)
	require.NoError(t, err)
	assert.True(t, once.IsPinned)

	twice, err := folders.TogglePin(ctx, alice, folder.ID)
	require.NoError(t, err)
	assert.False(t, twice.IsPinned)

	_, err = folders.TogglePin(ctx, bob, folder.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteFolderRepository_UpdateAndCount(t *testing.T) {
	links, folders := newTestRepos(t)
	ctx := context.Background()

	folder := mustCreateFolder(t, folders, alice, "Work")
	mustCreateLink(t, links, alice, model.NewLink{URL: "https://a.example", Title: "a", FolderID: &folder.ID})
	mustCreateLink(t, links, alice, model.NewLink{URL: "https://b.example", Title: "b", FolderID: &folder.ID})
	mustCreateLink(t, links, alice, model.NewLink{URL: "https://c.example", Title: "c"})

	name := "Projects"
	pinned := true
	updated, err := folders.Update(ctx, alice, folder.ID, model.FolderPatch{Name: &name, IsPinned: &pinned})
	require.NoError(t, err)
	assert.Equal(t, "Projects", updated.Name)
	assert.True(t, updated.IsPinned)
	assert.True(t, updated.UpdatedAt.After(folder.UpdatedAt))

	withCount, err := folders.FindWithLinkCount(ctx, alice, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, withCount.LinkCount)
	assert.Equal(t, "Projects", withCount.Name)

	_, err = folders.FindWithLinkCount(ctx, bob, folder.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)

	_, err = folders.Update(ctx, bob, folder.ID, model.FolderPatch{Name: &name})
	assert.ErrorIs(t, err, ErrFolderNotFound)
}
