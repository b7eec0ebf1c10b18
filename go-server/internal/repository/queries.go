package repository

import (
	"fmt"
	"strings"

	"github.com/fonsecaaso/linkvault/go-server/internal/database"
	"github.com/fonsecaaso/linkvault/go-server/internal/model"
)

const (
	linkColumns   = "id, url, title, label, user_id, folder_id, is_favorite, created_at, updated_at"
	folderColumns = "id, name, user_id, is_pinned, created_at, updated_at"
)

// dialect captures the SQL differences between postgres and sqlite.
type dialect struct {
	numbered bool
	likeOp   string
	// lower is the function used to case-fold text for matching and sorting.
	lower string
	// foldLike wraps both sides of a LIKE in lower.
	foldLike bool
}

var (
	postgresDialect = dialect{numbered: true, likeOp: "ILIKE", lower: "LOWER"}
	sqliteDialect   = dialect{numbered: false, likeOp: "LIKE", lower: database.LowerFunc, foldLike: true}
)

// contains returns a case-insensitive substring match of column against the
// bound LIKE pattern placeholder.
func (d dialect) contains(column, placeholder string) string {
	if d.foldLike {
		column = d.lower + "(" + column + ")"
		placeholder = d.lower + "(" + placeholder + ")"
	}
	return column + " " + d.likeOp + " " + placeholder + ` ESCAPE '\'`
}

type queryBuilder struct {
	d    dialect
	args []any
}

func newQueryBuilder(d dialect) *queryBuilder {
	return &queryBuilder{d: d}
}

// arg binds v and returns its placeholder.
func (q *queryBuilder) arg(v any) string {
	q.args = append(q.args, v)
	if q.d.numbered {
		return fmt.Sprintf("$%d", len(q.args))
	}
	return "?"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func linkOrderBy(d dialect, sortBy model.SortOrder) string {
	switch sortBy {
	case model.SortAlphabetical:
		return d.lower + "(title) ASC, id ASC"
	case model.SortFavoritesFirst:
		return "is_favorite DESC, created_at DESC, id DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

// nullableID binds a nil folder reference as SQL NULL.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func buildListLinksQuery(d dialect, ownerID string, filter model.LinkFilter) (string, []any) {
	q := newQueryBuilder(d)

	var sb strings.Builder
	sb.WriteString("SELECT " + linkColumns + " FROM links WHERE user_id = " + q.arg(ownerID))

	switch {
	case filter.Folder.AnyFolder():
		// every folder and unfiled
	case filter.Folder.Unfiled:
		sb.WriteString(" AND folder_id IS NULL")
	case filter.Folder.ID != nil:
		sb.WriteString(" AND folder_id = " + q.arg(*filter.Folder.ID))
	}

	if filter.FavoritesOnly {
		sb.WriteString(" AND is_favorite = " + q.arg(true))
	}

	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := containsPattern(term)
		fmt.Fprintf(&sb, " AND (%s OR %s OR %s)",
			d.contains("title", q.arg(pattern)),
			d.contains("url", q.arg(pattern)),
			d.contains("label", q.arg(pattern)))
	}

	sb.WriteString(" ORDER BY " + linkOrderBy(d, filter.SortBy))
	return sb.String(), q.args
}

// buildUpdateLinkQuery returns an UPDATE ... RETURNING statement for the
// fields present in patch. now is bound as the new updated_at.
func buildUpdateLinkQuery(d dialect, ownerID string, id int64, patch model.LinkPatch, now any) (string, []any) {
	q := newQueryBuilder(d)

	var sets []string
	if patch.URL != nil {
		sets = append(sets, "url = "+q.arg(*patch.URL))
	}
	if patch.Title != nil {
		sets = append(sets, "title = "+q.arg(*patch.Title))
	}
	if patch.Label != nil {
		sets = append(sets, "label = "+q.arg(*patch.Label))
	}
	if patch.FolderID.Set {
		sets = append(sets, "folder_id = "+q.arg(nullableID(patch.FolderID.ID)))
	}
	if patch.IsFavorite != nil {
		sets = append(sets, "is_favorite = "+q.arg(*patch.IsFavorite))
	}
	sets = append(sets, "updated_at = "+q.arg(now))

	query := "UPDATE links SET " + strings.Join(sets, ", ") +
		" WHERE id = " + q.arg(id) + " AND user_id = " + q.arg(ownerID) +
		" RETURNING " + linkColumns
	return query, q.args
}

func buildListFoldersQuery(d dialect, ownerID string, filter model.FolderFilter) (string, []any) {
	q := newQueryBuilder(d)

	query := "SELECT " + folderColumns + " FROM folders WHERE user_id = " + q.arg(ownerID)
	if filter.PinnedOnly {
		query += " AND is_pinned = " + q.arg(true)
	}
	query += " ORDER BY is_pinned DESC, " + d.lower + "(name) ASC, id ASC"
	return query, q.args
}

func buildUpdateFolderQuery(d dialect, ownerID string, id int64, patch model.FolderPatch, now any) (string, []any) {
	q := newQueryBuilder(d)

	var sets []string
	if patch.Name != nil {
		sets = append(sets, "name = "+q.arg(*patch.Name))
	}
	if patch.IsPinned != nil {
		sets = append(sets, "is_pinned = "+q.arg(*patch.IsPinned))
	}
	sets = append(sets, "updated_at = "+q.arg(now))

	query := "UPDATE folders SET " + strings.Join(sets, ", ") +
		" WHERE id = " + q.arg(id) + " AND user_id = " + q.arg(ownerID) +
		" RETURNING " + folderColumns
	return query, q.args
}
