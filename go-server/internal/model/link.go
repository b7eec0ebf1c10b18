package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Link is a saved web link owned by a single user.
type Link struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Label      string    `json:"label"`
	OwnerID    string    `json:"ownerId"`
	FolderID   *int64    `json:"folderId"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SortOrder selects the ordering of a link listing.
type SortOrder string

const (
	SortByDate         SortOrder = "date"
	SortAlphabetical   SortOrder = "alphabetical"
	SortFavoritesFirst SortOrder = "favorites"
)

// ParseSortOrder maps a client value to a SortOrder, defaulting to date.
func ParseSortOrder(raw string) SortOrder {
	switch SortOrder(raw) {
	case SortAlphabetical:
		return SortAlphabetical
	case SortFavoritesFirst:
		return SortFavoritesFirst
	default:
		return SortByDate
	}
}

// FolderScope restricts a listing by folder membership.
//
// The zero value applies no folder restriction. Unfiled selects links with no
// folder, and a non-nil ID selects links of that folder.
type FolderScope struct {
	Unfiled bool
	ID      *int64
}

// AnyFolder reports whether the scope applies no folder restriction.
func (s FolderScope) AnyFolder() bool {
	return !s.Unfiled && s.ID == nil
}

// LinkFilter narrows a link listing.
type LinkFilter struct {
	Search        string
	Folder        FolderScope
	SortBy        SortOrder
	FavoritesOnly bool
}

// NewLink holds the fields accepted when creating a link.
type NewLink struct {
	URL      string
	Title    string
	Label    string
	FolderID *int64
}

// OptionalFolderID is a folder reference in a partial update.
//
// Set distinguishes an absent field from an explicit null: {Set: true, ID: nil}
// moves the link out of its folder.
type OptionalFolderID struct {
	Set bool
	ID  *int64
}

// UnmarshalJSON records that the field was present, including when it is null.
func (o *OptionalFolderID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.ID = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.ID = &id
	return nil
}

// LinkPatch is a partial update of a link. Nil fields are left untouched.
type LinkPatch struct {
	URL        *string          `json:"url"`
	Title      *string          `json:"title"`
	Label      *string          `json:"label"`
	FolderID   OptionalFolderID `json:"folderId"`
	IsFavorite *bool            `json:"isFavorite"`
}

// IsEmpty reports whether the patch changes nothing.
func (p LinkPatch) IsEmpty() bool {
	return p.URL == nil && p.Title == nil && p.Label == nil && !p.FolderID.Set && p.IsFavorite == nil
}
