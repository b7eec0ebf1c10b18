package model

import "time"

// Folder groups links. Names are not unique.
type Folder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FolderWithCount is a folder together with the number of links filed in it.
type FolderWithCount struct {
	Folder
	LinkCount int `json:"linkCount"`
}

type FolderFilter struct {
	PinnedOnly bool
}

type FolderPatch struct {
	Name     *string `json:"name"`
	IsPinned *bool   `json:"isPinned"`
}

func (p FolderPatch) IsEmpty() bool {
	return p.Name == nil && p.IsPinned == nil
}
