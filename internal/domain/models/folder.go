package models

import (
	"time"
)

// Folder is a node of the folder tree. Path is denormalized from the parent
// chain and only ever written by the folder service.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Path      string    `json:"path" db:"path"`
	ParentID  *string   `json:"parentId" db:"parent_id"` // NULL = root level
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top of the tree.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}

// FolderCounts holds the number of direct children of a folder
type FolderCounts struct {
	Files    int `json:"files"`
	Children int `json:"children"`
}

// IsEmpty reports whether nothing blocks deletion
func (c FolderCounts) IsEmpty() bool {
	return c.Files == 0 && c.Children == 0
}

// FolderSummary is a folder with its child counts (used in listings and events)
type FolderSummary struct {
	Folder
	Counts FolderCounts `json:"_count"`
}

// FolderDetail is a folder together with its parent and direct contents
type FolderDetail struct {
	Folder
	Parent   *Folder         `json:"parent"`
	Children []FolderSummary `json:"children"`
	Files    []File          `json:"files"`
}

// RootContents lists everything that lives at the top of the tree
type RootContents struct {
	Path    string          `json:"path"`
	Folders []FolderSummary `json:"folders"`
	Files   []File          `json:"files"`
}
