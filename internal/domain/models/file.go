package models

import (
	"time"
)

// File is the metadata record of an uploaded blob
type File struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	URL        string    `json:"url" db:"url"`
	StorageKey string    `json:"-" db:"storage_key"` // locator returned by the storage backend
	Size       int64     `json:"size" db:"size"`
	MimeType   string    `json:"mimeType" db:"mime_type"`
	FolderID   *string   `json:"folderId" db:"folder_id"` // NULL = root level
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// FileMoved is the payload describing a file placement change
type FileMoved struct {
	ID          string  `json:"id"`
	OldFolderID *string `json:"oldFolderId"`
	NewFolderID *string `json:"newFolderId"`
}

// Deleted is the payload of *:deleted events
type Deleted struct {
	ID string `json:"id"`
}
