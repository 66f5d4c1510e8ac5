package services

import (
	"context"
	"io"

	"cloudfiles/internal/domain/models"
)

// FileService owns file records and their blobs
type FileService interface {
	// UploadFile stores the blob, then records the file
	UploadFile(ctx context.Context, req *UploadFileRequest) (*models.File, error)

	// GetFile retrieves a file record
	GetFile(ctx context.Context, id string) (*models.File, error)

	// ListFiles lists the files of a folder, or every file when folderID is nil
	ListFiles(ctx context.Context, folderID *string) ([]models.File, error)

	// MoveFile places a file into another folder (nil = root)
	MoveFile(ctx context.Context, id string, req *MoveFileRequest) (*models.File, error)

	// DeleteFile removes the blob, then the record
	DeleteFile(ctx context.Context, id string) error

	// OpenFile opens the blob behind a storage key. Caller closes the reader.
	OpenFile(ctx context.Context, storageKey string, download bool) (*models.File, io.ReadCloser, error)
}

// UploadFileRequest carries an upload already parsed from the transport
type UploadFileRequest struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
	FolderID    *string
}

// MoveFileRequest represents a file move request
type MoveFileRequest struct {
	FolderID *string `json:"folderId"` // null or absent moves to root
}
