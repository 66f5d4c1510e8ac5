package services

import (
	"context"

	"cloudfiles/internal/domain/models"
)

// FolderService owns the folder tree: every path write goes through it
type FolderService interface {
	// CreateFolder creates a folder under ParentID (nil = root)
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.FolderSummary, error)

	// RenameFolder renames a folder and rewrites the paths of its descendants
	RenameFolder(ctx context.Context, id string, req *RenameFolderRequest) (*models.Folder, error)

	// MoveFolder re-parents a folder and rewrites the paths of its descendants
	MoveFolder(ctx context.Context, id string, req *MoveFolderRequest) (*models.FolderSummary, error)

	// DeleteFolder deletes a folder that owns no files and no child folders
	DeleteFolder(ctx context.Context, id string) error

	// GetFolder retrieves a single folder record
	GetFolder(ctx context.Context, id string) (*models.Folder, error)

	// GetFolderDetail retrieves a folder with its parent and direct contents
	GetFolderDetail(ctx context.Context, id string) (*models.FolderDetail, error)

	// GetFolderByPath retrieves a folder by path with its parent and direct contents
	GetFolderByPath(ctx context.Context, path string) (*models.FolderDetail, error)

	// ListChildren lists the direct child folders of parentID (nil = root)
	ListChildren(ctx context.Context, parentID *string) ([]models.FolderSummary, error)

	// ListFolders lists every folder ordered by path
	ListFolders(ctx context.Context) ([]models.FolderSummary, error)

	// GetRootContents lists the root-level folders and files
	GetRootContents(ctx context.Context) (*models.RootContents, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"` // null for root folders
}

// RenameFolderRequest represents a folder rename request
type RenameFolderRequest struct {
	Name string `json:"name"`
}

// MoveFolderRequest represents a folder move request
type MoveFolderRequest struct {
	ParentID *string `json:"parentId"` // null or absent moves to root
}
