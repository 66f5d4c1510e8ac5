package repositories

import (
	"context"

	"cloudfiles/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
// Path uniqueness is enforced by the store: Create and Update return a
// *domain.ConflictError when the path is already taken.
type FolderRepository interface {
	// LockTree takes the tree-wide structural lock for the current transaction.
	// Must be called inside TransactionManager.ExecTx.
	LockTree(ctx context.Context) error

	// Create inserts a new folder; ID and timestamps must already be set
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID (domain.ErrNotFound if absent)
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetByPath retrieves a folder by its exact path (domain.ErrNotFound if absent)
	GetByPath(ctx context.Context, path string) (*models.Folder, error)

	// Update persists name, path and parent of a folder
	Update(ctx context.Context, folder *models.Folder) error

	// UpdatePath rewrites only the path of a folder
	UpdatePath(ctx context.Context, id, path string) error

	// Delete removes a folder record
	Delete(ctx context.Context, id string) error

	// ListChildren lists immediate child folders (nil = root level), ordered by name
	ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error)

	// ListDescendants lists every folder whose path starts with prefix + "/"
	ListDescendants(ctx context.Context, pathPrefix string) ([]models.Folder, error)

	// ListAll lists every folder ordered by path
	ListAll(ctx context.Context) ([]models.Folder, error)

	// CountContents counts the direct files and child folders of a folder
	CountContents(ctx context.Context, id string) (models.FolderCounts, error)
}
