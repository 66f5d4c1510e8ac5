package repositories

import (
	"context"

	"cloudfiles/internal/domain/models"
)

// FileRepository defines data access operations for file records
type FileRepository interface {
	// Create inserts a new file record; ID and CreatedAt must already be set
	Create(ctx context.Context, file *models.File) error

	// GetByID retrieves a file by ID (domain.ErrNotFound if absent)
	GetByID(ctx context.Context, id string) (*models.File, error)

	// GetByStorageKey retrieves a file by the locator of its blob
	GetByStorageKey(ctx context.Context, key string) (*models.File, error)

	// UpdateFolder changes the folder a file belongs to (nil = root)
	UpdateFolder(ctx context.Context, id string, folderID *string) error

	// Delete removes a file record
	Delete(ctx context.Context, id string) error

	// ListByFolder lists the files directly inside a folder (nil = root level), ordered by name
	ListByFolder(ctx context.Context, folderID *string) ([]models.File, error)

	// ListAll lists every file record ordered by creation time
	ListAll(ctx context.Context) ([]models.File, error)
}
