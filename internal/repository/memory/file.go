package memory

import (
	"context"
	"fmt"
	"sort"

	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/repositories"
)

// FileRepository implements repositories.FileRepository on a Store
type FileRepository struct {
	store *Store
}

// NewFileRepository creates a file repository backed by store
func NewFileRepository(store *Store) repositories.FileRepository {
	return &FileRepository{store: store}
}

// Create inserts a new file record
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	return r.store.write(ctx, func() (func(), error) {
		if _, exists := r.store.files[file.ID]; exists {
			return nil, fmt.Errorf("file %s: %w", file.ID, domain.ErrConflict)
		}
		for _, f := range r.store.files {
			if f.StorageKey == file.StorageKey {
				return nil, fmt.Errorf("storage key %s: %w", file.StorageKey, domain.ErrConflict)
			}
		}
		if err := r.checkFolder(file.FolderID); err != nil {
			return nil, err
		}

		r.store.files[file.ID] = *file
		id := file.ID
		return func() { delete(r.store.files, id) }, nil
	})
}

// GetByID retrieves a file by ID
func (r *FileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	var (
		file models.File
		ok   bool
	)
	r.store.read(func() { file, ok = r.store.files[id] })
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return &file, nil
}

// GetByStorageKey retrieves a file by the locator of its blob
func (r *FileRepository) GetByStorageKey(ctx context.Context, key string) (*models.File, error) {
	var found *models.File
	r.store.read(func() {
		for _, f := range r.store.files {
			if f.StorageKey == key {
				f := f
				found = &f
				return
			}
		}
	})
	if found == nil {
		return nil, fmt.Errorf("file with key %s: %w", key, domain.ErrNotFound)
	}
	return found, nil
}

// UpdateFolder changes the folder a file belongs to
func (r *FileRepository) UpdateFolder(ctx context.Context, id string, folderID *string) error {
	return r.store.write(ctx, func() (func(), error) {
		prev, ok := r.store.files[id]
		if !ok {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		if err := r.checkFolder(folderID); err != nil {
			return nil, err
		}

		next := prev
		next.FolderID = folderID
		r.store.files[id] = next
		return func() { r.store.files[id] = prev }, nil
	})
}

// Delete removes a file record
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func() (func(), error) {
		prev, ok := r.store.files[id]
		if !ok {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		delete(r.store.files, id)
		return func() { r.store.files[id] = prev }, nil
	})
}

// ListByFolder lists the files directly inside a folder ordered by name
func (r *FileRepository) ListByFolder(ctx context.Context, folderID *string) ([]models.File, error) {
	files := r.filter(func(f models.File) bool { return sameFolder(f.FolderID, folderID) })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ListAll lists every file ordered by creation time
func (r *FileRepository) ListAll(ctx context.Context) ([]models.File, error) {
	files := r.filter(func(models.File) bool { return true })
	sort.Slice(files, func(i, j int) bool { return files[i].CreatedAt.Before(files[j].CreatedAt) })
	return files, nil
}

func (r *FileRepository) filter(keep func(models.File) bool) []models.File {
	files := []models.File{}
	r.store.read(func() {
		for _, f := range r.store.files {
			if keep(f) {
				files = append(files, f)
			}
		}
	})
	return files
}

// checkFolder must be called with the store locked
func (r *FileRepository) checkFolder(folderID *string) error {
	if folderID == nil {
		return nil
	}
	if _, ok := r.store.folders[*folderID]; !ok {
		return fmt.Errorf("folder %s: %w", *folderID, domain.ErrFolderNotFound)
	}
	return nil
}
