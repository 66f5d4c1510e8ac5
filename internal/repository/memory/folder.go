package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/repositories"
)

// FolderRepository implements repositories.FolderRepository on a Store
type FolderRepository struct {
	store *Store
}

// NewFolderRepository creates a folder repository backed by store
func NewFolderRepository(store *Store) repositories.FolderRepository {
	return &FolderRepository{store: store}
}

// LockTree holds the store's structural lock until the transaction ends
func (r *FolderRepository) LockTree(ctx context.Context) error {
	t := txFromContext(ctx)
	if t == nil {
		return errors.New("lock tree: no active transaction")
	}
	if t.holdsTree {
		return nil
	}
	r.store.tree.Lock()
	t.holdsTree = true
	return nil
}

// Create inserts a new folder
func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	return r.store.write(ctx, func() (func(), error) {
		if _, exists := r.store.folders[folder.ID]; exists {
			return nil, fmt.Errorf("folder %s: %w", folder.ID, domain.ErrConflict)
		}
		if err := r.checkPathFree(folder.Path, folder.ID); err != nil {
			return nil, err
		}
		if folder.ParentID != nil {
			if _, ok := r.store.folders[*folder.ParentID]; !ok {
				return nil, fmt.Errorf("folder %s: %w", *folder.ParentID, domain.ErrParentNotFound)
			}
		}

		r.store.folders[folder.ID] = *folder
		id := folder.ID
		return func() { delete(r.store.folders, id) }, nil
	})
}

// GetByID retrieves a folder by ID
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	var (
		folder models.Folder
		ok     bool
	)
	r.store.read(func() { folder, ok = r.store.folders[id] })
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return &folder, nil
}

// GetByPath retrieves a folder by its exact path
func (r *FolderRepository) GetByPath(ctx context.Context, path string) (*models.Folder, error) {
	var found *models.Folder
	r.store.read(func() {
		for _, f := range r.store.folders {
			if f.Path == path {
				f := f
				found = &f
				return
			}
		}
	})
	if found == nil {
		return nil, fmt.Errorf("folder at %q: %w", path, domain.ErrNotFound)
	}
	return found, nil
}

// Update persists name, path and parent of a folder
func (r *FolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	return r.store.write(ctx, func() (func(), error) {
		prev, ok := r.store.folders[folder.ID]
		if !ok {
			return nil, fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
		}
		if err := r.checkPathFree(folder.Path, folder.ID); err != nil {
			return nil, err
		}
		if folder.ParentID != nil {
			if _, ok := r.store.folders[*folder.ParentID]; !ok {
				return nil, fmt.Errorf("folder %s: %w", *folder.ParentID, domain.ErrTargetNotFound)
			}
		}

		next := prev
		next.Name = folder.Name
		next.Path = folder.Path
		next.ParentID = folder.ParentID
		next.UpdatedAt = folder.UpdatedAt
		r.store.folders[folder.ID] = next
		return func() { r.store.folders[prev.ID] = prev }, nil
	})
}

// UpdatePath rewrites only the path of a folder
func (r *FolderRepository) UpdatePath(ctx context.Context, id, path string) error {
	return r.store.write(ctx, func() (func(), error) {
		prev, ok := r.store.folders[id]
		if !ok {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		if err := r.checkPathFree(path, id); err != nil {
			return nil, err
		}

		next := prev
		next.Path = path
		r.store.folders[id] = next
		return func() { r.store.folders[id] = prev }, nil
	})
}

// Delete removes a folder record. Like the foreign keys of the SQL schema it
// refuses to delete a folder that still owns files or folders.
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func() (func(), error) {
		prev, ok := r.store.folders[id]
		if !ok {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		if counts := r.countLocked(id); !counts.IsEmpty() {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotEmpty)
		}

		delete(r.store.folders, id)
		return func() { r.store.folders[id] = prev }, nil
	})
}

// ListChildren lists immediate child folders ordered by name
func (r *FolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	folders := r.filter(func(f models.Folder) bool { return sameFolder(f.ParentID, parentID) })
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, nil
}

// ListDescendants lists every folder strictly below pathPrefix, ordered by path
func (r *FolderRepository) ListDescendants(ctx context.Context, pathPrefix string) ([]models.Folder, error) {
	below := pathPrefix + "/"
	folders := r.filter(func(f models.Folder) bool { return strings.HasPrefix(f.Path, below) })
	sortByPath(folders)
	return folders, nil
}

// ListAll lists every folder ordered by path
func (r *FolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	folders := r.filter(func(models.Folder) bool { return true })
	sortByPath(folders)
	return folders, nil
}

// CountContents counts the direct files and child folders of a folder
func (r *FolderRepository) CountContents(ctx context.Context, id string) (models.FolderCounts, error) {
	var counts models.FolderCounts
	r.store.read(func() { counts = r.countLocked(id) })
	return counts, nil
}

func (r *FolderRepository) filter(keep func(models.Folder) bool) []models.Folder {
	folders := []models.Folder{}
	r.store.read(func() {
		for _, f := range r.store.folders {
			if keep(f) {
				folders = append(folders, f)
			}
		}
	})
	return folders
}

// checkPathFree must be called with the store locked
func (r *FolderRepository) checkPathFree(path, selfID string) error {
	for _, f := range r.store.folders {
		if f.Path == path && f.ID != selfID {
			return domain.NewDuplicatePathError(path, f.ID)
		}
	}
	return nil
}

// countLocked must be called with the store locked
func (r *FolderRepository) countLocked(id string) models.FolderCounts {
	var counts models.FolderCounts
	for _, f := range r.store.folders {
		if f.ParentID != nil && *f.ParentID == id {
			counts.Children++
		}
	}
	for _, f := range r.store.files {
		if f.FolderID != nil && *f.FolderID == id {
			counts.Files++
		}
	}
	return counts
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sortByPath(folders []models.Folder) {
	sort.Slice(folders, func(i, j int) bool { return folders[i].Path < folders[j].Path })
}
