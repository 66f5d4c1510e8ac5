// Package memory keeps folders and files in process memory. It backs local
// development when no DATABASE_URL is configured, and the service tests.
package memory

import (
	"context"
	"sync"

	"cloudfiles/internal/domain/models"
)

// Store holds the records shared by the memory repositories
type Store struct {
	mu      sync.RWMutex
	folders map[string]models.Folder
	files   map[string]models.File

	// tree is the structural lock taken by FolderRepository.LockTree
	tree sync.Mutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		folders: make(map[string]models.Folder),
		files:   make(map[string]models.File),
	}
}

// write applies fn under the write lock and, inside a transaction, records
// undo so a failed transaction can put the previous state back.
func (s *Store) write(ctx context.Context, fn func() (undo func(), err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	undo, err := fn()
	if err != nil {
		return err
	}
	if t := txFromContext(ctx); t != nil && undo != nil {
		t.record(undo)
	}
	return nil
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}
