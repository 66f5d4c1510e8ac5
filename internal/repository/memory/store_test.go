package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
)

func strPtr(s string) *string { return &s }

func newFolder(id, name, path string, parentID *string) *models.Folder {
	now := time.Now()
	return &models.Folder{ID: id, Name: name, Path: path, ParentID: parentID, CreatedAt: now, UpdatedAt: now}
}

func TestFolderRepository_PathUniqueness(t *testing.T) {
	ctx := context.Background()
	folders := NewFolderRepository(NewStore())

	require.NoError(t, folders.Create(ctx, newFolder("a", "docs", "/docs", nil)))

	err := folders.Create(ctx, newFolder("b", "docs", "/docs", nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "a", conflict.ResourceID)
}

func TestFolderRepository_ListDescendantsUsesWholeSegments(t *testing.T) {
	ctx := context.Background()
	folders := NewFolderRepository(NewStore())

	require.NoError(t, folders.Create(ctx, newFolder("a", "a", "/a", nil)))
	require.NoError(t, folders.Create(ctx, newFolder("b", "b", "/a/b", strPtr("a"))))
	require.NoError(t, folders.Create(ctx, newFolder("bc", "bc", "/a/bc", strPtr("a"))))
	require.NoError(t, folders.Create(ctx, newFolder("c", "c", "/a/b/c", strPtr("b"))))

	got, err := folders.ListDescendants(ctx, "/a/b")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestFolderRepository_DeleteRefusesNonEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := NewFolderRepository(store)
	files := NewFileRepository(store)

	require.NoError(t, folders.Create(ctx, newFolder("a", "a", "/a", nil)))
	require.NoError(t, files.Create(ctx, &models.File{ID: "f1", Name: "x.txt", StorageKey: "k1", FolderID: strPtr("a")}))

	err := folders.Delete(ctx, "a")
	assert.True(t, errors.Is(err, domain.ErrNotEmpty))

	require.NoError(t, files.Delete(ctx, "f1"))
	assert.NoError(t, folders.Delete(ctx, "a"))
}

func TestFileRepository_RejectsMissingFolder(t *testing.T) {
	ctx := context.Background()
	files := NewFileRepository(NewStore())

	err := files.Create(ctx, &models.File{ID: "f1", StorageKey: "k1", FolderID: strPtr("missing")})
	assert.True(t, errors.Is(err, domain.ErrFolderNotFound))
}

func TestTransactionManager_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := NewFolderRepository(store)
	txm := NewTransactionManager(store)

	require.NoError(t, folders.Create(ctx, newFolder("a", "a", "/a", nil)))
	require.NoError(t, folders.Create(ctx, newFolder("b", "b", "/a/b", strPtr("a"))))

	boom := errors.New("boom")
	err := txm.ExecTx(ctx, func(ctx context.Context) error {
		require.NoError(t, folders.LockTree(ctx))
		require.NoError(t, folders.Update(ctx, newFolder("a", "z", "/z", nil)))
		require.NoError(t, folders.UpdatePath(ctx, "b", "/z/b"))
		require.NoError(t, folders.Create(ctx, newFolder("c", "c", "/c", nil)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := folders.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "/a", a.Path)
	assert.Equal(t, "a", a.Name)

	b, err := folders.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "/a/b", b.Path)

	_, err = folders.GetByID(ctx, "c")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTransactionManager_CommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := NewFolderRepository(store)
	txm := NewTransactionManager(store)

	err := txm.ExecTx(ctx, func(ctx context.Context) error {
		return folders.Create(ctx, newFolder("a", "a", "/a", nil))
	})
	require.NoError(t, err)

	_, err = folders.GetByPath(ctx, "/a")
	assert.NoError(t, err)
}

func TestLockTree_RequiresTransaction(t *testing.T) {
	folders := NewFolderRepository(NewStore())
	assert.Error(t, folders.LockTree(context.Background()))
}

func TestLockTree_SerializesTransactions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folders := NewFolderRepository(store)
	txm := NewTransactionManager(store)

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = txm.ExecTx(ctx, func(ctx context.Context) error {
			if err := folders.LockTree(ctx); err != nil {
				return err
			}
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	acquired := make(chan struct{})
	go func() {
		_ = txm.ExecTx(ctx, func(ctx context.Context) error {
			if err := folders.LockTree(ctx); err != nil {
				return err
			}
			close(acquired)
			return nil
		})
	}()

	select {
	case <-acquired:
		t.Fatal("second transaction took the tree lock while the first held it")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second transaction never acquired the tree lock")
	}
}
