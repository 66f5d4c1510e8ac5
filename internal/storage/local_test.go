package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudfiles/internal/domain"
)

func TestLocal_StoreRetrieveDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)

	key, err := store.Store(ctx, "quarterly report.pdf", strings.NewReader("hello"), 5, "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, "-quarterly report.pdf"))

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := store.Retrieve(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(body))

	require.NoError(t, store.Delete(ctx, key))
	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting twice is fine
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocal_StoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir)
	require.NoError(t, err)

	_, err = store.Store(context.Background(), "a.txt", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, strings.HasPrefix(entries[0].Name(), ".upload-"))
}

func TestLocal_RetrieveMissing(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Retrieve(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLocal_RejectsTraversal(t *testing.T) {
	parent := t.TempDir()
	secret := filepath.Join(parent, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("s"), 0o600))

	store, err := NewLocal(filepath.Join(parent, "uploads"))
	require.NoError(t, err)

	_, err = store.Retrieve(context.Background(), "../secret.txt")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, store.Delete(context.Background(), "../secret.txt"))
	_, err = os.Stat(secret)
	assert.NoError(t, err)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"  my   summer\tphoto.jpg ", "my summer photo.jpg"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"   ", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNewKey_Unique(t *testing.T) {
	a := NewKey("a.txt")
	b := NewKey("a.txt")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-a.txt"))
}
