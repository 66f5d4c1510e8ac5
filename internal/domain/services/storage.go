package services

import (
	"context"
	"io"
)

// BlobStorage stores file bytes. Implementations must be interchangeable:
// the file service never looks inside a locator.
type BlobStorage interface {
	// Store writes content under name and returns its locator
	Store(ctx context.Context, name string, content io.Reader, size int64, contentType string) (string, error)

	// Retrieve opens the blob behind a locator (domain.ErrNotFound if absent)
	Retrieve(ctx context.Context, locator string) (io.ReadCloser, error)

	// Delete removes the blob behind a locator; deleting an absent blob is not an error
	Delete(ctx context.Context, locator string) error

	// Exists reports whether a blob is present
	Exists(ctx context.Context, locator string) (bool, error)

	// Backend names the implementation ("local", "s3")
	Backend() string
}
