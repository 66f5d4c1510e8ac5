// Package storage implements services.BlobStorage on the local filesystem
// and on S3-compatible object stores.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain/services"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

var whitespace = regexp.MustCompile(`\s+`)

// NewKey derives a unique, time-ordered locator for an uploaded file name:
// "<ulid>-<name>" with whitespace runs collapsed and separators replaced.
func NewKey(name string) string {
	return ulid.Make().String() + "-" + NormalizeName(name)
}

// NormalizeName collapses whitespace and strips path separators from a file name
func NormalizeName(name string) string {
	normalized := strings.TrimSpace(whitespace.ReplaceAllString(name, " "))
	normalized = strings.NewReplacer("/", "_", "\\", "_").Replace(normalized)
	if normalized == "" || normalized == "." || normalized == ".." {
		return "file"
	}
	return normalized
}

// validKey rejects locators that could escape the storage namespace
func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, "/\\")
}

// New builds the storage backend selected by cfg.StorageBackend
func New(ctx context.Context, cfg *config.Config) (services.BlobStorage, error) {
	switch cfg.StorageBackend {
	case BackendLocal, "":
		return NewLocal(cfg.UploadDir)
	case BackendS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
