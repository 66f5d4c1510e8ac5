package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"cloudfiles/internal/domain"
)

// UploadPolicy decides which uploads are accepted
type UploadPolicy struct {
	MaxFileSizeMB     int64
	AllowedExtensions []string // lower-case, with leading dot
	ValidationEnabled bool
}

// DefaultUploadPolicy returns the built-in policy: 10 MB, common document
// and image types, validation on.
func DefaultUploadPolicy() UploadPolicy {
	return UploadPolicy{
		MaxFileSizeMB:     10,
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".pdf", ".doc", ".docx", ".txt", ".zip"},
		ValidationEnabled: true,
	}
}

// MaxFileSizeBytes is the size limit in bytes
func (p UploadPolicy) MaxFileSizeBytes() int64 {
	return p.MaxFileSizeMB * 1024 * 1024
}

// Check validates an upload's name and size. Always passes when validation is disabled.
func (p UploadPolicy) Check(name string, size int64) error {
	if !p.ValidationEnabled {
		return nil
	}

	if size > p.MaxFileSizeBytes() {
		return &domain.ValidationError{
			Message: fmt.Sprintf("File too large. Maximum size is %dMB", p.MaxFileSizeMB),
		}
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range p.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return &domain.ValidationError{
		Message: fmt.Sprintf("File type not allowed. Allowed types: %s", strings.Join(p.AllowedExtensions, ", ")),
	}
}

// ParseExtensions turns "jpg, .PNG,pdf" into [".jpg", ".png", ".pdf"]
func ParseExtensions(raw string) []string {
	var exts []string
	for _, part := range strings.Split(raw, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}
