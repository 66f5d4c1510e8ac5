package utils

import (
	"regexp"
	"strings"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PathSeparator separates folder names inside a path
const PathSeparator = "/"

var folderNameRegex = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)

// ValidateFolderName checks a folder name before it is turned into a path.
// Leading and trailing spaces are allowed here and trimmed by ComputePath.
func ValidateFolderName(name string) error {
	trimmed := strings.TrimSpace(name)
	err := validation.Validate(trimmed,
		validation.Required.Error("is required"),
		validation.RuneLength(1, config.MaxFolderNameLength),
	)
	if err == nil {
		err = validation.Validate(name,
			validation.Match(folderNameRegex).Error("can only contain letters, numbers, spaces, hyphens and underscores"),
		)
	}
	if err != nil {
		return &domain.ValidationError{Message: "folder name " + err.Error()}
	}
	return nil
}

// ComputePath returns the canonical path of a folder named name under a
// parent with parentPath (nil = root).
//
//   - ComputePath("docs", nil) → "/docs"
//   - ComputePath(" reports ", &"/docs") → "/docs/reports"
func ComputePath(name string, parentPath *string) string {
	base := ""
	if parentPath != nil {
		base = *parentPath
	}
	return base + PathSeparator + strings.TrimSpace(name)
}

// IsDescendantPath reports whether candidate equals ancestor or lies below it.
// "/a/bc" is not a descendant of "/a/b".
func IsDescendantPath(candidate, ancestor string) bool {
	return candidate == ancestor || strings.HasPrefix(candidate, ancestor+PathSeparator)
}

// RewritePrefix replaces the leading oldPrefix of path with newPrefix.
// Paths that do not start with oldPrefix are returned unchanged.
func RewritePrefix(path, oldPrefix, newPrefix string) string {
	if !strings.HasPrefix(path, oldPrefix) {
		return path
	}
	return newPrefix + path[len(oldPrefix):]
}

// NormalizeFolderPath turns a URL tail such as "docs/reports/" into the
// canonical "/docs/reports". An empty input yields "/".
func NormalizeFolderPath(raw string) string {
	trimmed := strings.Trim(raw, PathSeparator)
	if trimmed == "" {
		return PathSeparator
	}
	return PathSeparator + trimmed
}
