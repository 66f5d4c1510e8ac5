package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }

// Is lets typed errors match their sentinel via errors.Is().
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidMove rejects moving a folder into itself or one of its descendants
	ErrInvalidMove = errors.New("invalid move")

	// ErrNotEmpty rejects deleting a folder that still owns files or folders
	ErrNotEmpty = errors.New("folder not empty")

	// ErrStorage wraps failures of the blob storage backend
	ErrStorage = errors.New("storage failure")

	// ErrUnavailable reports an optional collaborator that is not configured
	ErrUnavailable = errors.New("service unavailable")
)

// NotFound refinements. All of them match ErrNotFound.
var (
	ErrFolderNotFound = fmt.Errorf("folder %w", ErrNotFound)
	ErrParentNotFound = fmt.Errorf("parent folder %w", ErrNotFound)
	ErrTargetNotFound = fmt.Errorf("target folder %w", ErrNotFound)
	ErrFileNotFound   = fmt.Errorf("file %w", ErrNotFound)
)

// ConflictError represents a resource conflict with details about the existing resource.
// Folder path collisions (DuplicatePath) are reported with this type.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder, file)
	ResourceID   string // ID of the existing/conflicting resource, if known
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewDuplicatePathError builds the conflict returned when a folder path is taken.
func NewDuplicatePathError(path, existingID string) *ConflictError {
	return &ConflictError{
		Message:      fmt.Sprintf("a folder already exists at %q", path),
		ResourceType: "folder",
		ResourceID:   existingID,
	}
}
