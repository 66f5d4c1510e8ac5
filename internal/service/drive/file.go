package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/repositories"
	"cloudfiles/internal/domain/services"
)

// DownloadRoute is the public prefix files are served under
const DownloadRoute = "/api/files/download/"

const defaultMimeType = "application/octet-stream"

type fileService struct {
	fileRepo   repositories.FileRepository
	folderRepo repositories.FolderRepository
	storage    services.BlobStorage
	policy     config.UploadPolicy
	events     services.EventPublisher
	activity   services.ActivityRecorder
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	storage services.BlobStorage,
	policy config.UploadPolicy,
	events services.EventPublisher,
	activity services.ActivityRecorder,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		storage:    storage,
		policy:     policy,
		events:     events,
		activity:   activity,
		logger:     logger,
	}
}

// UploadFile stores the blob, then records the file. If the record cannot be
// written the blob is deleted again.
func (s *fileService) UploadFile(ctx context.Context, req *services.UploadFileRequest) (*models.File, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &domain.ValidationError{Message: "no file uploaded"}
	}
	if len(name) > config.MaxFileNameLength {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("file name exceeds %d characters", config.MaxFileNameLength),
		}
	}

	folderID := emptyToNil(req.FolderID)
	if err := s.checkFolder(ctx, folderID); err != nil {
		return nil, err
	}

	if err := s.policy.Check(name, req.Size); err != nil {
		return nil, err
	}

	// browsers send application/octet-stream for types they don't know
	mimeType := req.ContentType
	if mimeType == "" || mimeType == defaultMimeType {
		mimeType = mime.TypeByExtension(filepath.Ext(name))
	}
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	key, err := s.storage.Store(ctx, name, req.Content, req.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: store %q: %v", domain.ErrStorage, name, err)
	}

	file := &models.File{
		ID:         uuid.NewString(),
		Name:       name,
		URL:        DownloadRoute + url.PathEscape(key),
		StorageKey: key,
		Size:       req.Size,
		MimeType:   mimeType,
		FolderID:   folderID,
		CreatedAt:  time.Now(),
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Error("orphaned blob after failed insert",
				"storage_key", key,
				"backend", s.storage.Backend(),
				"error", delErr,
			)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		"id", file.ID,
		"name", file.Name,
		"size", file.Size,
		"folder_id", file.FolderID,
		"backend", s.storage.Backend(),
	)
	s.events.Publish(models.EventFileAdded, file, models.Folders(file.FolderID))
	s.activity.Record(ctx, models.ActionUpload, models.ActivityAttributes{
		"fileId":   file.ID,
		"fileName": file.Name,
		"fileSize": file.Size,
		"mimeType": file.MimeType,
		"folderId": file.FolderID,
	})

	return file, nil
}

// GetFile retrieves a file record
func (s *fileService) GetFile(ctx context.Context, id string) (*models.File, error) {
	return s.getFile(ctx, id)
}

// ListFiles lists the files of a folder, or every file when folderID is nil
func (s *fileService) ListFiles(ctx context.Context, folderID *string) ([]models.File, error) {
	folderID = emptyToNil(folderID)

	var (
		files []models.File
		err   error
	)
	if folderID == nil {
		files, err = s.fileRepo.ListAll(ctx)
	} else {
		files, err = s.fileRepo.ListByFolder(ctx, folderID)
	}
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionList, models.ActivityAttributes{
		"folderId":  folderID,
		"fileCount": len(files),
	})
	return files, nil
}

// MoveFile places a file into another folder (nil = root)
func (s *fileService) MoveFile(ctx context.Context, id string, req *services.MoveFileRequest) (*models.File, error) {
	file, err := s.getFile(ctx, id)
	if err != nil {
		return nil, err
	}

	target := emptyToNil(req.FolderID)
	if err := s.checkFolder(ctx, target); err != nil {
		return nil, err
	}

	if err := s.fileRepo.UpdateFolder(ctx, id, target); err != nil {
		return nil, err
	}

	moved := models.FileMoved{ID: file.ID, OldFolderID: file.FolderID, NewFolderID: target}
	file.FolderID = target

	s.logger.Info("file moved",
		"id", file.ID,
		"old_folder_id", moved.OldFolderID,
		"new_folder_id", moved.NewFolderID,
	)
	s.events.Publish(models.EventFileMoved, moved, models.Folders(moved.OldFolderID, moved.NewFolderID))
	s.activity.Record(ctx, models.ActionFileMoved, models.ActivityAttributes{
		"fileId":      file.ID,
		"fileName":    file.Name,
		"oldFolderId": moved.OldFolderID,
		"newFolderId": moved.NewFolderID,
	})

	return file, nil
}

// DeleteFile removes the blob first and the record second. A failed blob
// delete keeps the record, leaving a state the reconcile sweep can detect.
func (s *fileService) DeleteFile(ctx context.Context, id string) error {
	file, err := s.getFile(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.StorageKey); err != nil {
		s.activity.Record(ctx, models.ActionError, models.ActivityAttributes{
			"operation": "delete",
			"fileId":    file.ID,
			"error":     err.Error(),
		})
		return fmt.Errorf("%w: delete blob of %s: %v", domain.ErrStorage, file.ID, err)
	}

	if err := s.fileRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("file deleted", "id", file.ID, "name", file.Name, "folder_id", file.FolderID)
	s.events.Publish(models.EventFileDeleted, models.Deleted{ID: file.ID}, models.Folders(file.FolderID))
	s.activity.Record(ctx, models.ActionDelete, models.ActivityAttributes{
		"fileId":   file.ID,
		"fileName": file.Name,
		"folderId": file.FolderID,
	})

	return nil
}

// OpenFile opens the blob behind a storage key. Caller closes the reader.
func (s *fileService) OpenFile(ctx context.Context, storageKey string, download bool) (*models.File, io.ReadCloser, error) {
	file, err := s.fileRepo.GetByStorageKey(ctx, storageKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, storageKey)
		}
		return nil, nil, err
	}

	content, err := s.storage.Retrieve(ctx, storageKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("file record without blob", "id", file.ID, "storage_key", storageKey)
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, storageKey)
		}
		return nil, nil, fmt.Errorf("%w: open %s: %v", domain.ErrStorage, storageKey, err)
	}

	action := models.ActionView
	if download {
		action = models.ActionDownload
	}
	s.activity.Record(ctx, action, models.ActivityAttributes{
		"fileId":   file.ID,
		"fileName": file.Name,
	})

	return file, content, nil
}

func (s *fileService) getFile(ctx context.Context, id string) (*models.File, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, id)
		}
		return nil, err
	}
	return file, nil
}

// checkFolder verifies a non-nil folder ID refers to an existing folder
func (s *fileService) checkFolder(ctx context.Context, folderID *string) error {
	if folderID == nil {
		return nil
	}
	if _, err := s.folderRepo.GetByID(ctx, *folderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrFolderNotFound, *folderID)
		}
		return err
	}
	return nil
}
