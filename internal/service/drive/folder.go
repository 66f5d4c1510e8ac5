package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/repositories"
	"cloudfiles/internal/domain/services"
	"cloudfiles/internal/utils"
)

// summaryConcurrency bounds the count queries issued for one listing
const summaryConcurrency = 8

type folderService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	txManager  repositories.TransactionManager
	events     services.EventPublisher
	activity   services.ActivityRecorder
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	txManager repositories.TransactionManager,
	events services.EventPublisher,
	activity services.ActivityRecorder,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		events:     events,
		activity:   activity,
		logger:     logger,
	}
}

// CreateFolder creates a folder under req.ParentID (nil = root)
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.FolderSummary, error) {
	if err := utils.ValidateFolderName(req.Name); err != nil {
		return nil, err
	}
	parentID := emptyToNil(req.ParentID)

	now := time.Now()
	folder := &models.Folder{
		ID:        uuid.NewString(),
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.folderRepo.LockTree(ctx); err != nil {
			return err
		}

		var parentPath *string
		if parentID != nil {
			parent, err := s.folderRepo.GetByID(ctx, *parentID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%w: %s", domain.ErrParentNotFound, *parentID)
				}
				return err
			}
			parentPath = &parent.Path
		}

		folder.Path = utils.ComputePath(req.Name, parentPath)
		folder.Name = strings.TrimSpace(req.Name)
		if err := checkPathLength(folder.Path); err != nil {
			return err
		}

		return s.folderRepo.Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	summary := &models.FolderSummary{Folder: *folder}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"path", folder.Path,
		"parent_id", folder.ParentID,
	)
	s.events.Publish(models.EventFolderAdded, summary, models.Folders(folder.ParentID))
	s.activity.Record(ctx, models.ActionFolderCreated, models.ActivityAttributes{
		"folderId":   folder.ID,
		"folderName": folder.Name,
		"path":       folder.Path,
	})

	return summary, nil
}

// RenameFolder renames a folder and rewrites the paths of its descendants
func (s *folderService) RenameFolder(ctx context.Context, id string, req *services.RenameFolderRequest) (*models.Folder, error) {
	if err := utils.ValidateFolderName(req.Name); err != nil {
		return nil, err
	}

	var (
		folder    *models.Folder
		oldPath   string
		rewritten int
	)
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.folderRepo.LockTree(ctx); err != nil {
			return err
		}

		var err error
		folder, err = s.getFolder(ctx, id)
		if err != nil {
			return err
		}

		parentPath, err := s.parentPath(ctx, folder)
		if err != nil {
			return err
		}

		oldPath = folder.Path
		newPath := utils.ComputePath(req.Name, parentPath)
		if err := checkPathLength(newPath); err != nil {
			return err
		}

		folder.Name = strings.TrimSpace(req.Name)
		folder.Path = newPath
		folder.UpdatedAt = time.Now()

		rewritten, err = s.relocate(ctx, folder, oldPath)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed",
		"id", folder.ID,
		"old_path", oldPath,
		"new_path", folder.Path,
		"descendants_rewritten", rewritten,
	)
	s.activity.Record(ctx, models.ActionFolderRenamed, models.ActivityAttributes{
		"folderId": folder.ID,
		"oldPath":  oldPath,
		"newPath":  folder.Path,
	})

	return folder, nil
}

// MoveFolder re-parents a folder and rewrites the paths of its descendants
func (s *folderService) MoveFolder(ctx context.Context, id string, req *services.MoveFolderRequest) (*models.FolderSummary, error) {
	targetID := emptyToNil(req.ParentID)

	var (
		folder      *models.Folder
		oldPath     string
		oldParentID *string
		rewritten   int
	)
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.folderRepo.LockTree(ctx); err != nil {
			return err
		}

		var err error
		folder, err = s.getFolder(ctx, id)
		if err != nil {
			return err
		}
		oldPath = folder.Path
		oldParentID = folder.ParentID

		var targetPath *string
		if targetID != nil {
			target, err := s.folderRepo.GetByID(ctx, *targetID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%w: %s", domain.ErrTargetNotFound, *targetID)
				}
				return err
			}
			// Cycle check comes before any path computation
			if target.ID == folder.ID || utils.IsDescendantPath(target.Path, folder.Path) {
				return fmt.Errorf("%w: cannot move folder %q into itself or one of its subfolders", domain.ErrInvalidMove, folder.Path)
			}
			targetPath = &target.Path
		}

		newPath := utils.ComputePath(folder.Name, targetPath)
		if err := checkPathLength(newPath); err != nil {
			return err
		}

		folder.ParentID = targetID
		folder.Path = newPath
		folder.UpdatedAt = time.Now()

		rewritten, err = s.relocate(ctx, folder, oldPath)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", folder.ID,
		"old_parent_id", oldParentID,
		"new_parent_id", folder.ParentID,
		"new_path", folder.Path,
		"descendants_rewritten", rewritten,
	)
	s.activity.Record(ctx, models.ActionFolderMoved, models.ActivityAttributes{
		"folderId":    folder.ID,
		"oldParentId": oldParentID,
		"newParentId": folder.ParentID,
		"oldPath":     oldPath,
		"newPath":     folder.Path,
	})

	counts, err := s.folderRepo.CountContents(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	return &models.FolderSummary{Folder: *folder, Counts: counts}, nil
}

// relocate persists a folder whose path changed from oldPath and cascades
// the new prefix to every descendant. Must run under the tree lock.
func (s *folderService) relocate(ctx context.Context, folder *models.Folder, oldPath string) (int, error) {
	if folder.Path == oldPath {
		return 0, s.folderRepo.Update(ctx, folder)
	}

	// Listed before the folder itself changes: descendants still carry oldPath
	descendants, err := s.folderRepo.ListDescendants(ctx, oldPath)
	if err != nil {
		return 0, err
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return 0, err
	}

	for _, d := range descendants {
		newPath := utils.RewritePrefix(d.Path, oldPath, folder.Path)
		if err := checkPathLength(newPath); err != nil {
			return 0, err
		}
		if err := s.folderRepo.UpdatePath(ctx, d.ID, newPath); err != nil {
			return 0, fmt.Errorf("rewrite path of %s: %w", d.ID, err)
		}
	}

	return len(descendants), nil
}

// DeleteFolder deletes a folder that owns no files and no child folders
func (s *folderService) DeleteFolder(ctx context.Context, id string) error {
	var folder *models.Folder
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.folderRepo.LockTree(ctx); err != nil {
			return err
		}

		var err error
		folder, err = s.getFolder(ctx, id)
		if err != nil {
			return err
		}

		counts, err := s.folderRepo.CountContents(ctx, id)
		if err != nil {
			return err
		}
		if !counts.IsEmpty() {
			return fmt.Errorf("%w: %q contains %d file(s) and %d folder(s)",
				domain.ErrNotEmpty, folder.Path, counts.Files, counts.Children)
		}

		return s.folderRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", folder.ID, "path", folder.Path)
	s.events.Publish(models.EventFolderDeleted, models.Deleted{ID: folder.ID}, models.Folders(folder.ParentID))
	s.activity.Record(ctx, models.ActionFolderDeleted, models.ActivityAttributes{
		"folderId": folder.ID,
		"path":     folder.Path,
	})

	return nil
}

// GetFolder retrieves a single folder record
func (s *folderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.getFolder(ctx, id)
}

// GetFolderDetail retrieves a folder with its parent and direct contents
func (s *folderService) GetFolderDetail(ctx context.Context, id string) (*models.FolderDetail, error) {
	folder, err := s.getFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, folder)
}

// GetFolderByPath retrieves a folder by path with its parent and direct contents
func (s *folderService) GetFolderByPath(ctx context.Context, path string) (*models.FolderDetail, error) {
	folder, err := s.folderRepo.GetByPath(ctx, utils.NormalizeFolderPath(path))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, path)
		}
		return nil, err
	}
	return s.detail(ctx, folder)
}

// ListChildren lists the direct child folders of parentID (nil = root)
func (s *folderService) ListChildren(ctx context.Context, parentID *string) ([]models.FolderSummary, error) {
	parentID = emptyToNil(parentID)
	if parentID != nil {
		if _, err := s.getFolder(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	children, err := s.folderRepo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, children)
}

// ListFolders lists every folder ordered by path
func (s *folderService) ListFolders(ctx context.Context) ([]models.FolderSummary, error) {
	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, folders)
}

// GetRootContents lists the root-level folders and files
func (s *folderService) GetRootContents(ctx context.Context) (*models.RootContents, error) {
	contents := &models.RootContents{Path: utils.PathSeparator}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		folders, err := s.ListChildren(gctx, nil)
		contents.Folders = folders
		return err
	})
	g.Go(func() error {
		files, err := s.fileRepo.ListByFolder(gctx, nil)
		contents.Files = files
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return contents, nil
}

func (s *folderService) detail(ctx context.Context, folder *models.Folder) (*models.FolderDetail, error) {
	detail := &models.FolderDetail{Folder: *folder}

	g, gctx := errgroup.WithContext(ctx)
	if folder.ParentID != nil {
		g.Go(func() error {
			parent, err := s.folderRepo.GetByID(gctx, *folder.ParentID)
			detail.Parent = parent
			return err
		})
	}
	g.Go(func() error {
		children, err := s.folderRepo.ListChildren(gctx, &folder.ID)
		if err != nil {
			return err
		}
		detail.Children, err = s.summarize(gctx, children)
		return err
	})
	g.Go(func() error {
		files, err := s.fileRepo.ListByFolder(gctx, &folder.ID)
		detail.Files = files
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return detail, nil
}

// summarize attaches child counts to each folder
func (s *folderService) summarize(ctx context.Context, folders []models.Folder) ([]models.FolderSummary, error) {
	summaries := make([]models.FolderSummary, len(folders))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i := range folders {
		g.Go(func() error {
			counts, err := s.folderRepo.CountContents(gctx, folders[i].ID)
			if err != nil {
				return err
			}
			summaries[i] = models.FolderSummary{Folder: folders[i], Counts: counts}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (s *folderService) getFolder(ctx context.Context, id string) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, id)
		}
		return nil, err
	}
	return folder, nil
}

func (s *folderService) parentPath(ctx context.Context, folder *models.Folder) (*string, error) {
	if folder.ParentID == nil {
		return nil, nil
	}
	parent, err := s.folderRepo.GetByID(ctx, *folder.ParentID)
	if err != nil {
		return nil, fmt.Errorf("load parent of %s: %w", folder.ID, err)
	}
	return &parent.Path, nil
}

func checkPathLength(path string) error {
	if len(path) > config.MaxFolderPathLength {
		return &domain.ValidationError{
			Message: fmt.Sprintf("folder path exceeds %d characters", config.MaxFolderPathLength),
		}
	}
	return nil
}

// emptyToNil treats "" like an absent ID, as JSON clients send both for root
func emptyToNil(id *string) *string {
	if id != nil && *id == "" {
		return nil
	}
	return id
}
