package drive

import (
	"context"
	"fmt"
	"log/slog"

	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/repositories"
	"cloudfiles/internal/domain/services"
	"cloudfiles/internal/utils"
)

// Maintenance runs offline consistency checks over folders, files and blobs
type Maintenance struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	storage    services.BlobStorage
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewMaintenance creates the maintenance runner
func NewMaintenance(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	storage services.BlobStorage,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *Maintenance {
	return &Maintenance{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		storage:    storage,
		txManager:  txManager,
		logger:     logger,
	}
}

// ReconcileReport lists file records whose blob is gone
type ReconcileReport struct {
	Checked  int           `json:"checked"`
	Dangling []models.File `json:"dangling"`
	Pruned   int           `json:"pruned"`
}

// Reconcile finds file records whose blob no longer exists. With prune the
// dangling records are deleted.
func (m *Maintenance) Reconcile(ctx context.Context, prune bool) (*ReconcileReport, error) {
	files, err := m.fileRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{Checked: len(files), Dangling: []models.File{}}
	for _, f := range files {
		ok, err := m.storage.Exists(ctx, f.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("check blob of %s: %w", f.ID, err)
		}
		if ok {
			continue
		}
		report.Dangling = append(report.Dangling, f)

		if !prune {
			continue
		}
		if err := m.fileRepo.Delete(ctx, f.ID); err != nil {
			return report, fmt.Errorf("prune %s: %w", f.ID, err)
		}
		report.Pruned++
		m.logger.Info("pruned dangling file record", "id", f.ID, "storage_key", f.StorageKey)
	}

	return report, nil
}

// PathViolation is a folder whose stored path disagrees with its parent chain
type PathViolation struct {
	FolderID string `json:"folderId"`
	Stored   string `json:"stored"`
	Expected string `json:"expected"`
}

// PathReport is the outcome of VerifyPaths
type PathReport struct {
	Checked    int             `json:"checked"`
	Violations []PathViolation `json:"violations"`
	Repaired   int             `json:"repaired"`
}

// VerifyPaths checks path == ComputePath(name, parent.path) for every folder.
// With repair the wrong paths are rewritten top-down under the tree lock.
func (m *Maintenance) VerifyPaths(ctx context.Context, repair bool) (*PathReport, error) {
	if !repair {
		folders, err := m.folderRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return &PathReport{Checked: len(folders), Violations: findViolations(folders)}, nil
	}

	var report *PathReport
	err := m.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := m.folderRepo.LockTree(ctx); err != nil {
			return err
		}
		folders, err := m.folderRepo.ListAll(ctx)
		if err != nil {
			return err
		}

		report = &PathReport{Checked: len(folders), Violations: findViolations(folders)}
		for _, v := range report.Violations {
			if err := m.folderRepo.UpdatePath(ctx, v.FolderID, v.Expected); err != nil {
				return fmt.Errorf("repair %s: %w", v.FolderID, err)
			}
			report.Repaired++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if report.Repaired > 0 {
		m.logger.Info("folder paths repaired", "count", report.Repaired)
	}
	return report, nil
}

// findViolations walks the tree from the roots, so violations come out
// parents first and can be repaired in order.
func findViolations(folders []models.Folder) []PathViolation {
	children := make(map[string][]models.Folder)
	var roots []models.Folder
	for _, f := range folders {
		if f.ParentID == nil {
			roots = append(roots, f)
			continue
		}
		children[*f.ParentID] = append(children[*f.ParentID], f)
	}

	violations := []PathViolation{}
	var walk func(level []models.Folder, parentPath *string)
	walk = func(level []models.Folder, parentPath *string) {
		for _, f := range level {
			expected := utils.ComputePath(f.Name, parentPath)
			if f.Path != expected {
				violations = append(violations, PathViolation{FolderID: f.ID, Stored: f.Path, Expected: expected})
			}
			walk(children[f.ID], &expected)
		}
	}
	walk(roots, nil)

	return violations
}
