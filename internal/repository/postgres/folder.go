package postgres

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/repositories"
)

const folderColumns = "id, name, path, parent_id, created_at, updated_at"

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool    *pgxpool.Pool
	tables  *TableNames
	lockKey int64
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:    config.Pool,
		tables:  config.Tables,
		lockKey: advisoryLockKey(config.Tables.Folders),
	}
}

// advisoryLockKey derives one lock key per folders table so dev_ and prod_
// schemas sharing a database never block each other.
func advisoryLockKey(table string) int64 {
	h := fnv.New64a()
	h.Write([]byte(table))
	return int64(h.Sum64())
}

// LockTree takes a transaction-scoped advisory lock; it is released on commit or rollback
func (r *PostgresFolderRepository) LockTree(ctx context.Context) error {
	if !repositories.InTx(ctx) {
		return errors.New("lock tree: no active transaction")
	}

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", r.lockKey); err != nil {
		return fmt.Errorf("lock folder tree: %w", err)
	}
	return nil
}

// Create creates a new folder. A taken path yields a ConflictError carrying
// the ID of the folder that owns it.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, path, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (path) DO NOTHING
		RETURNING id
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	var id string
	err := executor.QueryRow(ctx, query,
		folder.ID,
		folder.Name,
		folder.Path,
		folder.ParentID,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&id)

	if err != nil {
		if IsPgNoRowsError(err) {
			return r.duplicatePath(ctx, folder.Path)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", *folder.ParentID, domain.ErrParentNotFound)
		}
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// GetByPath retrieves a folder by its exact path
func (r *PostgresFolderRepository) GetByPath(ctx context.Context, path string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE path = $1`, folderColumns, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, path))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder at %q: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder by path: %w", err)
	}

	return folder, nil
}

// Update persists name, path and parent of a folder
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	// Checked up front: a failed UPDATE aborts the surrounding transaction
	if err := r.checkPathFree(ctx, folder.Path, folder.ID); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, path = $2, parent_id = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.Name,
		folder.Path,
		folder.ParentID,
		folder.UpdatedAt,
		folder.ID,
	)

	if err != nil {
		if IsPgDuplicateError(err) {
			return domain.NewDuplicatePathError(folder.Path, "")
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", *folder.ParentID, domain.ErrTargetNotFound)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdatePath rewrites only the path of a folder
func (r *PostgresFolderRepository) UpdatePath(ctx context.Context, id, path string) error {
	if err := r.checkPathFree(ctx, path, id); err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET path = $1 WHERE id = $2`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, path, id)
	if err != nil {
		if IsPgDuplicateError(err) {
			return domain.NewDuplicatePathError(path, "")
		}
		return fmt.Errorf("update folder path: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a folder. The foreign keys on files and child folders
// refuse the delete while the folder still owns anything.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotEmpty)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE parent_id IS NULL
			ORDER BY name ASC
		`, folderColumns, r.tables.Folders)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE parent_id = $1
			ORDER BY name ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, *parentID)
	}

	return r.queryFolders(ctx, "list folder children", query, args...)
}

// ListDescendants lists every folder strictly below pathPrefix.
// starts_with keeps '_' and '%' in folder names from acting as LIKE wildcards.
func (r *PostgresFolderRepository) ListDescendants(ctx context.Context, pathPrefix string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE starts_with(path, $1)
		ORDER BY path ASC
	`, folderColumns, r.tables.Folders)

	return r.queryFolders(ctx, "list folder descendants", query, pathPrefix+"/")
}

// ListAll lists every folder ordered by path
func (r *PostgresFolderRepository) ListAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY path ASC`, folderColumns, r.tables.Folders)
	return r.queryFolders(ctx, "list folders", query)
}

// CountContents counts the direct files and child folders of a folder
func (r *PostgresFolderRepository) CountContents(ctx context.Context, id string) (models.FolderCounts, error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %s WHERE folder_id = $1),
			(SELECT COUNT(*) FROM %s WHERE parent_id = $1)
	`, r.tables.Files, r.tables.Folders)

	var counts models.FolderCounts
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&counts.Files, &counts.Children); err != nil {
		return counts, fmt.Errorf("count folder contents: %w", err)
	}

	return counts, nil
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, op, query string, args ...interface{}) ([]models.Folder, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// checkPathFree returns a ConflictError when another folder owns path
func (r *PostgresFolderRepository) checkPathFree(ctx context.Context, path, selfID string) error {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE path = $1 AND id <> $2`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	var existingID string
	err := executor.QueryRow(ctx, query, path, selfID).Scan(&existingID)
	if err == nil {
		return domain.NewDuplicatePathError(path, existingID)
	}
	if IsPgNoRowsError(err) {
		return nil
	}
	return fmt.Errorf("check folder path: %w", err)
}

func (r *PostgresFolderRepository) duplicatePath(ctx context.Context, path string) error {
	existing, err := r.GetByPath(ctx, path)
	if err != nil {
		// Fallback to a conflict without resource ID
		return domain.NewDuplicatePathError(path, "")
	}
	return domain.NewDuplicatePathError(path, existing.ID)
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.Path,
		&folder.ParentID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}
