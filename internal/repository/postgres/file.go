package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/repositories"
)

const fileColumns = "id, name, url, storage_key, size, mime_type, folder_id, created_at"

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create inserts a new file record
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.Files, fileColumns)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		file.ID,
		file.Name,
		file.URL,
		file.StorageKey,
		file.Size,
		file.MimeType,
		file.FolderID,
		file.CreatedAt,
	)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", derefOr(file.FolderID, "<root>"), domain.ErrFolderNotFound)
		}
		if IsPgDuplicateError(err) {
			return fmt.Errorf("file '%s': %w", file.StorageKey, domain.ErrConflict)
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// GetByStorageKey retrieves a file by the locator of its blob
func (r *PostgresFileRepository) GetByStorageKey(ctx context.Context, key string) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE storage_key = $1`, fileColumns, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	file, err := scanFile(executor.QueryRow(ctx, query, key))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file with key %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file by storage key: %w", err)
	}

	return file, nil
}

// UpdateFolder changes the folder a file belongs to
func (r *PostgresFileRepository) UpdateFolder(ctx context.Context, id string, folderID *string) error {
	query := fmt.Sprintf(`UPDATE %s SET folder_id = $1 WHERE id = $2`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folderID, id)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", derefOr(folderID, "<root>"), domain.ErrFolderNotFound)
		}
		return fmt.Errorf("update file folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a file record
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListByFolder lists the files directly inside a folder
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID *string) ([]models.File, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE folder_id IS NULL
			ORDER BY name ASC
		`, fileColumns, r.tables.Files)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE folder_id = $1
			ORDER BY name ASC
		`, fileColumns, r.tables.Files)
		args = append(args, *folderID)
	}

	return r.queryFiles(ctx, "list folder files", query, args...)
}

// ListAll lists every file record ordered by creation time
func (r *PostgresFileRepository) ListAll(ctx context.Context) ([]models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at ASC`, fileColumns, r.tables.Files)
	return r.queryFiles(ctx, "list files", query)
}

func (r *PostgresFileRepository) queryFiles(ctx context.Context, op, query string, args ...interface{}) ([]models.File, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	var file models.File
	err := row.Scan(
		&file.ID,
		&file.Name,
		&file.URL,
		&file.StorageKey,
		&file.Size,
		&file.MimeType,
		&file.FolderID,
		&file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
