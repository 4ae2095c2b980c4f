package repository

import (
	"context"
	"errors"
	"fmt"

	"pdfvault-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no record matches the given id.
var ErrNotFound = errors.New("record not found")

// FileRepository persists file metadata. The entity is a plain struct;
// all persistence behavior lives behind this interface.
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.File, error)
	Update(ctx context.Context, file *models.File) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListAll returns every record, newest first, with uploader resolved.
	ListAll(ctx context.Context) ([]*models.File, error)

	// ActiveLatest returns the most recently created active record,
	// or (nil, nil) when none exists.
	ActiveLatest(ctx context.Context) (*models.File, error)

	// Search matches the query case-insensitively as a substring of
	// title, original name or description.
	Search(ctx context.Context, query string) ([]*models.File, error)
}

// PostgresFileRepository handles database operations for files
type PostgresFileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *pgxpool.Pool) *PostgresFileRepository {
	return &PostgresFileRepository{db: db}
}

// Create creates a new file record
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO pdf_files (
			title, original_name, stored_name, stored_path, size_bytes, mime_type, description, is_active, uploaded_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		file.Title,
		file.OriginalName,
		file.StoredName,
		file.StoredPath,
		file.SizeBytes,
		file.MimeType,
		file.Description,
		file.IsActive,
		file.UploadedBy,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	return err
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	file := &models.File{}
	query := `
		SELECT id, title, original_name, stored_name, stored_path, size_bytes, mime_type, description, is_active, uploaded_by, created_at, updated_at
		FROM pdf_files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Title,
		&file.OriginalName,
		&file.StoredName,
		&file.StoredPath,
		&file.SizeBytes,
		&file.MimeType,
		&file.Description,
		&file.IsActive,
		&file.UploadedBy,
		&file.CreatedAt,
		&file.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Update persists the mutable fields (title, description, is_active)
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := `
		UPDATE pdf_files
		SET title = $2, description = $3, is_active = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, file.ID, file.Title, file.Description, file.IsActive).Scan(&file.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete deletes a file record
func (r *PostgresFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pdf_files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const listColumns = `
	f.id, f.title, f.original_name, f.stored_name, f.stored_path, f.size_bytes, f.mime_type, f.description, f.is_active, f.uploaded_by, f.created_at, f.updated_at,
	u.id, u.name, u.email`

// ListAll retrieves all file records with their uploader, newest first
func (r *PostgresFileRepository) ListAll(ctx context.Context) ([]*models.File, error) {
	query := `
		SELECT ` + listColumns + `
		FROM pdf_files f
		JOIN users u ON u.id = f.uploaded_by
		ORDER BY f.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFilesWithUploader(rows)
}

// ActiveLatest retrieves the newest active record, or nil when none
func (r *PostgresFileRepository) ActiveLatest(ctx context.Context) (*models.File, error) {
	file := &models.File{}
	query := `
		SELECT id, title, original_name, stored_name, stored_path, size_bytes, mime_type, description, is_active, uploaded_by, created_at, updated_at
		FROM pdf_files
		WHERE is_active = true
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query).Scan(
		&file.ID,
		&file.Title,
		&file.OriginalName,
		&file.StoredName,
		&file.StoredPath,
		&file.SizeBytes,
		&file.MimeType,
		&file.Description,
		&file.IsActive,
		&file.UploadedBy,
		&file.CreatedAt,
		&file.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Search matches title, original name and description case-insensitively
func (r *PostgresFileRepository) Search(ctx context.Context, search string) ([]*models.File, error) {
	query := `
		SELECT ` + listColumns + `
		FROM pdf_files f
		JOIN users u ON u.id = f.uploaded_by
		WHERE f.title ILIKE $1 OR f.original_name ILIKE $1 OR f.description ILIKE $1
		ORDER BY f.created_at DESC`

	rows, err := r.db.Query(ctx, query, "%"+search+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFilesWithUploader(rows)
}

func scanFilesWithUploader(rows pgx.Rows) ([]*models.File, error) {
	var files []*models.File
	for rows.Next() {
		file := &models.File{Uploader: &models.Uploader{}}
		err := rows.Scan(
			&file.ID,
			&file.Title,
			&file.OriginalName,
			&file.StoredName,
			&file.StoredPath,
			&file.SizeBytes,
			&file.MimeType,
			&file.Description,
			&file.IsActive,
			&file.UploadedBy,
			&file.CreatedAt,
			&file.UpdatedAt,
			&file.Uploader.ID,
			&file.Uploader.Name,
			&file.Uploader.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		files = append(files, file)
	}

	return files, rows.Err()
}
