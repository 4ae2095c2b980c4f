package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"pdfvault-backend/models"
	"pdfvault-backend/repository"
	"pdfvault-backend/storage"

	"github.com/google/uuid"
)

// FileService owns the upload/metadata lifecycle: validation, blob
// writes, metadata persistence and the access policy. The acting user
// is always an explicit parameter, never ambient state.
type FileService struct {
	files  repository.FileRepository
	store  storage.Storage
	logger *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(files repository.FileRepository, store storage.Storage, logger *slog.Logger) *FileService {
	return &FileService{
		files:  files,
		store:  store,
		logger: logger.With(slog.String("component", "file_service")),
	}
}

// CreateInput is a validated-on-entry file submission.
type CreateInput struct {
	Title        string
	Description  string
	OriginalName string
	MimeType     string
	Size         int64
	Data         io.Reader
	UploadedBy   uuid.UUID
}

// UpdatePatch carries the fields an update provides; nil means "leave
// unchanged".
type UpdatePatch struct {
	Title       *string
	Description *string
	IsActive    *bool
}

// BulkResult reports the outcome of a bulk operation per id.
type BulkResult struct {
	Succeeded []uuid.UUID       `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// Create validates the submission, writes the blob under a fresh stored
// name, confirms it exists, then inserts the metadata row. On a failed
// insert the blob is removed best-effort; if that cleanup also fails the
// orphaned blob is logged and left for out-of-band reconciliation.
func (s *FileService) Create(ctx context.Context, in CreateInput) (*models.File, error) {
	if verr := validateUpload(in); verr != nil {
		return nil, verr
	}

	storedName := storage.NewStoredName(in.OriginalName)

	storedPath, err := s.store.Upload(ctx, storedName, in.Data)
	if err != nil {
		return nil, &StorageError{Op: "write", Err: err}
	}
	if !s.store.Exists(ctx, storedName) {
		return nil, &StorageError{Op: "write", Err: errors.New("blob missing after write")}
	}

	file := &models.File{
		Title:        in.Title,
		OriginalName: in.OriginalName,
		StoredName:   storedName,
		StoredPath:   storedPath,
		SizeBytes:    in.Size,
		MimeType:     in.MimeType,
		Description:  in.Description,
		IsActive:     true,
		UploadedBy:   in.UploadedBy,
	}

	if err := s.files.Create(ctx, file); err != nil {
		if delErr := s.store.Delete(ctx, storedName); delErr != nil {
			s.logger.Error("orphaned blob left after failed metadata insert",
				slog.String("stored_name", storedName),
				slog.Any("insert_error", err),
				slog.Any("cleanup_error", delErr),
			)
		}
		return nil, err
	}

	s.logger.Info("file uploaded",
		slog.String("id", file.ID.String()),
		slog.String("stored_name", storedName),
		slog.Int64("size_bytes", file.SizeBytes),
	)

	return file, nil
}

// Get returns a single record by id.
func (s *FileService) Get(ctx context.Context, id uuid.UUID) (*models.File, error) {
	file, err := s.files.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return file, err
}

// List returns all records newest first, or the search matches when
// query is non-empty.
func (s *FileService) List(ctx context.Context, query string) ([]*models.File, error) {
	if query != "" {
		return s.files.Search(ctx, query)
	}
	return s.files.ListAll(ctx)
}

// Update applies the provided patch fields to a record, subject to the
// owner-or-admin policy.
func (s *FileService) Update(ctx context.Context, id uuid.UUID, patch UpdatePatch, actor *models.User) (*models.File, error) {
	if verr := validatePatch(patch); verr != nil {
		return nil, verr
	}

	file, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canMutate(actor, file) {
		return nil, ErrForbidden
	}

	if patch.Title != nil {
		file.Title = *patch.Title
	}
	if patch.Description != nil {
		file.Description = *patch.Description
	}
	if patch.IsActive != nil {
		file.IsActive = *patch.IsActive
	}

	if err := s.files.Update(ctx, file); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return file, nil
}

// Delete removes the blob first (idempotent), then the metadata row.
// An interruption between the two leaves a dangling row whose download
// reports not-found; retrying the delete clears it.
func (s *FileService) Delete(ctx context.Context, id uuid.UUID, actor *models.User) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canMutate(actor, file) {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, file.StoredName); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}

	if err := s.files.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.logger.Info("file deleted",
		slog.String("id", id.String()),
		slog.String("stored_name", file.StoredName),
	)

	return nil
}

// Download resolves the record and opens its blob. A record whose blob
// is missing is a detected inconsistency and reported as not found.
func (s *FileService) Download(ctx context.Context, id uuid.UUID) (*models.File, io.ReadCloser, error) {
	file, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.store.Open(ctx, file.StoredName)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			s.logger.Warn("metadata record has no blob",
				slog.String("id", id.String()),
				slog.String("stored_name", file.StoredName),
			)
			return nil, nil, ErrNotFound
		}
		return nil, nil, &StorageError{Op: "read", Err: err}
	}

	return file, reader, nil
}

// LatestActive returns the newest active record, or (nil, nil) when no
// active record exists. Absence is not an error: the public page simply
// shows nothing.
func (s *FileService) LatestActive(ctx context.Context) (*models.File, error) {
	return s.files.ActiveLatest(ctx)
}

// BulkUpdate sets the active flag on each id, applying the access
// policy per record. Failures are collected, not transactional.
func (s *FileService) BulkUpdate(ctx context.Context, ids []uuid.UUID, isActive bool, actor *models.User) *BulkResult {
	result := &BulkResult{Failed: map[string]string{}}
	for _, id := range ids {
		_, err := s.Update(ctx, id, UpdatePatch{IsActive: &isActive}, actor)
		if err != nil {
			result.Failed[id.String()] = err.Error()
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}

// BulkDelete deletes each id, applying the access policy per record.
func (s *FileService) BulkDelete(ctx context.Context, ids []uuid.UUID, actor *models.User) *BulkResult {
	result := &BulkResult{Failed: map[string]string{}}
	for _, id := range ids {
		if err := s.Delete(ctx, id, actor); err != nil {
			result.Failed[id.String()] = err.Error()
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}
