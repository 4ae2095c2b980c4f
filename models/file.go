package models

import (
	"time"

	"github.com/google/uuid"
)

// File represents the metadata of one uploaded PDF file.
// The bytes themselves live in the blob store under StoredName.
type File struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	StoredPath   string    `json:"stored_path"`
	SizeBytes    int64     `json:"size_bytes"`
	MimeType     string    `json:"mime_type"`
	Description  string    `json:"description,omitempty"`
	IsActive     bool      `json:"is_active"`
	UploadedBy   uuid.UUID `json:"uploaded_by"`
	Uploader     *Uploader `json:"uploader,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Uploader is the subset of User shown next to a file in listings.
type Uploader struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
