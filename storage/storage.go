package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBlobNotFound is returned by Open when no blob exists under the
// given stored name.
var ErrBlobNotFound = errors.New("blob not found")

// Storage is the blob store: opaque bytes keyed by a server-generated
// stored name. Implementations do no caching or compression.
type Storage interface {
	// Upload writes the blob under storedName and returns the storage path.
	Upload(ctx context.Context, storedName string, data io.Reader) (string, error)

	// Exists reports whether a blob is present under storedName.
	Exists(ctx context.Context, storedName string) bool

	// Open returns a reader over the blob. ErrBlobNotFound if absent.
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)

	// Delete removes the blob. Idempotent: no error if already absent.
	Delete(ctx context.Context, storedName string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// NewStorageFromEnv creates a storage instance from environment variables
func NewStorageFromEnv() (Storage, error) {
	storageType := os.Getenv("STORAGE_TYPE")
	if storageType == "" {
		storageType = "local" // Default to local for development
	}

	cfg := StorageConfig{
		Type: StorageType(storageType),
	}

	switch StorageType(storageType) {
	case StorageTypeLocal:
		localPath := os.Getenv("STORAGE_LOCAL_PATH")
		if localPath == "" {
			localPath = "./storage/pdfs" // Default local storage path
		}
		cfg.LocalPath = localPath
		return NewLocalStorage(cfg.LocalPath)

	case StorageTypeS3:
		cfg.S3Bucket = os.Getenv("AWS_S3_BUCKET")
		cfg.S3Region = os.Getenv("AWS_REGION")
		if cfg.S3Region == "" {
			cfg.S3Region = "us-east-1" // Default region
		}
		cfg.AWSAccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		cfg.AWSSecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}

		return NewS3Storage(cfg)

	default:
		return nil, fmt.Errorf("unknown storage type: %s", storageType)
	}
}

// NewStoredName generates a fresh collision-resistant stored name,
// keeping the original file's extension (defaulting to .pdf).
func NewStoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".pdf"
	}
	return uuid.New().String() + ext
}

// blobPath derives the storage path from a stored name. The first two
// characters shard blobs across subdirectories/prefixes; names too
// short to shard are stored unsharded.
func blobPath(storedName string) string {
	if len(storedName) < 2 {
		return storedName
	}
	return path.Join(storedName[:2], storedName)
}
