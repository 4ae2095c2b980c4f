package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors of the file lifecycle service.
var (
	// ErrNotFound — unknown record id, or a record whose blob is gone.
	ErrNotFound = errors.New("file not found")

	// ErrForbidden — the acting user is neither owner nor admin.
	ErrForbidden = errors.New("not permitted")
)

// ValidationError carries field-level messages for a rejected submission.
// Nothing is written to storage when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StorageError wraps a blob store failure. The cause is logged server
// side; clients only ever see a generic message.
type StorageError struct {
	Op  string // "write", "read" or "delete"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
