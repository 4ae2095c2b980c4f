package service

import (
	"fmt"
	"unicode/utf8"
)

// Upload limits, matching the admin UI's constraints. Text limits are
// in characters, not bytes, so multibyte titles count correctly.
const (
	MaxFileSize       = 10 << 20 // 10 MiB
	MaxTitleLength    = 255
	MaxDescriptionLen = 1000

	// PDFMimeType is the only accepted declared content type.
	PDFMimeType = "application/pdf"
)

// validateUpload checks a file submission before anything touches the
// blob store. Returns nil when the submission is acceptable.
func validateUpload(in CreateInput) *ValidationError {
	fields := map[string]string{}

	if in.Title == "" {
		fields["title"] = "title is required"
	} else if utf8.RuneCountInString(in.Title) > MaxTitleLength {
		fields["title"] = fmt.Sprintf("title must be at most %d characters", MaxTitleLength)
	}

	if utf8.RuneCountInString(in.Description) > MaxDescriptionLen {
		fields["description"] = fmt.Sprintf("description must be at most %d characters", MaxDescriptionLen)
	}

	if in.OriginalName == "" {
		fields["file"] = "a PDF file is required"
	} else if in.Size <= 0 {
		fields["file"] = "file is empty"
	} else if in.Size > MaxFileSize {
		fields["file"] = fmt.Sprintf("file size exceeds maximum of %d bytes", int64(MaxFileSize))
	} else if in.MimeType != PDFMimeType {
		fields["file"] = "file must be a PDF"
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// validatePatch bounds-checks the fields an update actually provides.
func validatePatch(patch UpdatePatch) *ValidationError {
	fields := map[string]string{}

	if patch.Title != nil {
		if *patch.Title == "" {
			fields["title"] = "title is required"
		} else if utf8.RuneCountInString(*patch.Title) > MaxTitleLength {
			fields["title"] = fmt.Sprintf("title must be at most %d characters", MaxTitleLength)
		}
	}

	if patch.Description != nil && utf8.RuneCountInString(*patch.Description) > MaxDescriptionLen {
		fields["description"] = fmt.Sprintf("description must be at most %d characters", MaxDescriptionLen)
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
