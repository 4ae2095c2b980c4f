package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"pdfvault-backend/auth"
	"pdfvault-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler handles HTTP requests for file operations
type FileHandler struct {
	files  *service.FileService
	logger *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(files *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		files:  files,
		logger: logger.With(slog.String("component", "file_handler")),
	}
}

// Upload handles POST /api/files
func (h *FileHandler) Upload(c *gin.Context) {
	user := auth.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "validation failed",
				"fields":  gin.H{"file": "a PDF file is required"},
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": "failed to read uploaded file",
			},
		})
		return
	}
	defer file.Close()

	// Declared MIME type from the part header, falling back to the
	// extension; validation enforces application/pdf either way.
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" && strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		mimeType = service.PDFMimeType
	}

	record, err := h.files.Create(c.Request.Context(), service.CreateInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		OriginalName: fileHeader.Filename,
		MimeType:     mimeType,
		Size:         fileHeader.Size,
		Data:         file,
		UploadedBy:   user.ID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}

// List handles GET /api/files (optional ?search=)
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.files.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    files,
	})
}

// Get handles GET /api/files/:id
func (h *FileHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	file, err := h.files.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    file,
	})
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Update handles PUT /api/files/:id
func (h *FileHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": "invalid request body",
			},
		})
		return
	}

	file, err := h.files.Update(c.Request.Context(), id, service.UpdatePatch{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	}, auth.CurrentUser(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    file,
	})
}

// Delete handles DELETE /api/files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.files.Delete(c.Request.Context(), id, auth.CurrentUser(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Download handles GET /api/files/:id/download
func (h *FileHandler) Download(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	file, reader, err := h.files.Download(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.OriginalName))
	c.DataFromReader(http.StatusOK, file.SizeBytes, file.MimeType, reader, nil)
}

// Latest handles GET /api/files/latest — public, metadata only.
func (h *FileHandler) Latest(c *gin.Context) {
	file, err := h.files.LatestActive(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	// file is null when nothing is active; that is not an error.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    file,
	})
}

type bulkUpdateRequest struct {
	IDs      []uuid.UUID `json:"ids" binding:"required"`
	IsActive bool        `json:"is_active"`
}

// BulkUpdate handles POST /api/files/bulk-update
func (h *FileHandler) BulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": "invalid request body",
			},
		})
		return
	}

	result := h.files.BulkUpdate(c.Request.Context(), req.IDs, req.IsActive, auth.CurrentUser(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

// BulkDelete handles POST /api/files/bulk-delete
func (h *FileHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": "invalid request body",
			},
		})
		return
	}

	result := h.files.BulkDelete(c.Request.Context(), req.IDs, auth.CurrentUser(c))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

func (h *FileHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "invalid file ID format",
			},
		})
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service errors to HTTP responses. Storage causes are
// logged here and never reach the client.
func (h *FileHandler) writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "validation failed",
				"fields":  verr.Fields,
			},
		})
		return
	}

	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "file not found",
			},
		})
		return
	}

	if errors.Is(err, service.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "not permitted",
			},
		})
		return
	}

	var serr *service.StorageError
	if errors.As(err, &serr) {
		h.logger.Error("storage failure", slog.String("op", serr.Op), slog.Any("error", serr.Err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_ERROR",
				"message": "file operation failed",
			},
		})
		return
	}

	h.logger.Error("unexpected error", slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "internal server error",
		},
	})
}
