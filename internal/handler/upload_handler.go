package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forgottenfelines/tnr-intake-api/internal/dto"
	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	"github.com/forgottenfelines/tnr-intake-api/internal/service"
	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
	"github.com/forgottenfelines/tnr-intake-api/pkg/response"
)

type uploadService interface {
	Ingest(ctx context.Context, content []byte, originalFilename string, meta dto.CreateUploadRequest) (*models.Upload, error)
	Get(ctx context.Context, id string) (*models.Upload, error)
	List(ctx context.Context, query dto.UploadQuery) ([]models.Upload, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) error
	DownloadURL(ctx context.Context, id string) (string, time.Time, error)
	Download(ctx context.Context, id, token string) (*models.Upload, io.ReadCloser, error)
}

// UploadHandler exposes source-file ingestion endpoints.
type UploadHandler struct {
	service uploadService
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(service uploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Create godoc
// @Summary Ingest a source export file
// @Tags Uploads
// @Accept mpfd
// @Produce json
// @Param file formData file true "Export file"
// @Param source_system formData string true "airtable, clinichq, or webform"
// @Param source_table formData string true "Table or sheet name"
// @Param batch_id formData string false "Multi-file batch correlation id"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Create(c *gin.Context) {
	var req dto.CreateUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid upload metadata"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read file"))
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read file"))
		return
	}

	upload, err := h.service.Ingest(c.Request.Context(), content, fileHeader.Filename, req)
	if err != nil {
		var dup *service.DuplicateContentError
		if errors.As(err, &dup) {
			response.ErrorWithMeta(c, err, map[string]interface{}{"existing_upload_id": dup.ExistingUploadID})
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, upload)
}

// List godoc
// @Summary List ingested files
// @Tags Uploads
// @Produce json
// @Param source_system query string false "Filter by source system"
// @Param status query string false "Filter by processing status"
// @Param batch_id query string false "Filter by batch"
// @Param include_deleted query bool false "Include soft-deleted rows"
// @Success 200 {object} response.Envelope
// @Router /uploads [get]
func (h *UploadHandler) List(c *gin.Context) {
	var query dto.UploadQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	uploads, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, uploads, nil)
}

// Get godoc
// @Summary Get one upload
// @Tags Uploads
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} response.Envelope
// @Router /uploads/{id} [get]
func (h *UploadHandler) Get(c *gin.Context) {
	upload, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, upload, nil)
}

// Action godoc
// @Summary Apply an action to an upload
// @Tags Uploads
// @Accept json
// @Produce json
// @Param id path string true "Upload ID"
// @Param payload body dto.UploadActionRequest true "Action"
// @Success 200 {object} response.Envelope
// @Router /uploads/{id} [patch]
func (h *UploadHandler) Action(c *gin.Context) {
	var req dto.UploadActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid action payload"))
		return
	}
	if err := h.service.Reset(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	upload, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, upload, nil)
}

// Delete godoc
// @Summary Soft-delete an upload
// @Tags Uploads
// @Produce json
// @Param id path string true "Upload ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /uploads/{id} [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadURL godoc
// @Summary Issue a signed download token
// @Tags Uploads
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} response.Envelope
// @Router /uploads/{id}/download-url [get]
func (h *UploadHandler) DownloadURL(c *gin.Context) {
	token, expiresAt, err := h.service.DownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	}, nil)
}

// Download godoc
// @Summary Download the original file bytes
// @Tags Uploads
// @Produce octet-stream
// @Param id path string true "Upload ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Router /uploads/{id}/download [get]
func (h *UploadHandler) Download(c *gin.Context) {
	upload, reader, err := h.service.Download(c.Request.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+upload.OriginalFilename+`"`)
	c.DataFromReader(http.StatusOK, upload.SizeBytes, "application/octet-stream", reader, nil)
}
