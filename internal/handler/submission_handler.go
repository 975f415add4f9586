package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forgottenfelines/tnr-intake-api/internal/dto"
	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
	"github.com/forgottenfelines/tnr-intake-api/pkg/response"
)

type submissionService interface {
	Create(ctx context.Context, req dto.CreateSubmissionRequest) (*models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, query dto.SubmissionQuery) ([]models.Submission, error)
	Patch(ctx context.Context, id string, req dto.PatchSubmissionRequest, editedBy string) (*models.Submission, error)
	Archive(ctx context.Context, id, editedBy string) (*models.Submission, error)
	Reset(ctx context.Context, id string, req dto.ResetSubmissionRequest, editedBy string) (*models.Submission, error)
	Convert(ctx context.Context, id, editedBy string) (*models.Submission, error)
	BulkStatus(ctx context.Context, req dto.BulkStatusRequest, editedBy string) []dto.BulkStatusRowResult
	AddCommunication(ctx context.Context, id string, req dto.CreateCommunicationRequest, author string) (*models.CommunicationLogEntry, error)
	ListCommunications(ctx context.Context, id string) ([]models.CommunicationLogEntry, error)
	History(ctx context.Context, id string) ([]models.EditHistoryEntry, error)
	Undo(ctx context.Context, submissionID, entryID, editedBy string) (*models.Submission, error)
}

// SubmissionHandler exposes the submission lifecycle endpoints.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Create godoc
// @Summary Create an intake submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubmissionRequest true "Intake payload"
// @Success 201 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	sub, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// List godoc
// @Summary List submissions by queue mode
// @Tags Submissions
// @Produce json
// @Param mode query string false "Queue mode: attention, scheduled, recent, complete, all, legacy, test"
// @Param category query string false "Filter by triage category"
// @Param search query string false "Search name, email, phone, or address"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	var query dto.SubmissionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	subs, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// Get godoc
// @Summary Get one submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	sub, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Patch godoc
// @Summary Partially update a submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.PatchSubmissionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions/{id} [patch]
func (h *SubmissionHandler) Patch(c *gin.Context) {
	var req dto.PatchSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid patch payload"))
		return
	}
	sub, err := h.service.Patch(c.Request.Context(), c.Param("id"), req, editorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Archive godoc
// @Summary Archive a submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/archive [post]
func (h *SubmissionHandler) Archive(c *gin.Context) {
	sub, err := h.service.Archive(c.Request.Context(), c.Param("id"), editorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Reset godoc
// @Summary Reset a submission back to new
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.ResetSubmissionRequest false "Reset options"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/reset [post]
func (h *SubmissionHandler) Reset(c *gin.Context) {
	var req dto.ResetSubmissionRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reset payload"))
			return
		}
	}
	sub, err := h.service.Reset(c.Request.Context(), c.Param("id"), req, editorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Convert godoc
// @Summary Convert a submission into a trapping request
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /submissions/{id}/convert [post]
func (h *SubmissionHandler) Convert(c *gin.Context) {
	sub, err := h.service.Convert(c.Request.Context(), c.Param("id"), editorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// BulkStatus godoc
// @Summary Apply one status to many submissions
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.BulkStatusRequest true "IDs and target status"
// @Success 200 {object} response.Envelope
// @Router /submissions/bulk-status [post]
func (h *SubmissionHandler) BulkStatus(c *gin.Context) {
	var req dto.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}
	results := h.service.BulkStatus(c.Request.Context(), req, editorFromContext(c))
	response.JSON(c, http.StatusOK, results, nil)
}

// AddCommunication godoc
// @Summary Append a note or contact attempt
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.CreateCommunicationRequest true "Entry"
// @Success 201 {object} response.Envelope
// @Router /submissions/{id}/communications [post]
func (h *SubmissionHandler) AddCommunication(c *gin.Context) {
	var req dto.CreateCommunicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid communication payload"))
		return
	}
	entry, err := h.service.AddCommunication(c.Request.Context(), c.Param("id"), req, editorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// ListCommunications godoc
// @Summary List the communication journal
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/communications [get]
func (h *SubmissionHandler) ListCommunications(c *gin.Context) {
	entries, err := h.service.ListCommunications(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// History godoc
// @Summary List the edit history
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/history [get]
func (h *SubmissionHandler) History(c *gin.Context) {
	entries, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Undo godoc
// @Summary Revert one history entry
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Param entryId path string true "History entry ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id}/history/{entryId}/undo [post]
func (h *SubmissionHandler) Undo(c *gin.Context) {
	sub, err := h.service.Undo(c.Request.Context(), c.Param("id"), c.Param("entryId"), editorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}
