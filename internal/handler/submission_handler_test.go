package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgottenfelines/tnr-intake-api/internal/dto"
	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
)

type fakeSubmissionSrv struct {
	sub        *models.Submission
	err        error
	bulk       []dto.BulkStatusRowResult
	lastPatch  dto.PatchSubmissionRequest
	lastEditor string
}

func (f *fakeSubmissionSrv) Create(ctx context.Context, req dto.CreateSubmissionRequest) (*models.Submission, error) {
	return f.sub, f.err
}

func (f *fakeSubmissionSrv) Get(ctx context.Context, id string) (*models.Submission, error) {
	return f.sub, f.err
}

func (f *fakeSubmissionSrv) List(ctx context.Context, query dto.SubmissionQuery) ([]models.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.sub == nil {
		return []models.Submission{}, nil
	}
	return []models.Submission{*f.sub}, nil
}

func (f *fakeSubmissionSrv) Patch(ctx context.Context, id string, req dto.PatchSubmissionRequest, editedBy string) (*models.Submission, error) {
	f.lastPatch = req
	f.lastEditor = editedBy
	return f.sub, f.err
}

func (f *fakeSubmissionSrv) Archive(ctx context.Context, id, editedBy string) (*models.Submission, error) {
	return f.sub, f.err
}

func (f *fakeSubmissionSrv) Reset(ctx context.Context, id string, req dto.ResetSubmissionRequest, editedBy string) (*models.Submission, error) {
	return f.sub, f.err
}

func (f *fakeSubmissionSrv) Convert(ctx context.Context, id, editedBy string) (*models.Submission, error) {
	return f.sub, f.err
}

func (f *fakeSubmissionSrv) BulkStatus(ctx context.Context, req dto.BulkStatusRequest, editedBy string) []dto.BulkStatusRowResult {
	return f.bulk
}

func (f *fakeSubmissionSrv) AddCommunication(ctx context.Context, id string, req dto.CreateCommunicationRequest, author string) (*models.CommunicationLogEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.CommunicationLogEntry{SubmissionID: id, Kind: models.CommunicationKind(req.Kind)}, nil
}

func (f *fakeSubmissionSrv) ListCommunications(ctx context.Context, id string) ([]models.CommunicationLogEntry, error) {
	return []models.CommunicationLogEntry{}, f.err
}

func (f *fakeSubmissionSrv) History(ctx context.Context, id string) ([]models.EditHistoryEntry, error) {
	return []models.EditHistoryEntry{}, f.err
}

func (f *fakeSubmissionSrv) Undo(ctx context.Context, submissionID, entryID, editedBy string) (*models.Submission, error) {
	return f.sub, f.err
}

func submissionRouter(srv submissionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSubmissionHandler(srv)
	r := gin.New()
	r.POST("/submissions", h.Create)
	r.GET("/submissions", h.List)
	r.GET("/submissions/:id", h.Get)
	r.PATCH("/submissions/:id", h.Patch)
	r.POST("/submissions/:id/archive", h.Archive)
	r.POST("/submissions/bulk-status", h.BulkStatus)
	return r
}

func TestSubmissionCreateValidatesPayload(t *testing.T) {
	r := submissionRouter(&fakeSubmissionSrv{})

	body := bytes.NewBufferString(`{"source":"carrier_pigeon","first_name":"Jo"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmissionCreateReturnsCreated(t *testing.T) {
	srv := &fakeSubmissionSrv{sub: &models.Submission{ID: "sub-1", Status: models.StatusNew}}
	r := submissionRouter(srv)

	body := bytes.NewBufferString(`{"source":"web","first_name":"Jo","last_name":"Smith","ownership_status":"community"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope struct {
		Data models.Submission `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "sub-1", envelope.Data.ID)
}

func TestSubmissionGetNotFound(t *testing.T) {
	r := submissionRouter(&fakeSubmissionSrv{err: appErrors.ErrNotFound})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/submissions/missing", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmissionPatchSurfacesLockContention(t *testing.T) {
	r := submissionRouter(&fakeSubmissionSrv{err: appErrors.ErrLockContention})

	body := bytes.NewBufferString(`{"status":"in_progress"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/submissions/sub-1", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "LOCK_CONTENTION", envelope.Error.Code)
}

func TestSubmissionPatchRecordsAnonymousEditor(t *testing.T) {
	srv := &fakeSubmissionSrv{sub: &models.Submission{ID: "sub-1"}}
	r := submissionRouter(srv)

	body := bytes.NewBufferString(`{"first_name":"Dee"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/submissions/sub-1", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "system", srv.lastEditor)
}

func TestSubmissionBulkStatusReturnsRowResults(t *testing.T) {
	srv := &fakeSubmissionSrv{bulk: []dto.BulkStatusRowResult{
		{ID: "a", OK: true},
		{ID: "b", OK: false, Error: "resource not found"},
	}}
	r := submissionRouter(srv)

	body := bytes.NewBufferString(`{"ids":["a","b"],"status":"in_progress"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions/bulk-status", body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []dto.BulkStatusRowResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2)
	assert.False(t, envelope.Data[1].OK)
}
