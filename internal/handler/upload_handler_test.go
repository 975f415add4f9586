package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgottenfelines/tnr-intake-api/internal/dto"
	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	"github.com/forgottenfelines/tnr-intake-api/internal/service"
	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
)

type fakeUploadSrv struct {
	upload   *models.Upload
	err      error
	lastMeta dto.CreateUploadRequest
	content  []byte
}

func (f *fakeUploadSrv) Ingest(ctx context.Context, content []byte, originalFilename string, meta dto.CreateUploadRequest) (*models.Upload, error) {
	f.lastMeta = meta
	f.content = content
	return f.upload, f.err
}

func (f *fakeUploadSrv) Get(ctx context.Context, id string) (*models.Upload, error) {
	return f.upload, f.err
}

func (f *fakeUploadSrv) List(ctx context.Context, query dto.UploadQuery) ([]models.Upload, error) {
	return []models.Upload{}, f.err
}

func (f *fakeUploadSrv) Delete(ctx context.Context, id string) error { return f.err }
func (f *fakeUploadSrv) Reset(ctx context.Context, id string) error  { return f.err }

func (f *fakeUploadSrv) DownloadURL(ctx context.Context, id string) (string, time.Time, error) {
	return "tok", time.Now().Add(time.Minute), f.err
}

func (f *fakeUploadSrv) Download(ctx context.Context, id, token string) (*models.Upload, io.ReadCloser, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.upload, io.NopCloser(bytes.NewReader(f.content)), nil
}

func uploadRouter(srv uploadService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUploadHandler(srv)
	r := gin.New()
	r.POST("/uploads", h.Create)
	r.GET("/uploads/:id", h.Get)
	r.DELETE("/uploads/:id", h.Delete)
	return r
}

func multipartUpload(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUploadCreateIngestsMultipart(t *testing.T) {
	srv := &fakeUploadSrv{upload: &models.Upload{ID: "upload-1", Status: models.UploadStatusPending}}
	r := uploadRouter(srv)

	body, contentType := multipartUpload(t, "export.csv", []byte("a,b\n1,2\n"), map[string]string{
		"source_system": "airtable",
		"source_table":  "submissions",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "airtable", srv.lastMeta.SourceSystem)
	assert.Equal(t, []byte("a,b\n1,2\n"), srv.content)
}

func TestUploadCreateRequiresFile(t *testing.T) {
	r := uploadRouter(&fakeUploadSrv{})

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.WriteField("source_system", "airtable"))
	require.NoError(t, w.WriteField("source_table", "submissions"))
	require.NoError(t, w.Close())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadCreateDuplicateCarriesExistingID(t *testing.T) {
	srv := &fakeUploadSrv{err: &service.DuplicateContentError{ExistingUploadID: "upload-7"}}
	r := uploadRouter(srv)

	body, contentType := multipartUpload(t, "export.csv", []byte("same"), map[string]string{
		"source_system": "airtable",
		"source_table":  "submissions",
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "DUPLICATE_CONTENT", envelope.Error.Code)
	assert.Equal(t, "upload-7", envelope.Meta["existing_upload_id"])
}

func TestUploadDeleteWrongStateIsNotFound(t *testing.T) {
	r := uploadRouter(&fakeUploadSrv{err: appErrors.ErrWrongState})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/uploads/upload-1", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
