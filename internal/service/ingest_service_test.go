package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/forgottenfelines/tnr-intake-api/internal/dto"
	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
)

type mockUploadRepo struct {
	uploads map[string]*models.Upload
	byHash  map[string]*models.Upload
	err     error
}

func newMockUploadRepo() *mockUploadRepo {
	return &mockUploadRepo{
		uploads: make(map[string]*models.Upload),
		byHash:  make(map[string]*models.Upload),
	}
}

func (m *mockUploadRepo) Create(ctx context.Context, u *models.Upload) error {
	if m.err != nil {
		return m.err
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("upload-%d", len(m.uploads)+1)
	}
	m.uploads[u.ID] = u
	m.byHash[u.ContentHash] = u
	return nil
}

func (m *mockUploadRepo) GetByID(ctx context.Context, id string) (*models.Upload, error) {
	if u, ok := m.uploads[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUploadRepo) FindByHash(ctx context.Context, hash string) (*models.Upload, error) {
	if u, ok := m.byHash[hash]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUploadRepo) List(ctx context.Context, filter models.UploadFilter) ([]models.Upload, error) {
	out := make([]models.Upload, 0, len(m.uploads))
	for _, u := range m.uploads {
		if !filter.IncludeDeleted && u.Status == models.UploadStatusDeleted {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUploadRepo) SoftDelete(ctx context.Context, id string, minAge time.Duration) error {
	u, ok := m.uploads[id]
	if !ok {
		return appErrors.ErrWrongState
	}
	u.Status = models.UploadStatusDeleted
	return nil
}

func (m *mockUploadRepo) ResetProcessing(ctx context.Context, id string) error {
	u, ok := m.uploads[id]
	if !ok || u.Status != models.UploadStatusProcessing {
		return appErrors.ErrWrongState
	}
	u.Status = models.UploadStatusFailed
	return nil
}

type mockFileStorage struct {
	saved map[string][]byte
	err   error
}

func (m *mockFileStorage) Save(filename string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[filename] = data
	return filename, nil
}

func (m *mockFileStorage) Open(filename string) (*os.File, error) {
	return nil, errors.New("not implemented")
}

func newIngestService(repo *mockUploadRepo, storage *mockFileStorage) *IngestService {
	return NewIngestService(repo, storage, nil, nil, zap.NewNop(), IngestServiceConfig{})
}

func TestIngestStoresFileWithDerivedName(t *testing.T) {
	repo := newMockUploadRepo()
	storage := &mockFileStorage{}
	svc := newIngestService(repo, storage)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	content := []byte("name,cats\nJo,3\n")
	upload, err := svc.Ingest(context.Background(), content, "export.csv", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemAirtable,
		SourceTable:  "submissions",
	})
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])
	assert.Equal(t, hash, upload.ContentHash)
	assert.Equal(t, fmt.Sprintf("airtable_submissions_20260314T093000_%s.csv", hash[:12]), upload.StoredFilename)
	assert.Equal(t, models.UploadStatusPending, upload.Status)
	assert.False(t, upload.StoredInline)
	assert.Nil(t, upload.BatchID)
	assert.Contains(t, storage.saved, "airtable/"+upload.StoredFilename)
}

func TestIngestRejectsDuplicateContent(t *testing.T) {
	repo := newMockUploadRepo()
	svc := newIngestService(repo, &mockFileStorage{})

	content := []byte("same bytes")
	first, err := svc.Ingest(context.Background(), content, "a.csv", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemAirtable,
		SourceTable:  "submissions",
	})
	require.NoError(t, err)

	// Same content under a different name and source must still be refused.
	_, err = svc.Ingest(context.Background(), content, "b.csv", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemWebform,
		SourceTable:  "other",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateContent))

	var dup *DuplicateContentError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, first.ID, dup.ExistingUploadID)
	assert.Len(t, repo.uploads, 1)
}

func TestIngestDerivesBatchIDForMultiFileSource(t *testing.T) {
	svc := newIngestService(newMockUploadRepo(), &mockFileStorage{})

	upload, err := svc.Ingest(context.Background(), []byte("clinic data"), "appts.xlsx", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemClinicHQ,
		SourceTable:  "appointments",
	})
	require.NoError(t, err)
	require.NotNil(t, upload.BatchID)
	assert.NotEmpty(t, *upload.BatchID)

	supplied, err := svc.Ingest(context.Background(), []byte("more clinic data"), "owners.csv", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemClinicHQ,
		SourceTable:  "owners",
		BatchID:      "batch-7",
	})
	require.NoError(t, err)
	require.NotNil(t, supplied.BatchID)
	assert.Equal(t, "batch-7", *supplied.BatchID)
}

func TestIngestFallsBackToExtensionDefault(t *testing.T) {
	svc := newIngestService(newMockUploadRepo(), &mockFileStorage{})

	upload, err := svc.Ingest(context.Background(), []byte("payload"), "export.xlsx", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemAirtable,
		SourceTable:  "submissions",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(upload.StoredFilename, ".csv"))
}

func TestIngestStorageFailureFallsBackInline(t *testing.T) {
	repo := newMockUploadRepo()
	storage := &mockFileStorage{err: errors.New("disk full")}
	svc := newIngestService(repo, storage)

	content := []byte("must not be lost")
	upload, err := svc.Ingest(context.Background(), content, "a.csv", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemAirtable,
		SourceTable:  "submissions",
	})
	require.NoError(t, err)
	assert.True(t, upload.StoredInline)
	assert.Equal(t, content, upload.InlineContent)
}

func TestIngestBothPathsFailingIsStorageFailed(t *testing.T) {
	repo := newMockUploadRepo()
	repo.err = errors.New("db down")
	storage := &mockFileStorage{err: errors.New("disk full")}
	svc := newIngestService(repo, storage)

	_, err := svc.Ingest(context.Background(), []byte("data"), "a.csv", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemAirtable,
		SourceTable:  "submissions",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorageFailed.Code, appErrors.FromError(err).Code)
}

func TestIngestRejectsEmptyAndOversizedFiles(t *testing.T) {
	svc := newIngestService(newMockUploadRepo(), &mockFileStorage{})
	svc.cfg.MaxFileSize = 8

	_, err := svc.Ingest(context.Background(), nil, "a.csv", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemAirtable,
		SourceTable:  "submissions",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Ingest(context.Background(), []byte("far too many bytes"), "a.csv", dto.CreateUploadRequest{
		SourceSystem: models.SourceSystemAirtable,
		SourceTable:  "submissions",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
