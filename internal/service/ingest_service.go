package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forgottenfelines/tnr-intake-api/internal/dto"
	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
)

type uploadStore interface {
	Create(ctx context.Context, u *models.Upload) error
	GetByID(ctx context.Context, id string) (*models.Upload, error)
	FindByHash(ctx context.Context, hash string) (*models.Upload, error)
	List(ctx context.Context, filter models.UploadFilter) ([]models.Upload, error)
	SoftDelete(ctx context.Context, id string, minAge time.Duration) error
	ResetProcessing(ctx context.Context, id string) error
}

// UploadFileStorage is the durable file store ingestion writes to.
type UploadFileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type uploadSigner interface {
	Generate(uploadID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (uploadID, relPath string, expiresAt time.Time, err error)
}

type ingestMetrics interface {
	ObserveIngest(outcome string)
}

// DuplicateContentError reports an ingestion rejected because the exact bytes
// were admitted before. It carries the existing upload id for the caller.
type DuplicateContentError struct {
	ExistingUploadID string
}

// Error implements the error interface.
func (e *DuplicateContentError) Error() string {
	return fmt.Sprintf("content already ingested as upload %s", e.ExistingUploadID)
}

// Unwrap ties the error into the shared taxonomy.
func (e *DuplicateContentError) Unwrap() error {
	return appErrors.ErrDuplicateContent
}

// acceptedExtensions lists the file extensions each source system exports.
// The first entry is the fallback for unrecognized extensions.
var acceptedExtensions = map[string][]string{
	models.SourceSystemAirtable: {"csv"},
	models.SourceSystemClinicHQ: {"csv", "xlsx"},
	models.SourceSystemWebform:  {"json", "csv"},
}

// multiFileSources are source systems whose exports arrive as correlated
// multi-file sets; ingestion derives a batch id when none is supplied.
var multiFileSources = map[string]bool{
	models.SourceSystemClinicHQ: true,
}

// IngestServiceConfig tunes ingestion behaviour.
type IngestServiceConfig struct {
	DeleteMinAge time.Duration
	MaxFileSize  int64
}

// IngestService admits uploaded source files exactly once by content hash.
type IngestService struct {
	repo    uploadStore
	storage UploadFileStorage
	signer  uploadSigner
	metrics ingestMetrics
	logger  *zap.Logger
	cfg     IngestServiceConfig
	now     func() time.Time
}

// NewIngestService constructs the service. A nil storage means the durable
// file path is unavailable and every ingest falls back to inline storage.
func NewIngestService(repo uploadStore, storage UploadFileStorage, signer uploadSigner, metrics ingestMetrics, logger *zap.Logger, cfg IngestServiceConfig) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DeleteMinAge <= 0 {
		cfg.DeleteMinAge = time.Hour
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 25 * 1024 * 1024
	}
	return &IngestService{
		repo:    repo,
		storage: storage,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Ingest admits raw uploaded bytes. The content hash is computed before any
// other side effect; an exact repeat fails with DuplicateContentError no
// matter what filename or source it arrives under.
func (s *IngestService) Ingest(ctx context.Context, content []byte, originalFilename string, meta dto.CreateUploadRequest) (*models.Upload, error) {
	if len(content) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if int64(len(content)) > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	existing, err := s.repo.FindByHash(ctx, hash)
	if err == nil {
		s.observe("duplicate")
		return nil, &DuplicateContentError{ExistingUploadID: existing.ID}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check content hash")
	}

	batchID := strings.TrimSpace(meta.BatchID)
	if batchID == "" && multiFileSources[meta.SourceSystem] {
		batchID = uuid.NewString()
	}

	storedFilename := s.storedFilename(meta.SourceSystem, meta.SourceTable, originalFilename, hash)

	upload := &models.Upload{
		ContentHash:      hash,
		OriginalFilename: originalFilename,
		StoredFilename:   storedFilename,
		SizeBytes:        int64(len(content)),
		SourceSystem:     meta.SourceSystem,
		SourceTable:      meta.SourceTable,
		Status:           models.UploadStatusPending,
		UploadedAt:       s.now(),
	}
	if batchID != "" {
		upload.BatchID = &batchID
	}

	// Durable file write first; a failure there degrades to inline storage
	// in the row. Only both paths failing is an ingestion error.
	wroteFile := false
	if s.storage != nil {
		if _, err := s.storage.Save(filepath.Join(meta.SourceSystem, storedFilename), content); err != nil {
			s.logger.Warn("upload file write failed; falling back to inline storage",
				zap.String("stored_filename", storedFilename), zap.Error(err))
		} else {
			wroteFile = true
		}
	}
	if !wroteFile {
		upload.InlineContent = content
		upload.StoredInline = true
	}

	if err := s.repo.Create(ctx, upload); err != nil {
		s.observe("failed")
		if upload.StoredInline {
			return nil, appErrors.Wrap(err, appErrors.ErrStorageFailed.Code, appErrors.ErrStorageFailed.Status, appErrors.ErrStorageFailed.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record upload")
	}

	s.observe("ingested")
	return upload, nil
}

// storedFilename derives the deterministic target name
// {source}_{table}_{timestamp}_{hash-prefix}.{ext}, validating the extension
// against the source's accepted set.
func (s *IngestService) storedFilename(sourceSystem, sourceTable, originalFilename, hash string) string {
	accepted := acceptedExtensions[sourceSystem]
	if len(accepted) == 0 {
		accepted = []string{"csv"}
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalFilename), "."))
	valid := false
	for _, a := range accepted {
		if ext == a {
			valid = true
			break
		}
	}
	if !valid {
		ext = accepted[0]
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s",
		sourceSystem, sourceTable, s.now().Format("20060102T150405"), hash[:12], ext)
}

// Get returns one upload.
func (s *IngestService) Get(ctx context.Context, id string) (*models.Upload, error) {
	upload, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load upload")
	}
	return upload, nil
}

// List returns uploads matching the query.
func (s *IngestService) List(ctx context.Context, query dto.UploadQuery) ([]models.Upload, error) {
	uploads, err := s.repo.List(ctx, models.UploadFilter{
		SourceSystem:   query.SourceSystem,
		Status:         models.UploadStatus(query.Status),
		BatchID:        query.BatchID,
		IncludeDeleted: query.IncludeDeleted,
		Limit:          query.Limit,
		Offset:         query.Offset,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list uploads")
	}
	return uploads, nil
}

// Delete soft-deletes an upload. The state precondition lives in the SQL;
// staged data derived from the file is never removed.
func (s *IngestService) Delete(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id, s.cfg.DeleteMinAge)
}

// Reset moves a stuck processing upload to failed.
func (s *IngestService) Reset(ctx context.Context, id string) error {
	return s.repo.ResetProcessing(ctx, id)
}

// DownloadURL issues a signed token for fetching the original file bytes.
func (s *IngestService) DownloadURL(ctx context.Context, id string) (string, time.Time, error) {
	upload, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if upload.Status == models.UploadStatusDeleted {
		return "", time.Time{}, appErrors.ErrNotFound
	}
	return s.signer.Generate(upload.ID, filepath.Join(upload.SourceSystem, upload.StoredFilename))
}

// Download validates the token and returns the file content, reading from
// disk or from the inline fallback depending on where ingestion landed it.
func (s *IngestService) Download(ctx context.Context, id, token string) (*models.Upload, io.ReadCloser, error) {
	tokenID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil || tokenID != id {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download token")
	}
	upload, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if upload.StoredInline {
		return upload, io.NopCloser(bytes.NewReader(upload.InlineContent)), nil
	}
	if s.storage == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrInternal, "file storage unavailable")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "stored file missing")
	}
	return upload, file, nil
}

func (s *IngestService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveIngest(outcome)
	}
}
