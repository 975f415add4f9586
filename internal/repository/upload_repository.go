package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

const uploadColumns = `id, content_hash, original_filename, stored_filename, size_bytes,
	batch_id, source_system, source_table, status, error_message,
	inline_content, stored_inline, uploaded_at`

// UploadRepository persists ingested source files.
type UploadRepository struct {
	db           *sqlx.DB
	guardTimeout time.Duration
}

// NewUploadRepository constructs the repository.
func NewUploadRepository(db *sqlx.DB, guardTimeout time.Duration) *UploadRepository {
	if guardTimeout <= 0 {
		guardTimeout = DefaultGuardTimeout
	}
	return &UploadRepository{db: db, guardTimeout: guardTimeout}
}

// Create inserts a new upload row with status pending.
func (r *UploadRepository) Create(ctx context.Context, u *models.Upload) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = models.UploadStatusPending
	}
	if u.UploadedAt.IsZero() {
		u.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO uploads (` + uploadColumns + `) VALUES (
		:id, :content_hash, :original_filename, :stored_filename, :size_bytes,
		:batch_id, :source_system, :source_table, :status, :error_message,
		:inline_content, :stored_inline, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	return nil
}

// GetByID fetches an upload by identifier.
func (r *UploadRepository) GetByID(ctx context.Context, id string) (*models.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE id = $1`
	var u models.Upload
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByHash looks up the upload admitted for a content hash, including
// soft-deleted rows. Deduplication is by content, not by filename.
func (r *UploadRepository) FindByHash(ctx context.Context, hash string) (*models.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE content_hash = $1`
	var u models.Upload
	if err := r.db.GetContext(ctx, &u, query, hash); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns uploads matching the filter, newest first. Soft-deleted rows
// are hidden unless explicitly requested.
func (r *UploadRepository) List(ctx context.Context, filter models.UploadFilter) ([]models.Upload, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + uploadColumns + ` FROM uploads`)

	args := make([]interface{}, 0, 3)
	conditions := make([]string, 0, 4)
	if !filter.IncludeDeleted {
		conditions = append(conditions, "status <> 'deleted'")
	}
	if filter.SourceSystem != "" {
		args = append(args, filter.SourceSystem)
		conditions = append(conditions, fmt.Sprintf("source_system = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.BatchID != "" {
		args = append(args, filter.BatchID)
		conditions = append(conditions, fmt.Sprintf("batch_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY uploaded_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var uploads []models.Upload
	if err := r.db.SelectContext(ctx, &uploads, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, nil
}

// SoftDelete marks an upload deleted and suffixes its error message. Allowed
// for terminal statuses, or for processing uploads older than minAge (a stuck
// import). The WHERE clause carries the precondition so an ineligible row
// reports wrong state, and the guard distinguishes a held row.
func (r *UploadRepository) SoftDelete(ctx context.Context, id string, minAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-minAge)
	const query = `UPDATE uploads SET status = 'deleted',
		error_message = COALESCE(error_message, '') || ' [Removed by staff]'
		WHERE id = $1 AND status <> 'deleted'
		AND (status IN ('completed', 'failed', 'expired') OR (status = 'processing' AND uploaded_at < $2))`
	return GuardedExec(ctx, r.guardTimeout, func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, id, cutoff)
	})
}

// ResetProcessing moves a stuck processing upload to failed.
func (r *UploadRepository) ResetProcessing(ctx context.Context, id string) error {
	const query = `UPDATE uploads SET status = 'failed',
		error_message = 'Reset by staff while processing'
		WHERE id = $1 AND status = 'processing'`
	return GuardedExec(ctx, r.guardTimeout, func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, id)
	})
}
