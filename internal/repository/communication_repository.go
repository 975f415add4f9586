package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

// CommunicationRepository persists the append-only communication log.
type CommunicationRepository struct {
	db *sqlx.DB
}

// NewCommunicationRepository constructs the repository.
func NewCommunicationRepository(db *sqlx.DB) *CommunicationRepository {
	return &CommunicationRepository{db: db}
}

// Create appends one communication-log entry.
func (r *CommunicationRepository) Create(ctx context.Context, e *models.CommunicationLogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO communication_log
		(id, submission_id, kind, method, result, notes, author, created_at)
		VALUES (:id, :submission_id, :kind, :method, :result, :notes, :author, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("create communication entry: %w", err)
	}
	return nil
}

// ListBySubmission returns the communication log for a submission, newest first.
func (r *CommunicationRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.CommunicationLogEntry, error) {
	const query = `SELECT id, submission_id, kind, method, result, notes, author, created_at
		FROM communication_log WHERE submission_id = $1 ORDER BY created_at DESC`
	var entries []models.CommunicationLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, submissionID); err != nil {
		return nil, fmt.Errorf("list communication log: %w", err)
	}
	return entries, nil
}
