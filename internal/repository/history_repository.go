package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

// HistoryRepository persists the append-only edit history. Entries are never
// updated or deleted.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create appends one edit-history entry.
func (r *HistoryRepository) Create(ctx context.Context, e *models.EditHistoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO edit_history
		(id, submission_id, field, old_value, new_value, edited_by, reason, created_at)
		VALUES (:id, :submission_id, :field, :old_value, :new_value, :edited_by, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("create edit history entry: %w", err)
	}
	return nil
}

// GetByID fetches a single history entry.
func (r *HistoryRepository) GetByID(ctx context.Context, id string) (*models.EditHistoryEntry, error) {
	const query = `SELECT id, submission_id, field, old_value, new_value, edited_by, reason, created_at
		FROM edit_history WHERE id = $1`
	var e models.EditHistoryEntry
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListBySubmission returns the edit history for a submission, newest first.
func (r *HistoryRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.EditHistoryEntry, error) {
	const query = `SELECT id, submission_id, field, old_value, new_value, edited_by, reason, created_at
		FROM edit_history WHERE submission_id = $1 ORDER BY created_at DESC`
	var entries []models.EditHistoryEntry
	if err := r.db.SelectContext(ctx, &entries, query, submissionID); err != nil {
		return nil, fmt.Errorf("list edit history: %w", err)
	}
	return entries, nil
}
