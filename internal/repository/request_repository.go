package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

// RequestRepository creates trapping-request rows for converted submissions.
// The submission side of the link is written separately, guarded by its
// set-once predicate.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// CreateRequest inserts a trapping request seeded from the submission and
// returns its id.
func (r *RequestRepository) CreateRequest(ctx context.Context, s *models.Submission) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trapping_requests (
			id, submission_id, requester_name, requester_phone, requester_email,
			address, city, zip, county, cat_count, triage_category, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())`,
		id, s.ID, s.FirstName+" "+s.LastName, s.Phone, s.Email,
		s.Address, s.City, s.Zip, s.County, s.CatCount, s.TriageCategory,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}
