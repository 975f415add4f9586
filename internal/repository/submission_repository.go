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

const submissionColumns = `id, submitted_at, source, is_test,
	first_name, last_name, email, phone,
	address, city, zip, county, place_id,
	ownership_status, cat_count, fixed_status, has_kittens, kitten_count, kitten_age,
	medical_concern, medical_description, is_emergency,
	third_party_report, reporter_relationship, property_owner_contact, awareness_months,
	triage_category, triage_score, triage_reasons,
	status, appointment_date, priority_override,
	contact_status, legacy_status, legacy_appointment_date, legacy_notes,
	contact_attempts, last_contacted_at, created_request_id,
	created_at, updated_at`

// SubmissionRepository persists intake submissions. Every single-row write
// goes through the mutation guard.
type SubmissionRepository struct {
	db           *sqlx.DB
	guardTimeout time.Duration
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB, guardTimeout time.Duration) *SubmissionRepository {
	if guardTimeout <= 0 {
		guardTimeout = DefaultGuardTimeout
	}
	return &SubmissionRepository{db: db, guardTimeout: guardTimeout}
}

// Create inserts a new submission row.
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = now
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = models.StatusNew
	}
	const query = `INSERT INTO submissions (` + submissionColumns + `) VALUES (
		:id, :submitted_at, :source, :is_test,
		:first_name, :last_name, :email, :phone,
		:address, :city, :zip, :county, :place_id,
		:ownership_status, :cat_count, :fixed_status, :has_kittens, :kitten_count, :kitten_age,
		:medical_concern, :medical_description, :is_emergency,
		:third_party_report, :reporter_relationship, :property_owner_contact, :awareness_months,
		:triage_category, :triage_score, :triage_reasons,
		:status, :appointment_date, :priority_override,
		:contact_status, :legacy_status, :legacy_appointment_date, :legacy_notes,
		:contact_attempts, :last_contacted_at, :created_request_id,
		:created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// GetByID fetches a submission by identifier.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	var s models.Submission
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns submissions matching the queue filter. Mode is a named view,
// not a raw status equality; test submissions only appear in the test view.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + submissionColumns + ` FROM submissions`)

	args := make([]interface{}, 0, 4)
	conditions := modeConditions(filter.Mode)

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("triage_category = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR address ILIKE $%d OR city ILIKE $%d)",
			n, n, n, n, n, n))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}

	// Priority override is applied at sort time only; it never touches the
	// stored score or category.
	builder.WriteString(` ORDER BY CASE priority_override
		WHEN 'high' THEN 0
		WHEN 'low' THEN 2
		ELSE 1 END,
		triage_score DESC NULLS LAST, submitted_at DESC`)

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}

func modeConditions(mode models.QueueMode) []string {
	switch mode {
	case models.ModeAttention:
		return []string{"status IN ('new', 'in_progress')", "created_request_id IS NULL", "is_test = FALSE"}
	case models.ModeScheduled:
		return []string{"status = 'scheduled'", "is_test = FALSE"}
	case models.ModeRecent:
		return []string{"submitted_at > NOW() - INTERVAL '30 days'", "status <> 'archived'", "is_test = FALSE"}
	case models.ModeComplete:
		return []string{"status = 'complete'", "is_test = FALSE"}
	case models.ModeLegacy:
		return []string{"source = 'legacy_import'", "is_test = FALSE"}
	case models.ModeTest:
		return []string{"is_test = TRUE"}
	case models.ModeAll:
		fallthrough
	default:
		return []string{"status <> 'archived'", "is_test = FALSE"}
	}
}

// Update rewrites the mutable columns of a submission. Last write wins; there
// is no version token. Guarded so a held row reports contention.
func (r *SubmissionRepository) Update(ctx context.Context, s *models.Submission) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE submissions SET
		first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
		address = :address, city = :city, zip = :zip, county = :county, place_id = :place_id,
		ownership_status = :ownership_status, cat_count = :cat_count, fixed_status = :fixed_status,
		has_kittens = :has_kittens, kitten_count = :kitten_count, kitten_age = :kitten_age,
		medical_concern = :medical_concern, medical_description = :medical_description,
		is_emergency = :is_emergency, third_party_report = :third_party_report,
		reporter_relationship = :reporter_relationship, property_owner_contact = :property_owner_contact,
		awareness_months = :awareness_months,
		triage_category = :triage_category, triage_score = :triage_score, triage_reasons = :triage_reasons,
		status = :status, appointment_date = :appointment_date, priority_override = :priority_override,
		contact_status = :contact_status, legacy_status = :legacy_status,
		legacy_appointment_date = :legacy_appointment_date, legacy_notes = :legacy_notes,
		is_test = :is_test, updated_at = :updated_at
		WHERE id = :id`
	return GuardedExec(ctx, r.guardTimeout, func() (sql.Result, error) {
		return r.db.NamedExecContext(ctx, query, s)
	})
}

// UpdateStatusFields writes only the lifecycle columns, used by single-row
// transitions and the per-row legs of bulk updates.
func (r *SubmissionRepository) UpdateStatusFields(ctx context.Context, s *models.Submission) error {
	s.UpdatedAt = time.Now().UTC()
	const query = `UPDATE submissions SET
		status = :status, appointment_date = :appointment_date,
		contact_status = :contact_status, legacy_status = :legacy_status,
		legacy_appointment_date = :legacy_appointment_date, updated_at = :updated_at
		WHERE id = :id`
	return GuardedExec(ctx, r.guardTimeout, func() (sql.Result, error) {
		return r.db.NamedExecContext(ctx, query, s)
	})
}

// SetCreatedRequestID links the submission to its trapping request. The
// WHERE clause makes the linkage set-once; a second convert reports wrong
// state.
func (r *SubmissionRepository) SetCreatedRequestID(ctx context.Context, id, requestID string) error {
	const query = `UPDATE submissions SET created_request_id = $1, updated_at = $2
		WHERE id = $3 AND created_request_id IS NULL`
	return GuardedExec(ctx, r.guardTimeout, func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, requestID, time.Now().UTC(), id)
	})
}

// RecordContactAttempt bumps the contact-attempt counter and last-contacted
// timestamp after a successful contact-attempt submit.
func (r *SubmissionRepository) RecordContactAttempt(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE submissions SET contact_attempts = contact_attempts + 1,
		last_contacted_at = $1, updated_at = $1 WHERE id = $2`
	return GuardedExec(ctx, r.guardTimeout, func() (sql.Result, error) {
		return r.db.ExecContext(ctx, query, at, id)
	})
}
