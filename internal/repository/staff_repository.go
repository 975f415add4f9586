package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
)

// StaffRepository looks up staff accounts for authentication.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs the repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// FindByEmail fetches a staff account by email address.
func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	const query = `SELECT id, email, password_hash, full_name, role, active, last_login, created_at
		FROM staff WHERE email = $1`
	var s models.Staff
	if err := r.db.GetContext(ctx, &s, query, email); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByID fetches a staff account by identifier.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	const query = `SELECT id, email, password_hash, full_name, role, active, last_login, created_at
		FROM staff WHERE id = $1`
	var s models.Staff
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateLastLogin records a successful login.
func (r *StaffRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE staff SET last_login = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, ts, id)
	return err
}
