package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StaffRole represents the available staff roles.
type StaffRole string

const (
	RoleAdmin        StaffRole = "ADMIN"
	RoleCoordinator  StaffRole = "COORDINATOR"
	RoleReceptionist StaffRole = "RECEPTIONIST"
)

// Staff represents a staff account stored in the staff table. Staff identity
// is recorded on every edit-history entry.
type Staff struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         StaffRole  `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// JWTClaims carries the staff identity inside access tokens.
type JWTClaims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Role   StaffRole `json:"role"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
