package dto

import "github.com/forgottenfelines/tnr-intake-api/internal/models"

// LoginRequest holds staff credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the issued token and staff info.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	Staff       models.Staff `json:"staff"`
}
