package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/nasrosoft/invoice-generator-saas/internal/application/identity"
)

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=1,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest is the payload for token refresh. The token may
// also be supplied via the refresh token cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest is the payload for a password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// UserResponse carries user account details
type UserResponse struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Plan              string    `json:"plan"`
	InvoiceCount      int       `json:"invoice_count"`
	InvoicesRemaining *int      `json:"invoices_remaining"`
}

// AuthResponse is returned from login and registration
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

func toUserResponse(info identity.UserInfo) UserResponse {
	return UserResponse{
		ID:                info.ID,
		Email:             info.Email,
		Name:              info.Name,
		Plan:              info.Plan,
		InvoiceCount:      info.InvoiceCount,
		InvoicesRemaining: info.InvoicesRemaining,
	}
}
