package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/identity"
)

// RegisterInput contains the input for account registration
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains tokens and user info after login or registration
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned to clients
type UserInfo struct {
	ID                uuid.UUID
	Email             string
	Name              string
	Plan              string
	InvoiceCount      int
	InvoicesRemaining *int // nil for unlimited plans
}

// ToUserInfo maps a user aggregate to its response representation
func ToUserInfo(user *identity.User) UserInfo {
	info := UserInfo{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Plan:         string(user.Plan),
		InvoiceCount: user.InvoiceCount,
	}
	if user.Plan == identity.PlanFree {
		remaining := identity.FreeInvoiceLimit - user.InvoiceCount
		if remaining < 0 {
			remaining = 0
		}
		info.InvoicesRemaining = &remaining
	}
	return info
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string // JWT ID of the access token to revoke
	TokenTTL time.Duration
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// GetCurrentUserInput contains the input for getting current user info
type GetCurrentUserInput struct {
	UserID uuid.UUID
}
