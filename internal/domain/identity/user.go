package identity

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

const bcryptCost = 12

// FreeInvoiceLimit caps how many invoices a free plan account may hold
const FreeInvoiceLimit = 3

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// Plan represents the subscription plan of a user account
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// IsValid checks if the plan is known
func (p Plan) IsValid() bool {
	return p == PlanFree || p == PlanPro
}

// User represents an account owner. Users authenticate with email and
// password and own their customers and invoices.
type User struct {
	shared.BaseAggregateRoot
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	Name         string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Status       UserStatus
	Plan         Plan
	InvoiceCount int // Current number of invoices, maintained by the invoice service
}

// NewUser creates a new active user on the free plan
func NewUser(email, name, password string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "A valid email address is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		PasswordHash:      string(hash),
		Status:            UserStatusActive,
		Plan:              PlanFree,
	}, nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate verifies the password against the stored hash
func (u *User) Authenticate(password string) error {
	if u.Status != UserStatusActive {
		return shared.NewDomainError("ACCOUNT_SUSPENDED", "Account is suspended")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	return nil
}

// ChangePassword verifies the current password and sets a new one
func (u *User) ChangePassword(current, updated string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)); err != nil {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if len(updated) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(updated), bcryptCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	u.IncrementVersion()
	return nil
}

// CanCreateInvoice reports whether the plan quota allows another invoice.
// Pro accounts are unlimited; free accounts are capped at FreeInvoiceLimit.
func (u *User) CanCreateInvoice() bool {
	if u.Plan == PlanPro {
		return true
	}
	return u.InvoiceCount < FreeInvoiceLimit
}

// IncrementInvoiceCount bumps the owned invoice counter
func (u *User) IncrementInvoiceCount() {
	u.InvoiceCount++
	u.IncrementVersion()
}

// DecrementInvoiceCount lowers the owned invoice counter, never below zero
func (u *User) DecrementInvoiceCount() {
	if u.InvoiceCount > 0 {
		u.InvoiceCount--
	}
	u.IncrementVersion()
}

// ChangePlan switches the subscription plan
func (u *User) ChangePlan(plan Plan) error {
	if !plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Unknown subscription plan")
	}
	u.Plan = plan
	u.IncrementVersion()
	return nil
}

// Suspend deactivates the account
func (u *User) Suspend() {
	u.Status = UserStatusSuspended
	u.IncrementVersion()
}

// Activate reactivates the account
func (u *User) Activate() {
	u.Status = UserStatusActive
	u.IncrementVersion()
}

// IsActive returns true if the account is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
