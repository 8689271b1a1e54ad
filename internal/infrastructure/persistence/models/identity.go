package models

import (
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email        string              `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name         string              `gorm:"type:varchar(255);not null"`
	PasswordHash string              `gorm:"type:varchar(255);not null"`
	Status       identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	Plan         identity.Plan       `gorm:"type:varchar(20);not null;default:'free'"`
	InvoiceCount int                 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Email:             m.Email,
		Name:              m.Name,
		PasswordHash:      m.PasswordHash,
		Status:            m.Status,
		Plan:              m.Plan,
		InvoiceCount:      m.InvoiceCount,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.Name = u.Name
	m.PasswordHash = u.PasswordHash
	m.Status = u.Status
	m.Plan = u.Plan
	m.InvoiceCount = u.InvoiceCount
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
