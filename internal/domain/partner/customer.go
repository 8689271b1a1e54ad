package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

// Customer represents a billable customer belonging to an account owner
type Customer struct {
	shared.OwnedAggregateRoot
	Name         string `gorm:"size:255;not null"`
	Email        string `gorm:"size:255"`
	Phone        string `gorm:"size:50"`
	AddressLine1 string `gorm:"size:255"`
	AddressLine2 string `gorm:"size:255"`
	City         string `gorm:"size:100"`
	State        string `gorm:"size:100"`
	PostalCode   string `gorm:"size:20"`
	Country      string `gorm:"size:100"`
	TaxID        string `gorm:"size:50"`
	Notes        string
}

// NewCustomer creates a new customer for the given owner
func NewCustomer(ownerID uuid.UUID, name, email string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 255 characters")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Customer email is not valid")
	}

	return &Customer{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               name,
		Email:              strings.ToLower(strings.TrimSpace(email)),
	}, nil
}

// Rename changes the customer name
func (c *Customer) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 255 characters")
	}

	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateContact updates email and phone
func (c *Customer) UpdateContact(email, phone string) error {
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewDomainError("INVALID_EMAIL", "Customer email is not valid")
	}

	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.Phone = strings.TrimSpace(phone)
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateBillingAddress replaces the billing address fields
func (c *Customer) UpdateBillingAddress(line1, line2, city, state, postalCode, country string) {
	c.AddressLine1 = line1
	c.AddressLine2 = line2
	c.City = city
	c.State = state
	c.PostalCode = postalCode
	c.Country = country
	c.UpdatedAt = time.Now()
}

// SetTaxID sets the customer tax identifier
func (c *Customer) SetTaxID(taxID string) {
	c.TaxID = strings.TrimSpace(taxID)
	c.UpdatedAt = time.Now()
}

// SetNotes sets free-form notes on the customer
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
}

// BillingAddress returns the address formatted as display lines,
// skipping empty parts.
func (c *Customer) BillingAddress() []string {
	lines := make([]string, 0, 4)
	if c.AddressLine1 != "" {
		lines = append(lines, c.AddressLine1)
	}
	if c.AddressLine2 != "" {
		lines = append(lines, c.AddressLine2)
	}

	locality := make([]string, 0, 3)
	for _, part := range []string{c.City, c.State, c.PostalCode} {
		if part != "" {
			locality = append(locality, part)
		}
	}
	if len(locality) > 0 {
		lines = append(lines, strings.Join(locality, ", "))
	}
	if c.Country != "" {
		lines = append(lines, c.Country)
	}
	return lines
}
