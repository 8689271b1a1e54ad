package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

const maxDescriptionLength = 200

// LineItem represents a billable line on an invoice.
// Amount is always derived from Quantity and UnitRate; client-supplied
// amounts are never trusted.
type LineItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitRate    decimal.Decimal
	Amount      decimal.Decimal // Quantity * UnitRate, rounded to 2 places
	Position    int             // Display order on the invoice
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewLineItem creates a new invoice line item
func NewLineItem(invoiceID uuid.UUID, description string, quantity, unitRate decimal.Decimal, position int) (*LineItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line item description cannot be empty")
	}
	if len(description) > maxDescriptionLength {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line item description cannot exceed 200 characters")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Unit rate cannot be negative")
	}

	now := time.Now()
	return &LineItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Description: description,
		Quantity:    quantity,
		UnitRate:    unitRate,
		Amount:      quantity.Mul(unitRate).Round(2),
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateQuantity updates the item quantity and recalculates the amount
func (i *LineItem) UpdateQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	i.Quantity = quantity
	i.Amount = quantity.Mul(i.UnitRate).Round(2)
	i.UpdatedAt = time.Now()

	return nil
}

// UpdateUnitRate updates the unit rate and recalculates the amount
func (i *LineItem) UpdateUnitRate(unitRate decimal.Decimal) error {
	if unitRate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Unit rate cannot be negative")
	}

	i.UnitRate = unitRate
	i.Amount = i.Quantity.Mul(unitRate).Round(2)
	i.UpdatedAt = time.Now()

	return nil
}
