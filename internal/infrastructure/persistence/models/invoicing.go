package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/invoicing"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared/valueobject"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// The unique index on (owner_id, invoice_number) backs the per-owner
// number sequence; a violation maps to shared.ErrDuplicateNumber.
type InvoiceModel struct {
	AggregateModel
	OwnerID        uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_owner_number,priority:1"`
	InvoiceNumber  string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_owner_number,priority:2"`
	CustomerID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	Status         invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	IssueDate      time.Time               `gorm:"not null"`
	DueDate        time.Time               `gorm:"not null"`
	PaidDate       *time.Time
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	TaxRate        decimal.Decimal      `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountRate   decimal.Decimal      `gorm:"type:decimal(5,2);not null;default:0"`
	Notes          string               `gorm:"type:text"`
	Subtotal       decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Total          decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Items          []InvoiceItemModel   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is the persistence model for an invoice line item.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitRate    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *InvoiceItemModel) ToDomain() invoicing.LineItem {
	return invoicing.LineItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitRate:    m.UnitRate,
		Amount:      m.Amount,
		Position:    m.Position,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	items := make([]invoicing.LineItem, len(m.Items))
	for i := range m.Items {
		items[i] = m.Items[i].ToDomain()
	}

	return &invoicing.Invoice{
		OwnedAggregateRoot: shared.OwnedAggregateRoot{
			BaseAggregateRoot: m.ToDomainAggregateRoot(),
			OwnerID:           m.OwnerID,
		},
		InvoiceNumber:      m.InvoiceNumber,
		CustomerID:         m.CustomerID,
		Status:             m.Status,
		IssueDate:          m.IssueDate,
		DueDate:            m.DueDate,
		PaidDate:           m.PaidDate,
		Currency:           m.Currency,
		TaxRate:            m.TaxRate,
		DiscountRate:       m.DiscountRate,
		Notes:              m.Notes,
		Items:              items,
		Subtotal:           m.Subtotal,
		TaxAmount:          m.TaxAmount,
		DiscountAmount:     m.DiscountAmount,
		Total:              m.Total,
	}
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.OwnerID = inv.OwnerID
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.Status = inv.Status
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.PaidDate = inv.PaidDate
	m.Currency = inv.Currency
	m.TaxRate = inv.TaxRate
	m.DiscountRate = inv.DiscountRate
	m.Notes = inv.Notes
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.DiscountAmount = inv.DiscountAmount
	m.Total = inv.Total

	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = InvoiceItemModel{
			BaseModel: BaseModel{
				ID:        item.ID,
				CreatedAt: item.CreatedAt,
				UpdatedAt: item.UpdatedAt,
			},
			InvoiceID:   inv.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitRate:    item.UnitRate,
			Amount:      item.Amount,
			Position:    item.Position,
		}
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice aggregate.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
