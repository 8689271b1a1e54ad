package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/invoicing"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

// dateLayout is the wire format for invoice dates
const dateLayout = "2006-01-02"

// InvoiceItemRequest represents a single line item in a create or update request
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required,notblank,max=200"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitRate    decimal.Decimal `json:"unit_rate"`
}

// CreateInvoiceRequest represents a request to create a new invoice
type CreateInvoiceRequest struct {
	CustomerID   uuid.UUID            `json:"customer_id" binding:"required"`
	IssueDate    string               `json:"issue_date" binding:"required,datetime=2006-01-02"`
	DueDate      string               `json:"due_date" binding:"required,datetime=2006-01-02"`
	Currency     string               `json:"currency" binding:"omitempty,oneof=USD EUR GBP CAD AUD"`
	TaxRate      decimal.Decimal      `json:"tax_rate"`
	DiscountRate decimal.Decimal      `json:"discount_rate"`
	Notes        string               `json:"notes"`
	Items        []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest represents a request to update an invoice.
// Nil fields are left unchanged; a non-nil Items replaces all line items.
type UpdateInvoiceRequest struct {
	CustomerID   *uuid.UUID            `json:"customer_id"`
	IssueDate    *string               `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate      *string               `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	TaxRate      *decimal.Decimal      `json:"tax_rate"`
	DiscountRate *decimal.Decimal      `json:"discount_rate"`
	Notes        *string               `json:"notes"`
	Items        *[]InvoiceItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

// UpdateStatusRequest represents a request to change an invoice's status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft sent paid overdue cancelled"`
}

// InvoiceListFilter represents filter options for invoice list
type InvoiceListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=draft sent paid overdue cancelled"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"limit" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceItemResponse represents a line item in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitRate    decimal.Decimal `json:"unit_rate"`
	Amount      decimal.Decimal `json:"amount"`
	Position    int             `json:"position"`
}

// InvoiceResponse represents a full invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	CustomerID     uuid.UUID             `json:"customer_id"`
	Status         string                `json:"status"`
	IssueDate      string                `json:"issue_date"`
	DueDate        string                `json:"due_date"`
	PaidDate       *string               `json:"paid_date"`
	Currency       string                `json:"currency"`
	TaxRate        decimal.Decimal       `json:"tax_rate"`
	DiscountRate   decimal.Decimal       `json:"discount_rate"`
	Notes          string                `json:"notes"`
	Items          []InvoiceItemResponse `json:"items"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	Total          decimal.Decimal       `json:"total"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

// InvoiceListResponse represents a list item for invoices
type InvoiceListResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Status        string          `json:"status"`
	IssueDate     string          `json:"issue_date"`
	DueDate       string          `json:"due_date"`
	Currency      string          `json:"currency"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StatusSummaryResponse reports invoice counts per status for an owner
type StatusSummaryResponse struct {
	Draft     int64 `json:"draft"`
	Sent      int64 `json:"sent"`
	Paid      int64 `json:"paid"`
	Overdue   int64 `json:"overdue"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitRate:    item.UnitRate,
			Amount:      item.Amount,
			Position:    item.Position,
		}
	}

	var paidDate *string
	if inv.PaidDate != nil {
		d := inv.PaidDate.Format(dateLayout)
		paidDate = &d
	}

	return InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		CustomerID:     inv.CustomerID,
		Status:         string(inv.Status),
		IssueDate:      inv.IssueDate.Format(dateLayout),
		DueDate:        inv.DueDate.Format(dateLayout),
		PaidDate:       paidDate,
		Currency:       string(inv.Currency),
		TaxRate:        inv.TaxRate,
		DiscountRate:   inv.DiscountRate,
		Notes:          inv.Notes,
		Items:          items,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		Total:          inv.Total,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Version:        inv.Version,
	}
}

// ToInvoiceListResponse converts a domain Invoice to InvoiceListResponse
func ToInvoiceListResponse(inv *invoicing.Invoice) InvoiceListResponse {
	return InvoiceListResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		Status:        string(inv.Status),
		IssueDate:     inv.IssueDate.Format(dateLayout),
		DueDate:       inv.DueDate.Format(dateLayout),
		Currency:      string(inv.Currency),
		Total:         inv.Total,
		CreatedAt:     inv.CreatedAt,
	}
}

// ToInvoiceListResponses converts a slice of invoices to list responses
func ToInvoiceListResponses(invoices []invoicing.Invoice) []InvoiceListResponse {
	responses := make([]InvoiceListResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceListResponse(&invoices[i])
	}
	return responses
}

// parseDate parses a wire-format date, surfacing a validation error
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, shared.NewDomainError("VALIDATION_ERROR", field+" must be a valid date in YYYY-MM-DD format")
	}
	return t, nil
}
