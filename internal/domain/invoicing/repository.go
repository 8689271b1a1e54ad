package invoicing

import (
	"context"

	"github.com/google/uuid"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	// FindByID finds an invoice by ID with its line items
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForOwner finds an invoice by ID scoped to an owner
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its number scoped to an owner
	FindByNumber(ctx context.Context, ownerID uuid.UUID, number string) (*Invoice, error)

	// FindAllForOwner returns invoices for an owner matching the filter.
	// Filters["status"] narrows by status; Search matches the invoice
	// number and the customer name.
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// CountForOwner counts invoices for an owner matching the filter
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatusForOwner counts an owner's invoices in the given status
	CountByStatusForOwner(ctx context.Context, ownerID uuid.UUID, status InvoiceStatus) (int64, error)

	// HighestNumber returns the highest invoice number under the prefix for
	// the owner, or "" when the owner has no invoices in that month.
	HighestNumber(ctx context.Context, ownerID uuid.UUID, prefix string) (string, error)

	// Save persists the invoice and its line items. A unique violation on
	// (owner, number) surfaces as shared.ErrDuplicateNumber.
	Save(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice and its line items, scoped to the owner
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
