package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	// FindByID finds a customer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDForOwner finds a customer by ID scoped to an owner
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Customer, error)

	// FindAllForOwner returns customers for an owner matching the filter.
	// Search matches name and email.
	FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Customer, error)

	// CountForOwner counts customers for an owner matching the filter
	CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error)

	// Save persists the customer
	Save(ctx context.Context, customer *Customer) error

	// Delete removes a customer, scoped to the owner
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}
