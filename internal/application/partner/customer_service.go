package partner

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/partner"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	logger       *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// Create creates a new customer for the owner
func (s *CustomerService) Create(ctx context.Context, ownerID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(ownerID, req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	if req.Phone != "" {
		if err := customer.UpdateContact(customer.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	if req.AddressLine1 != "" || req.AddressLine2 != "" || req.City != "" ||
		req.State != "" || req.PostalCode != "" || req.Country != "" {
		customer.UpdateBillingAddress(req.AddressLine1, req.AddressLine2, req.City, req.State, req.PostalCode, req.Country)
	}
	if req.TaxID != "" {
		customer.SetTaxID(req.TaxID)
	}
	if req.Notes != "" {
		customer.SetNotes(req.Notes)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		s.logger.Error("Failed to save customer", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("owner_id", ownerID.String()))

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID, scoped to the owner
func (s *CustomerService) GetByID(ctx context.Context, ownerID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForOwner(ctx, ownerID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves the owner's customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, ownerID uuid.UUID, filter CustomerListFilter) ([]CustomerListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}

	customers, err := s.customerRepo.FindAllForOwner(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customerRepo.CountForOwner(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerListResponses(customers), total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, ownerID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForOwner(ctx, ownerID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := customer.Rename(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.Email != nil || req.Phone != nil {
		email := customer.Email
		phone := customer.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := customer.UpdateContact(email, phone); err != nil {
			return nil, err
		}
	}

	if req.AddressLine1 != nil || req.AddressLine2 != nil || req.City != nil ||
		req.State != nil || req.PostalCode != nil || req.Country != nil {
		line1 := customer.AddressLine1
		line2 := customer.AddressLine2
		city := customer.City
		state := customer.State
		postalCode := customer.PostalCode
		country := customer.Country

		if req.AddressLine1 != nil {
			line1 = *req.AddressLine1
		}
		if req.AddressLine2 != nil {
			line2 = *req.AddressLine2
		}
		if req.City != nil {
			city = *req.City
		}
		if req.State != nil {
			state = *req.State
		}
		if req.PostalCode != nil {
			postalCode = *req.PostalCode
		}
		if req.Country != nil {
			country = *req.Country
		}
		customer.UpdateBillingAddress(line1, line2, city, state, postalCode, country)
	}

	if req.TaxID != nil {
		customer.SetTaxID(*req.TaxID)
	}
	if req.Notes != nil {
		customer.SetNotes(*req.Notes)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		s.logger.Error("Failed to update customer", zap.Error(err))
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete deletes a customer, scoped to the owner
func (s *CustomerService) Delete(ctx context.Context, ownerID, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByIDForOwner(ctx, ownerID, customerID); err != nil {
		return err
	}

	if err := s.customerRepo.Delete(ctx, ownerID, customerID); err != nil {
		s.logger.Error("Failed to delete customer", zap.Error(err))
		return err
	}

	s.logger.Info("Customer deleted",
		zap.String("customer_id", customerID.String()),
		zap.String("owner_id", ownerID.String()))
	return nil
}
