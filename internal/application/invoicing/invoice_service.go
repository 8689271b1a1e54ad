package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/identity"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/invoicing"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/partner"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared/valueobject"
)

// maxNumberAttempts bounds the retry loop when two invoices race for the
// same sequence number within a month.
const maxNumberAttempts = 3

// InvoiceService handles invoice business operations
type InvoiceService struct {
	invoiceRepo  invoicing.InvoiceRepository
	customerRepo partner.CustomerRepository
	userRepo     identity.UserRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Create creates a new invoice for the owner, assigning the next number in
// the issue month's sequence. Free plan owners are subject to the invoice
// quota.
func (s *InvoiceService) Create(ctx context.Context, ownerID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	user, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.CanCreateInvoice() {
		return nil, shared.ErrQuotaExceeded
	}

	if _, err := s.customerRepo.FindByIDForOwner(ctx, ownerID, req.CustomerID); err != nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice requires at least one line item")
	}

	issueDate, err := parseDate("issue_date", req.IssueDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	invoice, err := s.saveWithFreshNumber(ctx, ownerID, issueDate, func(number string) (*invoicing.Invoice, error) {
		inv, err := invoicing.NewInvoice(ownerID, req.CustomerID, number, issueDate, dueDate,
			valueobject.Currency(req.Currency), req.TaxRate, req.DiscountRate, req.Notes)
		if err != nil {
			return nil, err
		}
		for _, item := range req.Items {
			if _, err := inv.AddItem(item.Description, item.Quantity, item.UnitRate); err != nil {
				return nil, err
			}
		}
		return inv, nil
	})
	if err != nil {
		return nil, err
	}

	user.IncrementInvoiceCount()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update invoice count after create",
			zap.String("owner_id", ownerID.String()), zap.Error(err))
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("owner_id", ownerID.String()))

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// saveWithFreshNumber builds and saves an invoice, retrying with the next
// sequence number when a concurrent create claims the same one.
func (s *InvoiceService) saveWithFreshNumber(ctx context.Context, ownerID uuid.UUID, issueDate time.Time, build func(number string) (*invoicing.Invoice, error)) (*invoicing.Invoice, error) {
	prefix := invoicing.NumberPrefix(issueDate)

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		highest, err := s.invoiceRepo.HighestNumber(ctx, ownerID, prefix)
		if err != nil {
			return nil, err
		}

		number, err := invoicing.NextNumber(issueDate, highest)
		if err != nil {
			// Malformed stored number: surface it rather than resetting the sequence
			s.logger.Error("Invoice number sequence is corrupt",
				zap.String("owner_id", ownerID.String()),
				zap.String("highest", highest))
			return nil, err
		}

		invoice, err := build(number)
		if err != nil {
			return nil, err
		}
		if err := invoice.Validate(); err != nil {
			return nil, err
		}

		err = s.invoiceRepo.Save(ctx, invoice)
		if err == nil {
			return invoice, nil
		}
		if !errors.Is(err, shared.ErrDuplicateNumber) {
			s.logger.Error("Failed to save invoice", zap.Error(err))
			return nil, err
		}

		s.logger.Warn("Invoice number collision, retrying",
			zap.String("owner_id", ownerID.String()),
			zap.String("number", number),
			zap.Int("attempt", attempt+1))
	}

	return nil, shared.NewDomainError("NUMBER_CONTENTION", "Could not assign an invoice number, please retry")
}

// GetByID retrieves an invoice by ID, scoped to the owner. The derived
// status is refreshed against the clock before returning.
func (s *InvoiceService) GetByID(ctx context.Context, ownerID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	s.refreshStatus(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// refreshStatus derives overdue from the clock and persists the change
// best-effort. A stale read never blocks the request.
func (s *InvoiceService) refreshStatus(ctx context.Context, invoice *invoicing.Invoice) {
	before := invoice.Status
	invoice.Refresh(s.now())
	if invoice.Status == before {
		return
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Warn("Failed to persist refreshed invoice status",
			zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
	}
}

// List retrieves the owner's invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, ownerID uuid.UUID, filter InvoiceListFilter) ([]InvoiceListResponse, int64, error) {
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	invoices, err := s.invoiceRepo.FindAllForOwner(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.CountForOwner(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	for i := range invoices {
		invoices[i].Refresh(now)
	}

	return ToInvoiceListResponses(invoices), total, nil
}

// Update updates an invoice. A non-nil Items replaces all line items.
func (s *InvoiceService) Update(ctx context.Context, ownerID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		if _, err := s.customerRepo.FindByIDForOwner(ctx, ownerID, *req.CustomerID); err != nil {
			return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		}
		if err := invoice.SetCustomer(*req.CustomerID); err != nil {
			return nil, err
		}
	}

	if req.IssueDate != nil || req.DueDate != nil {
		issueDate := invoice.IssueDate
		dueDate := invoice.DueDate
		if req.IssueDate != nil {
			if issueDate, err = parseDate("issue_date", *req.IssueDate); err != nil {
				return nil, err
			}
		}
		if req.DueDate != nil {
			if dueDate, err = parseDate("due_date", *req.DueDate); err != nil {
				return nil, err
			}
		}
		if err := invoice.SetDates(issueDate, dueDate); err != nil {
			return nil, err
		}
	}

	if req.TaxRate != nil || req.DiscountRate != nil {
		taxRate := invoice.TaxRate
		discountRate := invoice.DiscountRate
		if req.TaxRate != nil {
			taxRate = *req.TaxRate
		}
		if req.DiscountRate != nil {
			discountRate = *req.DiscountRate
		}
		if err := invoice.SetRates(taxRate, discountRate); err != nil {
			return nil, err
		}
	}

	if req.Items != nil {
		if len(*req.Items) == 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice requires at least one line item")
		}
		if err := invoice.ClearItems(); err != nil {
			return nil, err
		}
		for _, item := range *req.Items {
			if _, err := invoice.AddItem(item.Description, item.Quantity, item.UnitRate); err != nil {
				return nil, err
			}
		}
	}

	if req.Notes != nil {
		invoice.SetNotes(*req.Notes)
	}

	if err := invoice.Validate(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to update invoice", zap.Error(err))
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete removes an invoice and frees one slot of the owner's quota
func (s *InvoiceService) Delete(ctx context.Context, ownerID, invoiceID uuid.UUID) error {
	if _, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID); err != nil {
		return err
	}

	if err := s.invoiceRepo.Delete(ctx, ownerID, invoiceID); err != nil {
		s.logger.Error("Failed to delete invoice", zap.Error(err))
		return err
	}

	user, err := s.userRepo.FindByID(ctx, ownerID)
	if err == nil {
		user.DecrementInvoiceCount()
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update invoice count after delete",
				zap.String("owner_id", ownerID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Invoice deleted",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("owner_id", ownerID.String()))
	return nil
}

// Duplicate creates a fresh draft copy of an invoice, dated today and
// numbered in today's sequence. The copy counts against the quota.
func (s *InvoiceService) Duplicate(ctx context.Context, ownerID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	user, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if !user.CanCreateInvoice() {
		return nil, shared.ErrQuotaExceeded
	}

	source, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	year, month, day := now.Date()
	issueDate := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	dueDate := issueDate.Add(source.DueDate.Sub(source.IssueDate))

	invoice, err := s.saveWithFreshNumber(ctx, ownerID, issueDate, func(number string) (*invoicing.Invoice, error) {
		return source.Duplicate(number, issueDate, dueDate)
	})
	if err != nil {
		return nil, err
	}

	user.IncrementInvoiceCount()
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update invoice count after duplicate",
			zap.String("owner_id", ownerID.String()), zap.Error(err))
	}

	s.logger.Info("Invoice duplicated",
		zap.String("source_id", invoiceID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber))

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Send marks an invoice as sent
func (s *InvoiceService) Send(ctx context.Context, ownerID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, ownerID, invoiceID, func(inv *invoicing.Invoice) error {
		return inv.Send(s.now())
	})
}

// MarkPaid records payment on an invoice
func (s *InvoiceService) MarkPaid(ctx context.Context, ownerID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, ownerID, invoiceID, func(inv *invoicing.Invoice) error {
		return inv.MarkPaid(s.now())
	})
}

// UpdateStatus transitions an invoice to the requested status, applying
// the lifecycle precedence rules
func (s *InvoiceService) UpdateStatus(ctx context.Context, ownerID, invoiceID uuid.UUID, req UpdateStatusRequest) (*InvoiceResponse, error) {
	return s.transition(ctx, ownerID, invoiceID, func(inv *invoicing.Invoice) error {
		return inv.ChangeStatus(invoicing.InvoiceStatus(req.Status), s.now())
	})
}

func (s *InvoiceService) transition(ctx context.Context, ownerID, invoiceID uuid.UUID, apply func(*invoicing.Invoice) error) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := apply(invoice); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to save invoice transition", zap.Error(err))
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// StatusSummary reports the owner's invoice counts per status
func (s *InvoiceService) StatusSummary(ctx context.Context, ownerID uuid.UUID) (*StatusSummaryResponse, error) {
	summary := &StatusSummaryResponse{}
	targets := []struct {
		status invoicing.InvoiceStatus
		dest   *int64
	}{
		{invoicing.StatusDraft, &summary.Draft},
		{invoicing.StatusSent, &summary.Sent},
		{invoicing.StatusPaid, &summary.Paid},
		{invoicing.StatusOverdue, &summary.Overdue},
		{invoicing.StatusCancelled, &summary.Cancelled},
	}

	for _, target := range targets {
		count, err := s.invoiceRepo.CountByStatusForOwner(ctx, ownerID, target.status)
		if err != nil {
			return nil, err
		}
		*target.dest = count
		summary.Total += count
	}

	return summary, nil
}
