package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/identity"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/invoicing"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/partner"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

// InvoiceDocument is the flattened view of an invoice handed to the renderer
type InvoiceDocument struct {
	InvoiceNumber  string
	Status         string
	IssueDate      time.Time
	DueDate        time.Time
	PaidDate       *time.Time
	Currency       string
	SellerName     string
	SellerEmail    string
	CustomerName   string
	CustomerEmail  string
	CustomerLines  []string
	Items          []DocumentItem
	TaxRate        decimal.Decimal
	DiscountRate   decimal.Decimal
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	Notes          string
}

// DocumentItem is a single rendered line item
type DocumentItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitRate    decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceRenderer renders an invoice document to PDF bytes
type InvoiceRenderer interface {
	Render(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}

// PDFArchive stores generated PDFs and returns a retrievable location
type PDFArchive interface {
	Store(ctx context.Context, key string, pdf []byte) (string, error)
}

// PDFResult contains a generated PDF and its suggested filename
type PDFResult struct {
	Content     []byte
	Filename    string
	ArchivedURL string
}

// PDFService turns invoices into PDF documents
type PDFService struct {
	invoiceRepo  invoicing.InvoiceRepository
	customerRepo partner.CustomerRepository
	userRepo     identity.UserRepository
	renderer     InvoiceRenderer
	archive      PDFArchive // nil disables archival
	logger       *zap.Logger
}

// NewPDFService creates a new PDFService. Pass a nil archive to skip
// uploading generated PDFs.
func NewPDFService(
	invoiceRepo invoicing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	userRepo identity.UserRepository,
	renderer InvoiceRenderer,
	archive PDFArchive,
	logger *zap.Logger,
) *PDFService {
	return &PDFService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		renderer:     renderer,
		archive:      archive,
		logger:       logger,
	}
}

// Generate renders an invoice to PDF, scoped to the owner
func (s *PDFService) Generate(ctx context.Context, ownerID, invoiceID uuid.UUID) (*PDFResult, error) {
	invoice, err := s.invoiceRepo.FindByIDForOwner(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindByIDForOwner(ctx, ownerID, invoice.CustomerID)
	if err != nil {
		return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}

	user, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	doc := buildDocument(invoice, customer, user)

	pdf, err := s.renderer.Render(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to render invoice PDF",
			zap.String("invoice_id", invoiceID.String()), zap.Error(err))
		return nil, shared.NewDomainError("RENDER_FAILED", "Failed to render invoice PDF")
	}

	result := &PDFResult{
		Content:  pdf,
		Filename: fmt.Sprintf("%s.pdf", invoice.InvoiceNumber),
	}

	if s.archive != nil {
		key := fmt.Sprintf("%s/%s.pdf", ownerID, invoice.InvoiceNumber)
		url, err := s.archive.Store(ctx, key, pdf)
		if err != nil {
			// Archival is best-effort; the caller still gets the PDF
			s.logger.Warn("Failed to archive invoice PDF",
				zap.String("invoice_id", invoiceID.String()), zap.Error(err))
		} else {
			result.ArchivedURL = url
		}
	}

	s.logger.Info("Invoice PDF generated",
		zap.String("invoice_id", invoiceID.String()),
		zap.Int("bytes", len(pdf)))

	return result, nil
}

func buildDocument(inv *invoicing.Invoice, customer *partner.Customer, user *identity.User) InvoiceDocument {
	items := make([]DocumentItem, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = DocumentItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitRate:    item.UnitRate,
			Amount:      item.Amount,
		}
	}

	return InvoiceDocument{
		InvoiceNumber:  inv.InvoiceNumber,
		Status:         string(inv.Status),
		IssueDate:      inv.IssueDate,
		DueDate:        inv.DueDate,
		PaidDate:       inv.PaidDate,
		Currency:       string(inv.Currency),
		SellerName:     user.Name,
		SellerEmail:    user.Email,
		CustomerName:   customer.Name,
		CustomerEmail:  customer.Email,
		CustomerLines:  customer.BillingAddress(),
		Items:          items,
		TaxRate:        inv.TaxRate,
		DiscountRate:   inv.DiscountRate,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		DiscountAmount: inv.DiscountAmount,
		Total:          inv.Total,
		Notes:          inv.Notes,
	}
}
