package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/identity"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/invoicing"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/partner"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

// MockInvoiceRepository is a mock implementation of invoicing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, ownerID uuid.UUID, number string) (*invoicing.Invoice, error) {
	args := m.Called(ctx, ownerID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByStatusForOwner(ctx context.Context, ownerID uuid.UUID, status invoicing.InvoiceStatus) (int64, error) {
	args := m.Called(ctx, ownerID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) HighestNumber(ctx context.Context, ownerID uuid.UUID, prefix string) (string, error) {
	args := m.Called(ctx, ownerID, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, ownerID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type serviceFixture struct {
	invoiceRepo  *MockInvoiceRepository
	customerRepo *MockCustomerRepository
	userRepo     *MockUserRepository
	svc          *InvoiceService
	owner        *identity.User
	customer     *partner.Customer
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	owner, err := identity.NewUser("alex@example.com", "Alex Doe", "s3cret-pass")
	require.NoError(t, err)

	customer, err := partner.NewCustomer(owner.ID, "Acme Corp", "billing@acme.com")
	require.NoError(t, err)

	f := &serviceFixture{
		invoiceRepo:  new(MockInvoiceRepository),
		customerRepo: new(MockCustomerRepository),
		userRepo:     new(MockUserRepository),
		owner:        owner,
		customer:     customer,
	}
	f.svc = NewInvoiceService(f.invoiceRepo, f.customerRepo, f.userRepo, zap.NewNop())
	f.svc.now = func() time.Time {
		return time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func validCreateRequest(f *serviceFixture) CreateInvoiceRequest {
	return CreateInvoiceRequest{
		CustomerID:   f.customer.ID,
		IssueDate:    "2025-09-15",
		DueDate:      "2025-10-15",
		TaxRate:      decimal.NewFromFloat(8.25),
		DiscountRate: decimal.NewFromFloat(5),
		Items: []InvoiceItemRequest{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitRate: decimal.NewFromInt(2500)},
			{Description: "Support hours", Quantity: decimal.NewFromInt(10), UnitRate: decimal.NewFromInt(150)},
		},
	}
}

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates first invoice of the month", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.userRepo.On("Save", ctx, f.owner).Return(nil)
		f.customerRepo.On("FindByIDForOwner", ctx, f.owner.ID, f.customer.ID).Return(f.customer, nil)
		f.invoiceRepo.On("HighestNumber", ctx, f.owner.ID, "INV-2025-09-").Return("", nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		resp, err := f.svc.Create(ctx, f.owner.ID, validCreateRequest(f))

		require.NoError(t, err)
		assert.Equal(t, "INV-2025-09-0001", resp.InvoiceNumber)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, "4000", resp.Subtotal.String())
		assert.Equal(t, "330", resp.TaxAmount.String())
		assert.Equal(t, "200", resp.DiscountAmount.String())
		assert.Equal(t, "4130", resp.Total.String())
		assert.Equal(t, 1, f.owner.InvoiceCount)
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("continues the month sequence", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.userRepo.On("Save", ctx, f.owner).Return(nil)
		f.customerRepo.On("FindByIDForOwner", ctx, f.owner.ID, f.customer.ID).Return(f.customer, nil)
		f.invoiceRepo.On("HighestNumber", ctx, f.owner.ID, "INV-2025-09-").Return("INV-2025-09-0041", nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		resp, err := f.svc.Create(ctx, f.owner.ID, validCreateRequest(f))

		require.NoError(t, err)
		assert.Equal(t, "INV-2025-09-0042", resp.InvoiceNumber)
	})

	t.Run("rejects over-quota free plan", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < identity.FreeInvoiceLimit; i++ {
			f.owner.IncrementInvoiceCount()
		}
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)

		_, err := f.svc.Create(ctx, f.owner.ID, validCreateRequest(f))

		assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("pro plan bypasses the quota", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.owner.ChangePlan(identity.PlanPro))
		for i := 0; i < identity.FreeInvoiceLimit*2; i++ {
			f.owner.IncrementInvoiceCount()
		}
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.userRepo.On("Save", ctx, f.owner).Return(nil)
		f.customerRepo.On("FindByIDForOwner", ctx, f.owner.ID, f.customer.ID).Return(f.customer, nil)
		f.invoiceRepo.On("HighestNumber", ctx, f.owner.ID, "INV-2025-09-").Return("", nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		_, err := f.svc.Create(ctx, f.owner.ID, validCreateRequest(f))

		require.NoError(t, err)
	})

	t.Run("rejects customer belonging to another owner", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.customerRepo.On("FindByIDForOwner", ctx, f.owner.ID, f.customer.ID).Return(nil, shared.ErrNotFound)

		_, err := f.svc.Create(ctx, f.owner.ID, validCreateRequest(f))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CUSTOMER_NOT_FOUND", domainErr.Code)
	})

	t.Run("retries on number collision", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.userRepo.On("Save", ctx, f.owner).Return(nil)
		f.customerRepo.On("FindByIDForOwner", ctx, f.owner.ID, f.customer.ID).Return(f.customer, nil)
		f.invoiceRepo.On("HighestNumber", ctx, f.owner.ID, "INV-2025-09-").Return("", nil).Once()
		f.invoiceRepo.On("HighestNumber", ctx, f.owner.ID, "INV-2025-09-").Return("INV-2025-09-0001", nil).Once()
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(shared.ErrDuplicateNumber).Once()
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(nil).Once()

		resp, err := f.svc.Create(ctx, f.owner.ID, validCreateRequest(f))

		require.NoError(t, err)
		assert.Equal(t, "INV-2025-09-0002", resp.InvoiceNumber)
		f.invoiceRepo.AssertExpectations(t)
	})

	t.Run("gives up after repeated collisions", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.customerRepo.On("FindByIDForOwner", ctx, f.owner.ID, f.customer.ID).Return(f.customer, nil)
		f.invoiceRepo.On("HighestNumber", ctx, f.owner.ID, "INV-2025-09-").Return("", nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(shared.ErrDuplicateNumber)

		_, err := f.svc.Create(ctx, f.owner.ID, validCreateRequest(f))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NUMBER_CONTENTION", domainErr.Code)
		assert.Equal(t, 0, f.owner.InvoiceCount)
	})

	t.Run("surfaces a corrupt stored number instead of resetting", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.customerRepo.On("FindByIDForOwner", ctx, f.owner.ID, f.customer.ID).Return(f.customer, nil)
		f.invoiceRepo.On("HighestNumber", ctx, f.owner.ID, "INV-2025-09-").Return("garbage-number", nil)

		_, err := f.svc.Create(ctx, f.owner.ID, validCreateRequest(f))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DATA_INTEGRITY", domainErr.Code)
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects an empty item list", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.customerRepo.On("FindByIDForOwner", ctx, f.owner.ID, f.customer.ID).Return(f.customer, nil)

		req := validCreateRequest(f)
		req.Items = nil
		_, err := f.svc.Create(ctx, f.owner.ID, req)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		f := newFixture(t)
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.customerRepo.On("FindByIDForOwner", ctx, f.owner.ID, f.customer.ID).Return(f.customer, nil)

		req := validCreateRequest(f)
		req.IssueDate = "15/09/2025"
		_, err := f.svc.Create(ctx, f.owner.ID, req)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})
}

func TestInvoiceService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes a sent invoice past due to overdue", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-08-0001",
			time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, invoice.Send(time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Save", ctx, invoice).Return(nil)

		resp, err := f.svc.GetByID(ctx, f.owner.ID, invoice.ID)

		require.NoError(t, err)
		assert.Equal(t, "overdue", resp.Status)
		f.invoiceRepo.AssertCalled(t, "Save", ctx, invoice)
	})

	t.Run("leaves a current invoice untouched", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)

		resp, err := f.svc.GetByID(ctx, f.owner.ID, invoice.ID)

		require.NoError(t, err)
		assert.Equal(t, "draft", resp.Status)
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces line items and recomputes totals", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Save", ctx, invoice).Return(nil)

		items := []InvoiceItemRequest{
			{Description: "Flat fee", Quantity: decimal.NewFromInt(1), UnitRate: decimal.NewFromInt(1000)},
		}
		notes := "Revised scope"
		resp, err := f.svc.Update(ctx, f.owner.ID, invoice.ID, UpdateInvoiceRequest{
			Items: &items,
			Notes: &notes,
		})

		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "1000", resp.Subtotal.String())
		assert.Equal(t, "Revised scope", resp.Notes)
	})

	t.Run("rejects clearing all line items", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)

		items := []InvoiceItemRequest{}
		_, err := f.svc.Update(ctx, f.owner.ID, invoice.ID, UpdateInvoiceRequest{Items: &items})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		assert.Equal(t, 2, invoice.ItemCount())
		f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects edits to a paid invoice", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, invoice.Send(f.svc.now()))
		require.NoError(t, invoice.MarkPaid(f.svc.now()))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)

		items := []InvoiceItemRequest{
			{Description: "Extra", Quantity: decimal.NewFromInt(1), UnitRate: decimal.NewFromInt(50)},
		}
		_, err := f.svc.Update(ctx, f.owner.ID, invoice.ID, UpdateInvoiceRequest{Items: &items})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("frees one quota slot", func(t *testing.T) {
		f := newFixture(t)
		f.owner.IncrementInvoiceCount()
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Delete", ctx, f.owner.ID, invoice.ID).Return(nil)
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.userRepo.On("Save", ctx, f.owner).Return(nil)

		err := f.svc.Delete(ctx, f.owner.ID, invoice.ID)

		require.NoError(t, err)
		assert.Equal(t, 0, f.owner.InvoiceCount)
	})

	t.Run("missing invoice leaves the count alone", func(t *testing.T) {
		f := newFixture(t)
		f.owner.IncrementInvoiceCount()
		id := uuid.New()
		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, id).Return(nil, shared.ErrNotFound)

		err := f.svc.Delete(ctx, f.owner.ID, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, 1, f.owner.InvoiceCount)
	})
}

func TestInvoiceService_Duplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("copies items into a fresh draft dated today", func(t *testing.T) {
		f := newFixture(t)
		source := buildTestInvoice(t, f, "INV-2025-08-0007",
			time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, source.Send(time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)))

		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.userRepo.On("Save", ctx, f.owner).Return(nil)
		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, source.ID).Return(source, nil)
		f.invoiceRepo.On("HighestNumber", ctx, f.owner.ID, "INV-2025-09-").Return("INV-2025-09-0002", nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		resp, err := f.svc.Duplicate(ctx, f.owner.ID, source.ID)

		require.NoError(t, err)
		assert.Equal(t, "INV-2025-09-0003", resp.InvoiceNumber)
		assert.Equal(t, "draft", resp.Status)
		assert.Equal(t, "2025-09-20", resp.IssueDate)
		assert.Len(t, resp.Items, len(source.Items))
		assert.Equal(t, source.Total.String(), resp.Total.String())
		assert.Equal(t, 1, f.owner.InvoiceCount)
	})

	t.Run("dates the copy by the local calendar day", func(t *testing.T) {
		f := newFixture(t)
		f.svc.now = func() time.Time {
			// 00:30 local is still the previous day in UTC
			return time.Date(2025, 9, 20, 0, 30, 0, 0, time.FixedZone("AEST", 10*3600))
		}
		source := buildTestInvoice(t, f, "INV-2025-08-0007",
			time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC))

		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)
		f.userRepo.On("Save", ctx, f.owner).Return(nil)
		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, source.ID).Return(source, nil)
		f.invoiceRepo.On("HighestNumber", ctx, f.owner.ID, "INV-2025-09-").Return("", nil)
		f.invoiceRepo.On("Save", ctx, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		resp, err := f.svc.Duplicate(ctx, f.owner.ID, source.ID)

		require.NoError(t, err)
		assert.Equal(t, "2025-09-20", resp.IssueDate)
	})

	t.Run("respects the quota", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < identity.FreeInvoiceLimit; i++ {
			f.owner.IncrementInvoiceCount()
		}
		f.userRepo.On("FindByID", ctx, f.owner.ID).Return(f.owner, nil)

		_, err := f.svc.Duplicate(ctx, f.owner.ID, uuid.New())

		assert.ErrorIs(t, err, shared.ErrQuotaExceeded)
	})
}

func TestInvoiceService_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("send then pay", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Save", ctx, invoice).Return(nil)

		resp, err := f.svc.Send(ctx, f.owner.ID, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, "sent", resp.Status)

		resp, err = f.svc.MarkPaid(ctx, f.owner.ID, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
		require.NotNil(t, resp.PaidDate)
		assert.Equal(t, "2025-09-20", *resp.PaidDate)
	})

	t.Run("reopening a paid invoice clears the paid date", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, invoice.Send(f.svc.now()))
		require.NoError(t, invoice.MarkPaid(f.svc.now()))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Save", ctx, invoice).Return(nil)

		resp, err := f.svc.UpdateStatus(ctx, f.owner.ID, invoice.ID, UpdateStatusRequest{Status: "sent"})

		require.NoError(t, err)
		assert.Equal(t, "sent", resp.Status)
		assert.Nil(t, resp.PaidDate)
	})

	t.Run("paying a draft resolves straight to paid", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Save", ctx, invoice).Return(nil)

		resp, err := f.svc.MarkPaid(ctx, f.owner.ID, invoice.ID)

		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
		require.NotNil(t, resp.PaidDate)
		assert.Equal(t, "2025-09-20", *resp.PaidDate)
	})

	t.Run("re-marking a paid invoice keeps the paid date", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, invoice.MarkPaid(time.Date(2025, 9, 18, 9, 0, 0, 0, time.UTC)))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)
		f.invoiceRepo.On("Save", ctx, invoice).Return(nil)

		resp, err := f.svc.MarkPaid(ctx, f.owner.ID, invoice.ID)

		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)
		require.NotNil(t, resp.PaidDate)
		assert.Equal(t, "2025-09-18", *resp.PaidDate)
	})

	t.Run("cancelled invoice only restores to draft", func(t *testing.T) {
		f := newFixture(t)
		invoice := buildTestInvoice(t, f, "INV-2025-09-0001",
			time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, invoice.Cancel(f.svc.now()))

		f.invoiceRepo.On("FindByIDForOwner", ctx, f.owner.ID, invoice.ID).Return(invoice, nil)

		_, err := f.svc.UpdateStatus(ctx, f.owner.ID, invoice.ID, UpdateStatusRequest{Status: "sent"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestInvoiceService_StatusSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.invoiceRepo.On("CountByStatusForOwner", ctx, f.owner.ID, invoicing.StatusDraft).Return(int64(2), nil)
	f.invoiceRepo.On("CountByStatusForOwner", ctx, f.owner.ID, invoicing.StatusSent).Return(int64(3), nil)
	f.invoiceRepo.On("CountByStatusForOwner", ctx, f.owner.ID, invoicing.StatusPaid).Return(int64(5), nil)
	f.invoiceRepo.On("CountByStatusForOwner", ctx, f.owner.ID, invoicing.StatusOverdue).Return(int64(1), nil)
	f.invoiceRepo.On("CountByStatusForOwner", ctx, f.owner.ID, invoicing.StatusCancelled).Return(int64(0), nil)

	summary, err := f.svc.StatusSummary(ctx, f.owner.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Draft)
	assert.Equal(t, int64(3), summary.Sent)
	assert.Equal(t, int64(5), summary.Paid)
	assert.Equal(t, int64(1), summary.Overdue)
	assert.Equal(t, int64(0), summary.Cancelled)
	assert.Equal(t, int64(11), summary.Total)
}

func buildTestInvoice(t *testing.T, f *serviceFixture, number string, issueDate, dueDate time.Time) *invoicing.Invoice {
	t.Helper()
	invoice, err := invoicing.NewInvoice(f.owner.ID, f.customer.ID, number, issueDate, dueDate,
		"", decimal.NewFromFloat(8.25), decimal.NewFromFloat(5), "")
	require.NoError(t, err)
	_, err = invoice.AddItem("Consulting", decimal.NewFromInt(1), decimal.NewFromInt(2500))
	require.NoError(t, err)
	_, err = invoice.AddItem("Support hours", decimal.NewFromInt(10), decimal.NewFromInt(150))
	require.NoError(t, err)
	return invoice
}
