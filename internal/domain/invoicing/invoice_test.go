package invoicing

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared/valueobject"
)

func createTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	issue := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	inv, err := NewInvoice(
		uuid.New(),
		uuid.New(),
		"INV-2025-09-0001",
		issue,
		issue.AddDate(0, 0, 30),
		valueobject.USD,
		decimal.Zero,
		decimal.Zero,
		"",
	)
	require.NoError(t, err)
	return inv
}

func addTestItem(t *testing.T, inv *Invoice, description string, qty, rate float64) {
	t.Helper()
	_, err := inv.AddItem(description, decimal.NewFromFloat(qty), decimal.NewFromFloat(rate))
	require.NoError(t, err)
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates draft with zero totals", func(t *testing.T) {
		inv := createTestInvoice(t)
		assert.Equal(t, StatusDraft, inv.Status)
		assert.True(t, inv.Subtotal.IsZero())
		assert.True(t, inv.Total.IsZero())
		assert.Nil(t, inv.PaidDate)
		assert.Equal(t, valueobject.USD, inv.Currency)
	})

	t.Run("defaults empty currency", func(t *testing.T) {
		issue := time.Now()
		inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-2025-09-0002", issue, issue, "", decimal.Zero, decimal.Zero, "")
		require.NoError(t, err)
		assert.Equal(t, valueobject.DefaultCurrency, inv.Currency)
	})

	t.Run("rejects empty number", func(t *testing.T) {
		issue := time.Now()
		_, err := NewInvoice(uuid.New(), uuid.New(), "", issue, issue, valueobject.USD, decimal.Zero, decimal.Zero, "")
		assert.Error(t, err)
	})

	t.Run("rejects nil customer", func(t *testing.T) {
		issue := time.Now()
		_, err := NewInvoice(uuid.New(), uuid.Nil, "INV-2025-09-0003", issue, issue, valueobject.USD, decimal.Zero, decimal.Zero, "")
		assert.Error(t, err)
	})

	t.Run("rejects due date before issue date", func(t *testing.T) {
		issue := time.Now()
		_, err := NewInvoice(uuid.New(), uuid.New(), "INV-2025-09-0004", issue, issue.AddDate(0, 0, -1), valueobject.USD, decimal.Zero, decimal.Zero, "")
		assert.Error(t, err)
	})

	t.Run("rejects out of range rates", func(t *testing.T) {
		issue := time.Now()
		_, err := NewInvoice(uuid.New(), uuid.New(), "INV-2025-09-0005", issue, issue, valueobject.USD, decimal.NewFromInt(101), decimal.Zero, "")
		assert.Error(t, err)

		_, err = NewInvoice(uuid.New(), uuid.New(), "INV-2025-09-0005", issue, issue, valueobject.USD, decimal.Zero, decimal.NewFromInt(-1), "")
		assert.Error(t, err)
	})
}

func TestInvoiceTotals(t *testing.T) {
	t.Run("computes subtotal tax discount and total", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.SetRates(decimal.NewFromFloat(8.25), decimal.NewFromInt(5)))

		addTestItem(t, inv, "Consulting retainer", 1, 2500)
		addTestItem(t, inv, "Support hours", 10, 150)

		assert.Equal(t, "4000.00", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "330.00", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "200.00", inv.DiscountAmount.StringFixed(2))
		assert.Equal(t, "4130.00", inv.Total.StringFixed(2))
	})

	t.Run("each figure rounds independently half away from zero", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.SetRates(decimal.NewFromFloat(7.5), decimal.Zero))

		// 3 * 33.33 = 99.99; tax 7.4993 rounds to 7.50
		addTestItem(t, inv, "Widgets", 3, 33.33)

		assert.Equal(t, "99.99", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "7.50", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "107.49", inv.Total.StringFixed(2))
	})

	t.Run("line item amount is recomputed from quantity and rate", func(t *testing.T) {
		inv := createTestInvoice(t)
		item, err := inv.AddItem("Licenses", decimal.NewFromFloat(2.5), decimal.NewFromFloat(19.99))
		require.NoError(t, err)
		assert.Equal(t, "49.98", item.Amount.StringFixed(2))
	})

	t.Run("hundred percent discount zeroes the total", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.SetRates(decimal.Zero, decimal.NewFromInt(100)))

		addTestItem(t, inv, "Goodwill credit", 1, 100)

		assert.Equal(t, "100.00", inv.DiscountAmount.StringFixed(2))
		assert.Equal(t, "0.00", inv.Total.StringFixed(2))
	})

	t.Run("rounds tax and discount on a penny subtotal independently", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.SetRates(decimal.NewFromInt(40), decimal.NewFromInt(100)))
		addTestItem(t, inv, "Penny line", 1, 0.01)

		assert.Equal(t, "0.01", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "0.00", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "0.01", inv.DiscountAmount.StringFixed(2))
		assert.Equal(t, "0.00", inv.Total.StringFixed(2))
	})

	t.Run("sub-cent line amounts accumulate before rounding", func(t *testing.T) {
		inv := createTestInvoice(t)
		addTestItem(t, inv, "Metered usage", 1, 0.004)
		addTestItem(t, inv, "Metered usage", 1, 0.004)

		// Raw 0.008 rounds to 0.01; rounding each line first would lose both
		assert.Equal(t, "0.01", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "0.01", inv.Total.StringFixed(2))
	})

	t.Run("tax applies to the raw subtotal", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.SetRates(decimal.NewFromInt(50), decimal.Zero))
		addTestItem(t, inv, "Fractional rate", 1, 10.004)

		// Raw chain: 10.004 + 5.002 = 15.006, so the total carries the extra cent
		assert.Equal(t, "10.00", inv.Subtotal.StringFixed(2))
		assert.Equal(t, "5.00", inv.TaxAmount.StringFixed(2))
		assert.Equal(t, "15.01", inv.Total.StringFixed(2))
	})

	t.Run("removing an item recalculates totals", func(t *testing.T) {
		inv := createTestInvoice(t)
		addTestItem(t, inv, "Keep", 1, 100)
		item, err := inv.AddItem("Drop", decimal.NewFromInt(1), decimal.NewFromInt(50))
		require.NoError(t, err)

		require.NoError(t, inv.RemoveItem(item.ID))
		assert.Equal(t, "100.00", inv.Subtotal.StringFixed(2))
		assert.Equal(t, 1, inv.ItemCount())
	})
}

func TestInvoiceLifecycle(t *testing.T) {
	now := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

	t.Run("send before due date", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Send(now))
		assert.Equal(t, StatusSent, inv.Status)
		assert.Nil(t, inv.PaidDate)
	})

	t.Run("send after due date resolves to overdue", func(t *testing.T) {
		inv := createTestInvoice(t)
		late := inv.DueDate.AddDate(0, 0, 5)
		require.NoError(t, inv.Send(late))
		assert.Equal(t, StatusOverdue, inv.Status)
	})

	t.Run("mark paid stamps paid date", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Send(now))
		require.NoError(t, inv.MarkPaid(now))
		assert.Equal(t, StatusPaid, inv.Status)
		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, now, *inv.PaidDate)
	})

	t.Run("paying an overdue invoice", func(t *testing.T) {
		inv := createTestInvoice(t)
		late := inv.DueDate.AddDate(0, 0, 1)
		require.NoError(t, inv.Send(late))
		require.Equal(t, StatusOverdue, inv.Status)
		require.NoError(t, inv.MarkPaid(late))
		assert.Equal(t, StatusPaid, inv.Status)
	})

	t.Run("paying a draft goes straight to paid", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.MarkPaid(now))
		assert.Equal(t, StatusPaid, inv.Status)
		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, now, *inv.PaidDate)
	})

	t.Run("marking paid twice keeps the original paid date", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.MarkPaid(now))

		require.NoError(t, inv.MarkPaid(now.Add(48*time.Hour)))
		assert.Equal(t, StatusPaid, inv.Status)
		assert.Equal(t, now, *inv.PaidDate)
	})

	t.Run("leaving paid clears the paid date", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Send(now))
		require.NoError(t, inv.MarkPaid(now))

		require.NoError(t, inv.ChangeStatus(StatusSent, now))
		assert.Equal(t, StatusSent, inv.Status)
		assert.Nil(t, inv.PaidDate)
	})

	t.Run("cancelled only leaves via restore to draft", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel(now))
		assert.Error(t, inv.ChangeStatus(StatusSent, now))
		assert.Error(t, inv.ChangeStatus(StatusPaid, now))
	})

	t.Run("reopen clears paid date", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Send(now))
		require.NoError(t, inv.MarkPaid(now))

		require.NoError(t, inv.Reopen("", now))
		assert.Equal(t, StatusSent, inv.Status)
		assert.Nil(t, inv.PaidDate)
	})

	t.Run("reopen past due lands on overdue", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Send(now))
		require.NoError(t, inv.MarkPaid(now))

		late := inv.DueDate.AddDate(0, 0, 2)
		require.NoError(t, inv.Reopen(StatusSent, late))
		assert.Equal(t, StatusOverdue, inv.Status)
		assert.Nil(t, inv.PaidDate)
	})

	t.Run("reopen requires paid status", func(t *testing.T) {
		inv := createTestInvoice(t)
		assert.Error(t, inv.Reopen(StatusSent, now))
	})

	t.Run("cancel and restore", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Cancel(now))
		assert.Equal(t, StatusCancelled, inv.Status)
		assert.False(t, inv.CanModify())

		require.NoError(t, inv.ChangeStatus(StatusDraft, now))
		assert.Equal(t, StatusDraft, inv.Status)
		assert.True(t, inv.CanModify())
	})

	t.Run("refresh promotes sent to overdue after due date", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Send(now))

		inv.Refresh(inv.DueDate.AddDate(0, 0, 1))
		assert.Equal(t, StatusOverdue, inv.Status)
	})

	t.Run("refresh leaves paid invoices alone", func(t *testing.T) {
		inv := createTestInvoice(t)
		require.NoError(t, inv.Send(now))
		require.NoError(t, inv.MarkPaid(now))

		inv.Refresh(inv.DueDate.AddDate(0, 0, 10))
		assert.Equal(t, StatusPaid, inv.Status)
	})

	t.Run("paid invoice is frozen", func(t *testing.T) {
		inv := createTestInvoice(t)
		addTestItem(t, inv, "Work", 1, 100)
		require.NoError(t, inv.Send(now))
		require.NoError(t, inv.MarkPaid(now))

		_, err := inv.AddItem("More work", decimal.NewFromInt(1), decimal.NewFromInt(50))
		assert.Error(t, err)
		assert.Error(t, inv.SetRates(decimal.NewFromInt(10), decimal.Zero))
		assert.Error(t, inv.SetDates(inv.IssueDate, inv.DueDate))
	})
}

func TestInvoiceDuplicate(t *testing.T) {
	inv := createTestInvoice(t)
	require.NoError(t, inv.SetRates(decimal.NewFromFloat(8.25), decimal.NewFromInt(5)))
	addTestItem(t, inv, "Consulting retainer", 1, 2500)
	addTestItem(t, inv, "Support hours", 10, 150)

	now := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, inv.Send(now))
	require.NoError(t, inv.MarkPaid(now))

	issue := time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC)
	copy, err := inv.Duplicate("INV-2025-10-0001", issue, issue.AddDate(0, 0, 30))
	require.NoError(t, err)

	assert.NotEqual(t, inv.ID, copy.ID)
	assert.Equal(t, "INV-2025-10-0001", copy.InvoiceNumber)
	assert.Equal(t, StatusDraft, copy.Status)
	assert.Nil(t, copy.PaidDate)
	assert.Equal(t, inv.OwnerID, copy.OwnerID)
	assert.Equal(t, inv.CustomerID, copy.CustomerID)
	assert.Equal(t, 2, copy.ItemCount())
	assert.Equal(t, "4130.00", copy.Total.StringFixed(2))

	for _, item := range copy.Items {
		assert.Equal(t, copy.ID, item.InvoiceID)
		for _, orig := range inv.Items {
			assert.NotEqual(t, orig.ID, item.ID)
		}
	}
}

func TestLineItemValidation(t *testing.T) {
	inv := createTestInvoice(t)

	t.Run("rejects empty description", func(t *testing.T) {
		_, err := inv.AddItem("", decimal.NewFromInt(1), decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		_, err := inv.AddItem("Work", decimal.Zero, decimal.NewFromInt(10))
		assert.Error(t, err)
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		_, err := inv.AddItem("Work", decimal.NewFromInt(1), decimal.NewFromInt(-5))
		assert.Error(t, err)
	})

	t.Run("zero rate is allowed", func(t *testing.T) {
		_, err := inv.AddItem("Free of charge", decimal.NewFromInt(1), decimal.Zero)
		assert.NoError(t, err)
	})

	t.Run("rejects description over 200 characters", func(t *testing.T) {
		_, err := inv.AddItem(strings.Repeat("x", 201), decimal.NewFromInt(1), decimal.NewFromInt(10))
		assert.Error(t, err)

		_, err = inv.AddItem(strings.Repeat("x", 200), decimal.NewFromInt(1), decimal.NewFromInt(10))
		assert.NoError(t, err)
	})
}

func TestInvoiceValidate(t *testing.T) {
	inv := createTestInvoice(t)
	require.Error(t, inv.Validate())

	addTestItem(t, inv, "Work", 1, 100)
	assert.NoError(t, inv.Validate())
}
