package invoicing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared/valueobject"
)

var oneHundred = decimal.NewFromInt(100)

// Invoice represents an invoice aggregate root.
// It owns its line items and keeps subtotal, tax, discount and total
// consistent with them at all times.
type Invoice struct {
	shared.OwnedAggregateRoot
	InvoiceNumber  string
	CustomerID     uuid.UUID
	Status         InvoiceStatus
	IssueDate      time.Time
	DueDate        time.Time
	PaidDate       *time.Time
	Currency       valueobject.Currency
	TaxRate        decimal.Decimal // percent of subtotal, 0-100
	DiscountRate   decimal.Decimal // percent of subtotal, 0-100
	Notes          string
	Items          []LineItem
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// NewInvoice creates a new draft invoice
func NewInvoice(ownerID, customerID uuid.UUID, invoiceNumber string, issueDate, dueDate time.Time, currency valueobject.Currency, taxRate, discountRate decimal.Decimal, notes string) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "Due date cannot be before issue date")
	}
	if err := validateRate("Tax", taxRate); err != nil {
		return nil, err
	}
	if err := validateRate("Discount", discountRate); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	inv := &Invoice{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		InvoiceNumber:      invoiceNumber,
		CustomerID:         customerID,
		Status:             StatusDraft,
		IssueDate:          issueDate,
		DueDate:            dueDate,
		Currency:           currency,
		TaxRate:            taxRate,
		DiscountRate:       discountRate,
		Notes:              notes,
		Items:              make([]LineItem, 0),
	}
	inv.recalculateTotals()

	return inv, nil
}

func validateRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(oneHundred) {
		return shared.NewDomainError("INVALID_RATE", fmt.Sprintf("%s rate must be between 0 and 100", name))
	}
	return nil
}

// AddItem adds a new line item to the invoice
func (inv *Invoice) AddItem(description string, quantity, unitRate decimal.Decimal) (*LineItem, error) {
	if !inv.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify a %s invoice", inv.Status))
	}

	item, err := NewLineItem(inv.ID, description, quantity, unitRate, len(inv.Items))
	if err != nil {
		return nil, err
	}

	inv.Items = append(inv.Items, *item)
	inv.recalculateTotals()
	inv.UpdatedAt = time.Now()

	return item, nil
}

// RemoveItem removes a line item from the invoice
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if !inv.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify a %s invoice", inv.Status))
	}

	for idx, item := range inv.Items {
		if item.ID == itemID {
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			for i := range inv.Items {
				inv.Items[i].Position = i
			}
			inv.recalculateTotals()
			inv.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice line item not found")
}

// ClearItems removes all line items, typically before rebuilding them on update
func (inv *Invoice) ClearItems() error {
	if !inv.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify a %s invoice", inv.Status))
	}

	inv.Items = make([]LineItem, 0)
	inv.recalculateTotals()
	inv.UpdatedAt = time.Now()

	return nil
}

// SetRates updates the tax and discount percentages and recomputes totals
func (inv *Invoice) SetRates(taxRate, discountRate decimal.Decimal) error {
	if !inv.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify a %s invoice", inv.Status))
	}
	if err := validateRate("Tax", taxRate); err != nil {
		return err
	}
	if err := validateRate("Discount", discountRate); err != nil {
		return err
	}

	inv.TaxRate = taxRate
	inv.DiscountRate = discountRate
	inv.recalculateTotals()
	inv.UpdatedAt = time.Now()

	return nil
}

// SetDates updates issue and due dates
func (inv *Invoice) SetDates(issueDate, dueDate time.Time) error {
	if !inv.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify a %s invoice", inv.Status))
	}
	if dueDate.Before(issueDate) {
		return shared.NewDomainError("INVALID_DATES", "Due date cannot be before issue date")
	}

	inv.IssueDate = issueDate
	inv.DueDate = dueDate
	inv.UpdatedAt = time.Now()

	return nil
}

// SetCustomer reassigns the invoice to a different customer
func (inv *Invoice) SetCustomer(customerID uuid.UUID) error {
	if !inv.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot modify a %s invoice", inv.Status))
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	inv.CustomerID = customerID
	inv.UpdatedAt = time.Now()

	return nil
}

// SetNotes sets the invoice notes
func (inv *Invoice) SetNotes(notes string) {
	inv.Notes = notes
	inv.UpdatedAt = time.Now()
}

// ChangeStatus applies the lifecycle precedence rules to a requested status.
// The rules are authoritative over the request rather than a reason to
// reject it: paying a draft lands on paid with a stamped date, a past-due
// sent request lands on overdue, and repeating a transition is a no-op.
// Requesting any non-paid status on a paid invoice clears the paid date
// before the rules run, so the invoice does not snap back to paid. The one
// hard gate is that a cancelled invoice only leaves via restore to draft.
func (inv *Invoice) ChangeStatus(target InvoiceStatus, now time.Time) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status %q", target))
	}
	if inv.Status == StatusCancelled && target != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "A cancelled invoice can only be restored to draft")
	}

	if inv.Status == StatusPaid && target != StatusPaid {
		inv.PaidDate = nil
	}

	status, paidDate := ResolveStatus(target, inv.PaidDate, inv.DueDate, now)
	inv.Status = status
	inv.PaidDate = paidDate
	inv.UpdatedAt = now

	return nil
}

// Send marks a draft invoice as sent. A past due date resolves straight
// to overdue.
func (inv *Invoice) Send(now time.Time) error {
	return inv.ChangeStatus(StatusSent, now)
}

// MarkPaid records payment on the invoice
func (inv *Invoice) MarkPaid(now time.Time) error {
	return inv.ChangeStatus(StatusPaid, now)
}

// Cancel voids the invoice
func (inv *Invoice) Cancel(now time.Time) error {
	return inv.ChangeStatus(StatusCancelled, now)
}

// Reopen takes a paid invoice back to the fallback status, clearing the
// paid date. An empty fallback defaults to sent.
func (inv *Invoice) Reopen(fallback InvoiceStatus, now time.Time) error {
	if fallback == "" {
		fallback = StatusSent
	}
	if inv.Status != StatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Only paid invoices can be reopened")
	}
	if fallback == StatusPaid {
		return shared.NewDomainError("INVALID_STATUS", "Reopen fallback cannot be paid")
	}
	return inv.ChangeStatus(fallback, now)
}

// Refresh re-evaluates the derived status against the clock. A sent invoice
// past its due date becomes overdue; everything else is left alone.
func (inv *Invoice) Refresh(now time.Time) {
	status, paidDate := ResolveStatus(inv.Status, inv.PaidDate, inv.DueDate, now)
	if status != inv.Status {
		inv.Status = status
		inv.PaidDate = paidDate
		inv.UpdatedAt = now
	}
}

// Duplicate creates a fresh draft copy of this invoice under a new number.
// Line items, rates, currency and notes carry over; status and payment
// state do not.
func (inv *Invoice) Duplicate(newNumber string, issueDate, dueDate time.Time) (*Invoice, error) {
	copy, err := NewInvoice(inv.OwnerID, inv.CustomerID, newNumber, issueDate, dueDate, inv.Currency, inv.TaxRate, inv.DiscountRate, inv.Notes)
	if err != nil {
		return nil, err
	}

	for _, item := range inv.Items {
		if _, err := copy.AddItem(item.Description, item.Quantity, item.UnitRate); err != nil {
			return nil, err
		}
	}

	return copy, nil
}

// recalculateTotals recomputes subtotal, tax, discount and total from the
// line items. The whole chain runs on raw quantity*rate products; only the
// four stored figures are rounded, each to 2 places independently, ties away
// from zero. The total is not clamped at zero: a discount larger than
// subtotal plus tax yields a negative total.
func (inv *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitRate))
	}
	tax := subtotal.Mul(inv.TaxRate).Div(oneHundred)
	discount := subtotal.Mul(inv.DiscountRate).Div(oneHundred)

	inv.Subtotal = subtotal.Round(2)
	inv.TaxAmount = tax.Round(2)
	inv.DiscountAmount = discount.Round(2)
	inv.Total = subtotal.Add(tax).Sub(discount).Round(2)
}

// GetSubtotalMoney returns the subtotal as Money
func (inv *Invoice) GetSubtotalMoney() valueobject.Money {
	return mustMoney(inv.Subtotal, inv.Currency)
}

// GetTaxAmountMoney returns the tax amount as Money
func (inv *Invoice) GetTaxAmountMoney() valueobject.Money {
	return mustMoney(inv.TaxAmount, inv.Currency)
}

// GetDiscountAmountMoney returns the discount amount as Money
func (inv *Invoice) GetDiscountAmountMoney() valueobject.Money {
	return mustMoney(inv.DiscountAmount, inv.Currency)
}

// GetTotalMoney returns the total as Money
func (inv *Invoice) GetTotalMoney() valueobject.Money {
	return mustMoney(inv.Total, inv.Currency)
}

func mustMoney(amount decimal.Decimal, currency valueobject.Currency) valueobject.Money {
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	m, _ := valueobject.NewMoney(amount, currency)
	return m
}

// Validate checks the invariants that can only hold once assembly is
// complete. An invoice carries at least one line item before it persists.
func (inv *Invoice) Validate() error {
	if len(inv.Items) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Invoice requires at least one line item")
	}
	return nil
}

// ItemCount returns the number of line items
func (inv *Invoice) ItemCount() int {
	return len(inv.Items)
}

// IsDraft returns true if the invoice is in draft status
func (inv *Invoice) IsDraft() bool {
	return inv.Status == StatusDraft
}

// IsPaid returns true if the invoice is paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == StatusPaid
}

// IsOverdue returns true if the invoice is overdue
func (inv *Invoice) IsOverdue() bool {
	return inv.Status == StatusOverdue
}

// IsCancelled returns true if the invoice is cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == StatusCancelled
}

// CanModify returns true if the invoice contents can still change.
// Paid and cancelled invoices are frozen until reopened or restored.
func (inv *Invoice) CanModify() bool {
	return inv.Status != StatusPaid && inv.Status != StatusCancelled
}
