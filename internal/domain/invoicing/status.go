package invoicing

import "time"

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusSent      InvoiceStatus = "sent"
	StatusPaid      InvoiceStatus = "paid"
	StatusOverdue   InvoiceStatus = "overdue"
	StatusCancelled InvoiceStatus = "cancelled"
)

// AllStatuses lists every valid invoice status
var AllStatuses = []InvoiceStatus{StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled}

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether an explicit update can land on the target
// status. Draft, sent and overdue invoices can all move straight to paid or
// cancelled; paid invoices leave via reopen, cancelled invoices via restore
// to draft. This describes the reachable graph; ChangeStatus resolves
// requests against the precedence rules rather than consulting it.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	if s == target {
		return false
	}
	switch s {
	case StatusDraft:
		return target == StatusSent || target == StatusPaid || target == StatusCancelled
	case StatusSent:
		return target == StatusPaid || target == StatusOverdue || target == StatusCancelled || target == StatusDraft
	case StatusOverdue:
		return target == StatusPaid || target == StatusCancelled || target == StatusSent
	case StatusPaid:
		return target == StatusSent
	case StatusCancelled:
		return target == StatusDraft
	}
	return false
}

// ResolveStatus applies the lifecycle precedence rules to a requested status
// and returns the effective status together with the paid date to record.
//
// A set paid date always wins: the invoice is paid no matter what was
// requested. Requesting paid without a paid date stamps the clock time.
// A sent or overdue invoice whose due date has passed without payment
// resolves to overdue.
func ResolveStatus(requested InvoiceStatus, paidDate *time.Time, dueDate time.Time, now time.Time) (InvoiceStatus, *time.Time) {
	if paidDate != nil {
		return StatusPaid, paidDate
	}
	if requested == StatusPaid {
		stamped := now
		return StatusPaid, &stamped
	}
	if (requested == StatusSent || requested == StatusOverdue) && dueDate.Before(now) {
		return StatusOverdue, nil
	}
	return requested, nil
}
