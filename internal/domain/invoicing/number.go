package invoicing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nasrosoft/invoice-generator-saas/internal/domain/shared"
)

// Invoice numbers follow INV-YYYY-MM-SEQ, where SEQ is zero-padded to four
// digits and counts up per owner within the issue month. Past 9999 the
// sequence simply widens.
const numberPrefix = "INV"

// NumberPrefix returns the number prefix for the issue date's month,
// e.g. "INV-2025-09-".
func NumberPrefix(issueDate time.Time) string {
	return fmt.Sprintf("%s-%04d-%02d-", numberPrefix, issueDate.Year(), int(issueDate.Month()))
}

// FormatNumber renders a full invoice number for the given month and sequence
func FormatNumber(issueDate time.Time, seq int) string {
	return fmt.Sprintf("%s%04d", NumberPrefix(issueDate), seq)
}

// ParseSequence extracts the sequence from a full invoice number.
// A number that does not match the INV-YYYY-MM-SEQ shape is a data
// integrity error, never silently treated as sequence zero.
func ParseSequence(number string) (int, error) {
	parts := strings.Split(number, "-")
	if len(parts) != 4 || parts[0] != numberPrefix {
		return 0, shared.NewDomainError("DATA_INTEGRITY", fmt.Sprintf("Malformed invoice number %q", number))
	}
	seq, err := strconv.Atoi(parts[3])
	if err != nil || seq < 0 {
		return 0, shared.NewDomainError("DATA_INTEGRITY", fmt.Sprintf("Malformed invoice number %q", number))
	}
	return seq, nil
}

// NextNumber derives the next invoice number for the issue month from the
// highest number already assigned under that month's prefix. An empty
// highest number starts the month at 0001.
func NextNumber(issueDate time.Time, highest string) (string, error) {
	if highest == "" {
		return FormatNumber(issueDate, 1), nil
	}

	seq, err := ParseSequence(highest)
	if err != nil {
		return "", err
	}

	return FormatNumber(issueDate, seq+1), nil
}
