/*
errors.go - Centralized error types shared by both engines

PURPOSE:
  All sentinel errors in one place. Domain packages and the store wrap these
  with additional context; handlers map them to HTTP status codes.

USAGE:
  if errors.Is(err, ledger.ErrNoRateHistory) {
      // ask the caller to backfill a fee-rate record
  }

SEE ALSO:
  - tuition/rates.go: Returns NoRateHistoryError
  - store/sqlite/sqlite.go: Returns not-found and duplicate errors
  - api/handlers.go: Maps these to HTTP statuses
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoRateHistory is returned when a month must be priced but the student
	// has no fee-rate records at all. This is a caller-data-integrity problem:
	// due generation halts until a rate record is backfilled. It is never
	// silently defaulted to zero.
	ErrNoRateHistory = errors.New("no fee rate history")

	// ErrDuplicateFeeDue is returned when a FEE_DUE row already exists for a
	// (student, month) pair. The engine filters these out before insert; the
	// store's unique index is a backstop.
	ErrDuplicateFeeDue = errors.New("duplicate fee due for month")

	// ErrLoanSettled is returned when a write is attempted against a settled
	// loan. Settlement is terminal; settled loans are read-only.
	ErrLoanSettled = errors.New("loan already settled")

	// ErrStudentNotFound is returned when a referenced student doesn't exist.
	ErrStudentNotFound = errors.New("student not found")

	// ErrLoanNotFound is returned when a referenced loan doesn't exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrEntryNotFound is returned when a referenced ledger entry doesn't exist.
	ErrEntryNotFound = errors.New("ledger entry not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoRateHistoryError reports which student and month could not be priced.
type NoRateHistoryError struct {
	StudentID string
	Month     MonthKey
}

func (e *NoRateHistoryError) Error() string {
	return fmt.Sprintf("no fee rate history for student %s (pricing %s)", e.StudentID, e.Month)
}

func (e *NoRateHistoryError) Unwrap() error {
	return ErrNoRateHistory
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoRateHistory) ||
		errors.Is(err, ErrDuplicateFeeDue) ||
		errors.Is(err, ErrLoanSettled)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrLoanNotFound) ||
		errors.Is(err, ErrEntryNotFound)
}
