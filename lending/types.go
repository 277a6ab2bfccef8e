/*
Package lending implements the personal-loan ledger engine: simple-interest
accrual, per-loan settlement math, and borrower-level aggregation.

PURPOSE:
  Each loan is a fixed principal plus a closed-form interest accrual, tracked
  against an append-only ledger of PRINCIPAL/PAYMENT/ADJUSTMENT rows. Nothing
  is persisted incrementally - interest is recomputed from the loan's terms
  every time it is read.

KEY CONCEPTS IN THIS FILE (types.go):
  - Loan: immutable terms plus a single terminal status transition
  - Entry: one immutable lending ledger row

SIGN CONVENTION:
  PAYMENT amounts are stored NEGATIVE in this ledger (the tuition ledger
  stores them positive). The two conventions are intentionally different and
  must not be unified.

SEE ALSO:
  - interest.go: Closed-form accrual
  - summary.go: Loan/borrower summaries and settlement
*/
package lending

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LOAN - Immutable terms, one terminal transition
// =============================================================================

type InterestType string

const (
	ZeroInterest  InterestType = "zero_interest"
	SimpleMonthly InterestType = "simple_monthly"
	SimpleYearly  InterestType = "simple_yearly"
)

type LoanStatus string

const (
	LoanActive  LoanStatus = "active"
	LoanSettled LoanStatus = "settled"
)

// Loan holds a loan's terms. Principal, InterestType, InterestRate and
// StartDate are immutable after creation; Status and SettledAt transition
// exactly once, active -> settled, irreversibly.
type Loan struct {
	ID           string
	BorrowerID   string
	Principal    decimal.Decimal
	InterestType InterestType
	InterestRate decimal.Decimal // percent: 12 means 12%
	StartDate    time.Time
	Status       LoanStatus
	SettledAt    *time.Time
	CreatedAt    time.Time
}

// IsSettled reports whether the loan has reached its terminal state.
func (l Loan) IsSettled() bool {
	return l.Status == LoanSettled
}

// =============================================================================
// ENTRY - One immutable lending ledger row
// =============================================================================

type EntryType string

const (
	EntryPrincipal       EntryType = "PRINCIPAL"
	EntryInterestAccrual EntryType = "INTEREST_ACCRUAL"
	EntryPayment         EntryType = "PAYMENT"
	EntryAdjustment      EntryType = "ADJUSTMENT"
)

// Entry is an append-only lending ledger row. Exactly one PRINCIPAL entry is
// written when the loan is created, with Amount equal to the principal.
// LoanID is empty for legacy rows recorded before loans were first-class.
type Entry struct {
	ID          string
	BorrowerID  string
	LoanID      string // empty = legacy, unlinked
	Type        EntryType
	Amount      decimal.Decimal // PAYMENT stored negative here
	EntryDate   time.Time
	Description string
}

// entriesForLoan filters a borrower's rows down to one loan.
func entriesForLoan(entries []Entry, loanID string) []Entry {
	var scoped []Entry
	for _, e := range entries {
		if e.LoanID == loanID {
			scoped = append(scoped, e)
		}
	}
	return scoped
}
