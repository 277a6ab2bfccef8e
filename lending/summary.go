/*
summary.go - Loan and borrower financial summaries, settlement

PURPOSE:
  Read-time derivation of what a loan is worth and what remains on it, plus
  the one state transition a loan ever makes: settlement.

REMAINING BALANCE:
  remaining = max(0, principal + interestAccrued + adjustments - totalPaid).
  The clamp is deliberate: overpayment is silently absorbed, never reported
  as credit. ADJUSTMENT rows carry their sign into the due side, so replaying
  a settled loan's ledger (write-off included) lands on zero.

SETTLEMENT:
  Settling a loan with a positive remaining balance writes exactly one
  ADJUSTMENT entry of -remaining (a write-off) dated asOf, then flips the
  loan to settled with SettledAt = asOf. Terminal and irreversible; the
  engine computes the transition, the caller persists it, and further writes
  to the loan are refused upstream by convention.

SEE ALSO:
  - interest.go: The accrual half of totalDue
  - types.go: Entry sign conventions
*/
package lending

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
)

// =============================================================================
// LOAN SUMMARY
// =============================================================================

// LoanSummary is the derived financial state of one loan at a point in time.
type LoanSummary struct {
	LoanID           string
	Principal        decimal.Decimal
	InterestAccrued  decimal.Decimal
	TotalDue         decimal.Decimal
	TotalPaid        decimal.Decimal
	RemainingBalance decimal.Decimal
	Status           LoanStatus
}

// Summarize derives a loan's financial state from its terms and the
// borrower's ledger rows as of the given time. Entries not linked to this
// loan are ignored; interest comes from the closed-form accrual, bypassing
// any ledger-derived interest entirely.
func Summarize(loan Loan, entries []Entry, asOf time.Time) LoanSummary {
	interest := Interest(loan, asOf)

	totalPaid := decimal.Zero
	adjustments := decimal.Zero
	for _, e := range entriesForLoan(entries, loan.ID) {
		switch e.Type {
		case EntryPayment:
			totalPaid = totalPaid.Add(e.Amount.Abs())
		case EntryAdjustment:
			adjustments = adjustments.Add(e.Amount)
		}
	}

	totalDue := loan.Principal.Add(interest).Add(adjustments)

	return LoanSummary{
		LoanID:           loan.ID,
		Principal:        loan.Principal,
		InterestAccrued:  interest,
		TotalDue:         totalDue,
		TotalPaid:        totalPaid,
		RemainingBalance: ledger.ClampNonNegative(totalDue.Sub(totalPaid)),
		Status:           loan.Status,
	}
}

// =============================================================================
// SETTLEMENT - The single terminal transition
// =============================================================================

// Settlement is the computed outcome of settling a loan: the updated loan
// record and the write-off entry to persist, if any.
type Settlement struct {
	Loan     Loan
	WriteOff *Entry // nil when the loan was already fully paid
}

// Settle computes the settlement of a loan as of the given time. Returns
// ledger.ErrLoanSettled if the loan is already settled.
//
// When a positive balance remains, the result carries one ADJUSTMENT entry
// of -remaining dated asOf. The caller persists both the entry and the
// updated loan; the engine mutates nothing.
func Settle(loan Loan, entries []Entry, asOf time.Time) (Settlement, error) {
	if loan.IsSettled() {
		return Settlement{}, ledger.ErrLoanSettled
	}

	summary := Summarize(loan, entries, asOf)

	settledAt := asOf
	loan.Status = LoanSettled
	loan.SettledAt = &settledAt

	result := Settlement{Loan: loan}
	if summary.RemainingBalance.IsPositive() {
		result.WriteOff = &Entry{
			BorrowerID:  loan.BorrowerID,
			LoanID:      loan.ID,
			Type:        EntryAdjustment,
			Amount:      summary.RemainingBalance.Neg(),
			EntryDate:   asOf,
			Description: "Write-off on settlement",
		}
	}
	return result, nil
}

// =============================================================================
// BORROWER SUMMARY - Pure aggregation across loans
// =============================================================================

// BorrowerSummary is the lifetime position across all of a borrower's loans.
type BorrowerSummary struct {
	BorrowerID       string
	TotalPrincipal   decimal.Decimal
	TotalPaid        decimal.Decimal
	RemainingBalance decimal.Decimal
	ActiveLoans      int
	SettledLoans     int
}

// SummarizeBorrower aggregates per-loan summaries. Loans do not interact;
// this is pure addition over Summarize results.
func SummarizeBorrower(borrowerID string, loans []Loan, entries []Entry, asOf time.Time) BorrowerSummary {
	summary := BorrowerSummary{
		BorrowerID:       borrowerID,
		TotalPrincipal:   decimal.Zero,
		TotalPaid:        decimal.Zero,
		RemainingBalance: decimal.Zero,
	}

	for _, loan := range loans {
		if loan.BorrowerID != borrowerID {
			continue
		}
		s := Summarize(loan, entries, asOf)
		summary.TotalPrincipal = summary.TotalPrincipal.Add(s.Principal)
		summary.TotalPaid = summary.TotalPaid.Add(s.TotalPaid)
		summary.RemainingBalance = summary.RemainingBalance.Add(s.RemainingBalance)
		if loan.IsSettled() {
			summary.SettledLoans++
		} else {
			summary.ActiveLoans++
		}
	}
	return summary
}
