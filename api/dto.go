/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from the
  wire contract. Money crosses the wire as decimal strings, never floats.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
	"github.com/piyush-ds-bit/teach-ease-engine/lending"
	"github.com/piyush-ds-bit/teach-ease-engine/store/sqlite"
	"github.com/piyush-ds-bit/teach-ease-engine/tuition"
)

// =============================================================================
// STUDENTS
// =============================================================================

// StudentDTO represents a student in API responses.
type StudentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	JoiningDate string `json:"joining_date"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CreateStudentRequest is the request to register a student.
type CreateStudentRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	JoiningDate string `json:"joining_date"` // YYYY-MM-DD
	MonthlyFee  string `json:"monthly_fee"`  // seeds the first fee-rate record
}

// =============================================================================
// FEE RATES
// =============================================================================

// FeeRateDTO represents one rate-change record.
type FeeRateDTO struct {
	ID            string `json:"id"`
	StudentID     string `json:"student_id"`
	EffectiveFrom string `json:"effective_from"` // YYYY-MM
	Rate          string `json:"rate"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// ChangeRateRequest records a rate change effective from a month.
// A second change for the same month supersedes the first.
type ChangeRateRequest struct {
	EffectiveFrom string `json:"effective_from"` // YYYY-MM
	Rate          string `json:"rate"`
}

// =============================================================================
// TUITION LEDGER
// =============================================================================

// EntryDTO represents one tuition ledger row.
type EntryDTO struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	Type        string `json:"entry_type"`
	Month       string `json:"month_key"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// RecordPaymentRequest records a tuition payment against a month.
type RecordPaymentRequest struct {
	Month       string `json:"month_key"` // YYYY-MM
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// PauseRequest toggles the pause marker for a month.
type PauseRequest struct {
	Month  string `json:"month_key"` // YYYY-MM
	Paused bool   `json:"paused"`
}

// SummaryDTO is the replayed ledger totals for a student.
type SummaryDTO struct {
	TotalDue      string   `json:"total_due"`
	TotalPaid     string   `json:"total_paid"`
	Balance       string   `json:"balance"`
	PendingMonths []string `json:"pending_months"`
}

// DueInfoDTO reports the earliest-month-first payment allocation.
type DueInfoDTO struct {
	IsPartial     bool     `json:"is_partial"`
	PartialMonth  string   `json:"partial_month,omitempty"`
	PartialAmount string   `json:"partial_amount,omitempty"`
	FullDueMonths []string `json:"full_due_months"`
}

// =============================================================================
// LENDING
// =============================================================================

// LoanDTO represents a loan in API responses.
type LoanDTO struct {
	ID           string `json:"id"`
	BorrowerID   string `json:"borrower_id"`
	Principal    string `json:"principal"`
	InterestType string `json:"interest_type"`
	InterestRate string `json:"interest_rate"`
	StartDate    string `json:"start_date"`
	Status       string `json:"status"`
	SettledAt    string `json:"settled_at,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// CreateLoanRequest creates a loan; the PRINCIPAL ledger entry is written
// atomically with it.
type CreateLoanRequest struct {
	BorrowerID   string `json:"borrower_id"`
	Principal    string `json:"principal"`
	InterestType string `json:"interest_type"`
	InterestRate string `json:"interest_rate"`
	StartDate    string `json:"start_date"` // YYYY-MM-DD
	Description  string `json:"description"`
}

// LendingEntryDTO represents one lending ledger row.
type LendingEntryDTO struct {
	ID          string `json:"id"`
	BorrowerID  string `json:"borrower_id"`
	LoanID      string `json:"loan_id,omitempty"`
	Type        string `json:"entry_type"`
	Amount      string `json:"amount"`
	EntryDate   string `json:"entry_date"`
	Description string `json:"description,omitempty"`
}

// RecordLoanPaymentRequest records a payment against a loan. The amount is
// sent positive; the ledger stores it negative.
type RecordLoanPaymentRequest struct {
	Amount      string `json:"amount"`
	EntryDate   string `json:"entry_date"` // YYYY-MM-DD, optional
	Description string `json:"description"`
}

// LoanSummaryDTO is the derived financial state of one loan.
type LoanSummaryDTO struct {
	LoanID           string `json:"loan_id"`
	Principal        string `json:"principal"`
	InterestAccrued  string `json:"interest_accrued"`
	TotalDue         string `json:"total_due"`
	TotalPaid        string `json:"total_paid"`
	RemainingBalance string `json:"remaining_balance"`
	Status           string `json:"status"`
}

// BorrowerSummaryDTO aggregates a borrower's loans.
type BorrowerSummaryDTO struct {
	BorrowerID       string `json:"borrower_id"`
	TotalPrincipal   string `json:"total_principal"`
	TotalPaid        string `json:"total_paid"`
	RemainingBalance string `json:"remaining_balance"`
	ActiveLoans      int    `json:"active_loans"`
	SettledLoans     int    `json:"settled_loans"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toStudentDTO(s sqlite.Student) StudentDTO {
	return StudentDTO{
		ID:          s.ID,
		Name:        s.Name,
		Phone:       s.Phone,
		JoiningDate: s.JoiningDate.Format("2006-01-02"),
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func toFeeRateDTO(r tuition.FeeRateRecord) FeeRateDTO {
	return FeeRateDTO{
		ID:            r.ID,
		StudentID:     r.StudentID,
		EffectiveFrom: string(r.EffectiveFrom),
		Rate:          r.Rate.String(),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryDTO(e tuition.Entry) EntryDTO {
	return EntryDTO{
		ID:          e.ID,
		StudentID:   e.StudentID,
		Type:        string(e.Type),
		Month:       string(e.Month),
		Amount:      e.Amount.String(),
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryDTOs(entries []tuition.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

func toLoanDTO(l lending.Loan) LoanDTO {
	dto := LoanDTO{
		ID:           l.ID,
		BorrowerID:   l.BorrowerID,
		Principal:    l.Principal.String(),
		InterestType: string(l.InterestType),
		InterestRate: l.InterestRate.String(),
		StartDate:    l.StartDate.Format("2006-01-02"),
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
	}
	if l.SettledAt != nil {
		dto.SettledAt = l.SettledAt.Format(time.RFC3339)
	}
	return dto
}

func toLendingEntryDTO(e lending.Entry) LendingEntryDTO {
	return LendingEntryDTO{
		ID:          e.ID,
		BorrowerID:  e.BorrowerID,
		LoanID:      e.LoanID,
		Type:        string(e.Type),
		Amount:      e.Amount.String(),
		EntryDate:   e.EntryDate.Format("2006-01-02"),
		Description: e.Description,
	}
}

func toLoanSummaryDTO(s lending.LoanSummary) LoanSummaryDTO {
	return LoanSummaryDTO{
		LoanID:           s.LoanID,
		Principal:        s.Principal.String(),
		InterestAccrued:  s.InterestAccrued.String(),
		TotalDue:         s.TotalDue.String(),
		TotalPaid:        s.TotalPaid.String(),
		RemainingBalance: s.RemainingBalance.String(),
		Status:           string(s.Status),
	}
}

func monthKeyStrings(keys []ledger.MonthKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
