/*
handlers.go - HTTP API handlers for the tuition and lending ledgers

PURPOSE:
  Exposes the ledger engines via REST. Handlers do the fetch/compute/persist
  dance the engines are built for: assemble a snapshot from the store, call
  the pure engine, write back whatever rows it returned.

ENDPOINTS:
  Students:
    GET    /api/students                     List students
    POST   /api/students                     Register student (seeds fee rate)
    GET    /api/students/{id}                Get student
    GET    /api/students/{id}/rates          Fee-rate history
    POST   /api/students/{id}/rates          Record rate change (same-month upsert)
    GET    /api/students/{id}/ledger         Full tuition ledger
    POST   /api/students/{id}/ledger/generate  Generate missing FEE_DUE rows
    POST   /api/students/{id}/payments       Record payment
    POST   /api/students/{id}/pause          Pause/unpause a month
    GET    /api/students/{id}/summary        Due/paid/balance totals
    GET    /api/students/{id}/due-info       Earliest-first allocation
    DELETE /api/payments/{id}                Delete a payment row

  Lending:
    POST   /api/loans                        Create loan (+PRINCIPAL entry)
    GET    /api/loans/{id}                   Get loan
    GET    /api/loans/{id}/summary           Loan financial summary
    POST   /api/loans/{id}/payments          Record payment (stored negative)
    POST   /api/loans/{id}/settle            Settle (write-off + freeze)
    GET    /api/borrowers/{id}/loans         Borrower's loans
    GET    /api/borrowers/{id}/entries       Borrower's lending ledger
    GET    /api/borrowers/{id}/summary       Lifetime aggregation

CLOCK:
  Read/compute endpoints accept ?as_of=YYYY-MM-DD. The default is time.Now()
  here at the call site - never inside the engines.

ERROR HANDLING:
  - 400: Malformed input, missing fee-rate history
  - 404: Unknown student/loan/entry
  - 409: Duplicate FEE_DUE month, writes against a settled loan
  - 500: Everything else

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
	"github.com/piyush-ds-bit/teach-ease-engine/lending"
	"github.com/piyush-ds-bit/teach-ease-engine/store/sqlite"
	"github.com/piyush-ds-bit/teach-ease-engine/tuition"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// STUDENT HANDLERS
// =============================================================================

// ListStudents returns all students.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list students", err)
		return
	}

	dtos := make([]StudentDTO, len(students))
	for i, s := range students {
		dtos[i] = toStudentDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStudent registers a student and seeds the first fee-rate record,
// effective from the joining month. Without that seed, due generation would
// halt on missing history.
func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	joiningDate, err := time.Parse("2006-01-02", req.JoiningDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid joining_date format (use YYYY-MM-DD)", err)
		return
	}
	fee, err := decimal.NewFromString(req.MonthlyFee)
	if err != nil || fee.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid monthly_fee", err)
		return
	}

	student, err := h.Store.SaveStudent(r.Context(), sqlite.Student{
		Name:        req.Name,
		Phone:       req.Phone,
		JoiningDate: joiningDate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create student", err)
		return
	}

	_, err = h.Store.UpsertFeeRate(r.Context(), tuition.FeeRateRecord{
		StudentID:     student.ID,
		EffectiveFrom: ledger.MonthKeyOf(joiningDate),
		Rate:          fee,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed fee rate", err)
		return
	}

	writeJSON(w, http.StatusCreated, toStudentDTO(student))
}

// GetStudent returns a single student.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.Store.GetStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get student", err)
		return
	}
	writeJSON(w, http.StatusOK, toStudentDTO(student))
}

// =============================================================================
// FEE RATE HANDLERS
// =============================================================================

// ListFeeRates returns a student's rate history.
func (h *Handler) ListFeeRates(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListFeeRates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list fee rates", err)
		return
	}

	dtos := make([]FeeRateDTO, len(records))
	for i, rec := range records {
		dtos[i] = toFeeRateDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ChangeRate records a rate change. Re-changing within the same effective
// month supersedes the earlier record.
func (h *Handler) ChangeRate(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req ChangeRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := ledger.ParseMonthKey(ledger.MonthKey(req.EffectiveFrom)); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_from (use YYYY-MM)", err)
		return
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil || rate.IsNegative() {
		writeError(w, http.StatusBadRequest, "Invalid rate", err)
		return
	}

	if _, err := h.Store.GetStudent(r.Context(), studentID); err != nil {
		writeDomainError(w, "Failed to get student", err)
		return
	}

	record, err := h.Store.UpsertFeeRate(r.Context(), tuition.FeeRateRecord{
		StudentID:     studentID,
		EffectiveFrom: ledger.MonthKey(req.EffectiveFrom),
		Rate:          rate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record rate change", err)
		return
	}
	writeJSON(w, http.StatusCreated, toFeeRateDTO(record))
}

// =============================================================================
// TUITION LEDGER HANDLERS
// =============================================================================

// GetLedger returns a student's full tuition ledger.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if _, err := h.Store.GetStudent(r.Context(), studentID); err != nil {
		writeDomainError(w, "Failed to get student", err)
		return
	}

	entries, err := h.Store.ListEntries(r.Context(), studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// GenerateDues computes and persists the FEE_DUE rows missing as of now.
// Idempotent: a second call with no new chargeable months persists nothing
// and returns an empty list.
func (h *Handler) GenerateDues(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	asOf := asOfParam(r)

	snap, err := h.Store.TuitionSnapshot(r.Context(), studentID)
	if err != nil {
		writeDomainError(w, "Failed to load snapshot", err)
		return
	}

	generated, err := tuition.GenerateDueEntries(snap, asOf)
	if err != nil {
		writeDomainError(w, "Failed to generate dues", err)
		return
	}

	if len(generated) > 0 {
		if generated, err = h.Store.AppendEntries(r.Context(), generated); err != nil {
			writeDomainError(w, "Failed to persist dues", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(generated))
}

// RecordPayment records a tuition payment. Amounts are stored positive in
// this ledger; allocation happens at read time.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := ledger.ParseMonthKey(ledger.MonthKey(req.Month)); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month_key (use YYYY-MM)", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	if _, err := h.Store.GetStudent(r.Context(), studentID); err != nil {
		writeDomainError(w, "Failed to get student", err)
		return
	}

	entries, err := h.Store.AppendEntries(r.Context(), []tuition.Entry{{
		StudentID:   studentID,
		Type:        tuition.EntryPayment,
		Month:       ledger.MonthKey(req.Month),
		Amount:      amount,
		Description: req.Description,
	}})
	if err != nil {
		writeDomainError(w, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entries[0]))
}

// DeletePayment removes a payment row (the only deletion the ledger allows).
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "Failed to delete payment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PauseMonth toggles the pause marker for a month. Paused months are skipped
// by due generation; payments already recorded are unaffected.
func (h *Handler) PauseMonth(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req PauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := ledger.ParseMonthKey(ledger.MonthKey(req.Month)); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month_key (use YYYY-MM)", err)
		return
	}

	if _, err := h.Store.GetStudent(r.Context(), studentID); err != nil {
		writeDomainError(w, "Failed to get student", err)
		return
	}

	if err := h.Store.SetMonthPaused(r.Context(), studentID, ledger.MonthKey(req.Month), req.Paused); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to toggle pause", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSummary returns the replayed ledger totals.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if _, err := h.Store.GetStudent(r.Context(), studentID); err != nil {
		writeDomainError(w, "Failed to get student", err)
		return
	}

	entries, err := h.Store.ListEntries(r.Context(), studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	summary := tuition.CalculateSummary(entries)
	writeJSON(w, http.StatusOK, SummaryDTO{
		TotalDue:      summary.TotalDue.String(),
		TotalPaid:     summary.TotalPaid.String(),
		Balance:       summary.Balance.String(),
		PendingMonths: monthKeyStrings(summary.PendingMonths),
	})
}

// GetDueInfo returns the earliest-month-first allocation: which months remain
// owed and whether the oldest one is partially covered.
func (h *Handler) GetDueInfo(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	asOf := asOfParam(r)

	snap, err := h.Store.TuitionSnapshot(r.Context(), studentID)
	if err != nil {
		writeDomainError(w, "Failed to load snapshot", err)
		return
	}

	info := tuition.CalculateDueInfo(snap, asOf)
	dto := DueInfoDTO{
		IsPartial:     info.IsPartial,
		FullDueMonths: monthKeyStrings(info.FullDueMonths),
	}
	if info.IsPartial {
		dto.PartialMonth = string(info.PartialMonth)
		dto.PartialAmount = info.PartialAmount.String()
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// LENDING HANDLERS
// =============================================================================

// CreateLoan creates a loan and its single PRINCIPAL ledger entry atomically.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.BorrowerID == "" {
		writeError(w, http.StatusBadRequest, "borrower_id is required", nil)
		return
	}

	principal, err := decimal.NewFromString(req.Principal)
	if err != nil || !principal.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid principal", err)
		return
	}
	interestType := lending.InterestType(req.InterestType)
	switch interestType {
	case lending.ZeroInterest, lending.SimpleMonthly, lending.SimpleYearly:
	default:
		writeError(w, http.StatusBadRequest, "Invalid interest_type", nil)
		return
	}
	rate := decimal.Zero
	if interestType != lending.ZeroInterest {
		if rate, err = decimal.NewFromString(req.InterestRate); err != nil || rate.IsNegative() {
			writeError(w, http.StatusBadRequest, "Invalid interest_rate", err)
			return
		}
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}

	loan, err := h.Store.CreateLoan(r.Context(),
		lending.Loan{
			BorrowerID:   req.BorrowerID,
			Principal:    principal,
			InterestType: interestType,
			InterestRate: rate,
			StartDate:    startDate,
			Status:       lending.LoanActive,
		},
		lending.Entry{
			BorrowerID:  req.BorrowerID,
			Type:        lending.EntryPrincipal,
			Amount:      principal,
			EntryDate:   startDate,
			Description: req.Description,
		},
	)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create loan", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLoanDTO(loan))
}

// GetLoan returns a single loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(loan))
}

// GetLoanSummary returns the derived financial state of a loan. For settled
// loans the interest window is frozen at settlement regardless of as_of.
func (h *Handler) GetLoanSummary(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}

	entries, err := h.Store.ListLendingEntries(r.Context(), loan.BorrowerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	summary := lending.Summarize(loan, entries, asOfParam(r))
	writeJSON(w, http.StatusOK, toLoanSummaryDTO(summary))
}

// RecordLoanPayment records a payment against a loan. The ledger stores
// payments negative; clients send positive amounts. Settled loans are
// read-only.
func (h *Handler) RecordLoanPayment(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}
	if loan.IsSettled() {
		writeDomainError(w, "Loan is settled", ledger.ErrLoanSettled)
		return
	}

	var req RecordLoanPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}
	entryDate := time.Now().UTC()
	if req.EntryDate != "" {
		if entryDate, err = time.Parse("2006-01-02", req.EntryDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid entry_date format (use YYYY-MM-DD)", err)
			return
		}
	}

	entry, err := h.Store.AppendLendingEntry(r.Context(), lending.Entry{
		BorrowerID:  loan.BorrowerID,
		LoanID:      loan.ID,
		Type:        lending.EntryPayment,
		Amount:      amount.Neg(),
		EntryDate:   entryDate,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record payment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLendingEntryDTO(entry))
}

// SettleLoan performs the single terminal transition: write off any
// remaining balance and freeze interest at the settlement instant.
func (h *Handler) SettleLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get loan", err)
		return
	}

	entries, err := h.Store.ListLendingEntries(r.Context(), loan.BorrowerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	settlement, err := lending.Settle(loan, entries, asOfParam(r))
	if err != nil {
		writeDomainError(w, "Failed to settle loan", err)
		return
	}

	if err := h.Store.SettleLoan(r.Context(), settlement.Loan, settlement.WriteOff); err != nil {
		writeDomainError(w, "Failed to persist settlement", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(settlement.Loan))
}

// ListBorrowerLoans returns all of a borrower's loans.
func (h *Handler) ListBorrowerLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Store.ListLoansByBorrower(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list loans", err)
		return
	}

	dtos := make([]LoanDTO, len(loans))
	for i, l := range loans {
		dtos[i] = toLoanDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListBorrowerEntries returns a borrower's full lending ledger.
func (h *Handler) ListBorrowerEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListLendingEntries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	dtos := make([]LendingEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toLendingEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBorrowerSummary returns the lifetime aggregation across a borrower's
// loans.
func (h *Handler) GetBorrowerSummary(w http.ResponseWriter, r *http.Request) {
	borrowerID := chi.URLParam(r, "id")
	asOf := asOfParam(r)

	loans, err := h.Store.ListLoansByBorrower(r.Context(), borrowerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list loans", err)
		return
	}
	entries, err := h.Store.ListLendingEntries(r.Context(), borrowerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}

	summary := lending.SummarizeBorrower(borrowerID, loans, entries, asOf)
	writeJSON(w, http.StatusOK, BorrowerSummaryDTO{
		BorrowerID:       summary.BorrowerID,
		TotalPrincipal:   summary.TotalPrincipal.String(),
		TotalPaid:        summary.TotalPaid.String(),
		RemainingBalance: summary.RemainingBalance.String(),
		ActiveLoans:      summary.ActiveLoans,
		SettledLoans:     summary.SettledLoans,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// asOfParam reads ?as_of=YYYY-MM-DD, defaulting to the current time. The
// default lives here, at the call site; the engines take asOf explicitly.
func asOfParam(r *http.Request) time.Time {
	if v := r.URL.Query().Get("as_of"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine/store errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, ledger.ErrDuplicateFeeDue), errors.Is(err, ledger.ErrLoanSettled):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, ledger.ErrNoRateHistory):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
