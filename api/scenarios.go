/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates students, fee-rate
	history, ledger entries and loans that demonstrate specific features.

AVAILABLE SCENARIOS:

	new-student:        Single student, dues generated, first month paid
	rate-change:        Mid-history fee raise priced into later months
	paused-months:      Interior months paused and skipped by generation
	arrears:            Student behind, partial payment on the oldest month
	lending-settlement: Two loans, one settled with a write-off

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create students / loans
 3. Record rate changes, pauses, payments
 4. Generate dues through the engine, same as production would

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "rate-change"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, store)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: The production paths these scenarios exercise
  - scheduler.go: Background generation over seeded students
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
	"github.com/piyush-ds-bit/teach-ease-engine/lending"
	"github.com/piyush-ds-bit/teach-ease-engine/store/sqlite"
	"github.com/piyush-ds-bit/teach-ease-engine/tuition"
)

// Scenario describes a loadable demo scenario.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []Scenario{
	{"new-student", "New Student", "One student with generated dues and a first payment"},
	{"rate-change", "Fee Raise", "Rate raised mid-history; later months priced at the new rate"},
	{"paused-months", "Paused Months", "Interior months paused and skipped by due generation"},
	{"arrears", "Arrears", "Student several months behind with one partial payment"},
	{"lending-settlement", "Loan Settlement", "Two loans, one settled with a write-off entry"},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "new-student":
		err = loadNewStudentScenario(ctx, h.Store)
	case "rate-change":
		err = loadRateChangeScenario(ctx, h.Store)
	case "paused-months":
		err = loadPausedMonthsScenario(ctx, h.Store)
	case "arrears":
		err = loadArrearsScenario(ctx, h.Store)
	case "lending-settlement":
		err = loadLendingSettlementScenario(ctx, h.Store)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario_id", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func monthsAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, -n, 0)
}

// seedStudent creates a student plus the fee-rate record effective from the
// joining month, the same pairing CreateStudent does.
func seedStudent(ctx context.Context, store *sqlite.Store, name string, joined time.Time, fee int64) (sqlite.Student, error) {
	student, err := store.SaveStudent(ctx, sqlite.Student{
		Name:        name,
		JoiningDate: joined,
	})
	if err != nil {
		return sqlite.Student{}, err
	}
	_, err = store.UpsertFeeRate(ctx, tuition.FeeRateRecord{
		StudentID:     student.ID,
		EffectiveFrom: ledger.MonthKeyOf(joined),
		Rate:          decimal.NewFromInt(fee),
	})
	return student, err
}

// generateDues runs the engine and persists whatever it produced.
func generateDues(ctx context.Context, store *sqlite.Store, studentID string) error {
	snap, err := store.TuitionSnapshot(ctx, studentID)
	if err != nil {
		return err
	}
	entries, err := tuition.GenerateDueEntries(snap, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	_, err = store.AppendEntries(ctx, entries)
	return err
}

func recordPayment(ctx context.Context, store *sqlite.Store, studentID string, month ledger.MonthKey, amount int64, desc string) error {
	_, err := store.AppendEntries(ctx, []tuition.Entry{{
		StudentID:   studentID,
		Type:        tuition.EntryPayment,
		Month:       month,
		Amount:      decimal.NewFromInt(amount),
		Description: desc,
	}})
	return err
}

func loadNewStudentScenario(ctx context.Context, store *sqlite.Store) error {
	student, err := seedStudent(ctx, store, "Asha Verma", monthsAgo(3), 1500)
	if err != nil {
		return err
	}
	if err := generateDues(ctx, store, student.ID); err != nil {
		return err
	}
	return recordPayment(ctx, store, student.ID,
		ledger.MonthKeyOf(monthsAgo(2)), 1500, "First month paid in full")
}

func loadRateChangeScenario(ctx context.Context, store *sqlite.Store) error {
	student, err := seedStudent(ctx, store, "Rohan Gupta", monthsAgo(6), 1200)
	if err != nil {
		return err
	}
	_, err = store.UpsertFeeRate(ctx, tuition.FeeRateRecord{
		StudentID:     student.ID,
		EffectiveFrom: ledger.MonthKeyOf(monthsAgo(2)),
		Rate:          decimal.NewFromInt(1500),
	})
	if err != nil {
		return err
	}
	return generateDues(ctx, store, student.ID)
}

func loadPausedMonthsScenario(ctx context.Context, store *sqlite.Store) error {
	student, err := seedStudent(ctx, store, "Meera Nair", monthsAgo(5), 1000)
	if err != nil {
		return err
	}
	for _, n := range []int{3, 2} {
		if err := store.SetMonthPaused(ctx, student.ID, ledger.MonthKeyOf(monthsAgo(n)), true); err != nil {
			return err
		}
	}
	return generateDues(ctx, store, student.ID)
}

func loadArrearsScenario(ctx context.Context, store *sqlite.Store) error {
	student, err := seedStudent(ctx, store, "Kabir Shah", monthsAgo(4), 1000)
	if err != nil {
		return err
	}
	if err := generateDues(ctx, store, student.ID); err != nil {
		return err
	}
	// 1.5 months covered: oldest month full, next one partial
	return recordPayment(ctx, store, student.ID,
		ledger.MonthKeyOf(monthsAgo(3)), 1500, "Partial catch-up")
}

func loadLendingSettlementScenario(ctx context.Context, store *sqlite.Store) error {
	const borrowerID = "demo-borrower"

	// Active yearly-interest loan with a part payment
	active, err := store.CreateLoan(ctx,
		lending.Loan{
			BorrowerID:   borrowerID,
			Principal:    decimal.NewFromInt(10000),
			InterestType: lending.SimpleYearly,
			InterestRate: decimal.NewFromInt(12),
			StartDate:    monthsAgo(12),
		},
		lending.Entry{
			BorrowerID:  borrowerID,
			Type:        lending.EntryPrincipal,
			Amount:      decimal.NewFromInt(10000),
			EntryDate:   monthsAgo(12),
			Description: "Loan disbursed",
		})
	if err != nil {
		return err
	}
	_, err = store.AppendLendingEntry(ctx, lending.Entry{
		BorrowerID: borrowerID,
		LoanID:     active.ID,
		Type:       lending.EntryPayment,
		Amount:     decimal.NewFromInt(-4000),
		EntryDate:  monthsAgo(6),
	})
	if err != nil {
		return err
	}

	// Zero-interest loan paid down and settled with a write-off
	old, err := store.CreateLoan(ctx,
		lending.Loan{
			BorrowerID:   borrowerID,
			Principal:    decimal.NewFromInt(2000),
			InterestType: lending.ZeroInterest,
			InterestRate: decimal.Zero,
			StartDate:    monthsAgo(10),
		},
		lending.Entry{
			BorrowerID: borrowerID,
			Type:       lending.EntryPrincipal,
			Amount:     decimal.NewFromInt(2000),
			EntryDate:  monthsAgo(10),
		})
	if err != nil {
		return err
	}
	payment, err := store.AppendLendingEntry(ctx, lending.Entry{
		BorrowerID: borrowerID,
		LoanID:     old.ID,
		Type:       lending.EntryPayment,
		Amount:     decimal.NewFromInt(-1700),
		EntryDate:  monthsAgo(4),
	})
	if err != nil {
		return err
	}

	settlement, err := lending.Settle(old, []lending.Entry{payment}, monthsAgo(1))
	if err != nil {
		return err
	}
	return store.SettleLoan(ctx, settlement.Loan, settlement.WriteOff)
}
