package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
	"github.com/piyush-ds-bit/teach-ease-engine/lending"
	"github.com/piyush-ds-bit/teach-ease-engine/store/sqlite"
	"github.com/piyush-ds-bit/teach-ease-engine/tuition"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedStudent(t *testing.T, store *sqlite.Store) sqlite.Student {
	t.Helper()
	student, err := store.SaveStudent(context.Background(), sqlite.Student{
		Name:        "Asha Verma",
		Phone:       "9876543210",
		JoiningDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return student
}

func feeDueEntry(studentID string, month ledger.MonthKey, amount int64) tuition.Entry {
	return tuition.Entry{
		StudentID: studentID,
		Type:      tuition.EntryFeeDue,
		Month:     month,
		Amount:    decimal.NewFromInt(amount),
	}
}

// =============================================================================
// STUDENTS
// =============================================================================

func TestStudentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	saved := seedStudent(t, store)

	assert.NotEmpty(t, saved.ID, "ID is minted on save")
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := store.GetStudent(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Name, got.Name)
	assert.Equal(t, saved.Phone, got.Phone)
	assert.True(t, saved.JoiningDate.Equal(got.JoiningDate))
}

func TestGetStudent_Missing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetStudent(context.Background(), "nope")
	assert.ErrorIs(t, err, ledger.ErrStudentNotFound)
}

func TestListStudents(t *testing.T) {
	store := newTestStore(t)
	seedStudent(t, store)
	seedStudent(t, store)

	students, err := store.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 2)
}

// =============================================================================
// FEE RATES
// =============================================================================

func TestUpsertFeeRate_SameMonthSupersedes(t *testing.T) {
	store := newTestStore(t)
	student := seedStudent(t, store)
	ctx := context.Background()

	// GIVEN: A rate recorded for June
	_, err := store.UpsertFeeRate(ctx, tuition.FeeRateRecord{
		StudentID:     student.ID,
		EffectiveFrom: "2024-06",
		Rate:          decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	// WHEN: The rate for June is changed again
	_, err = store.UpsertFeeRate(ctx, tuition.FeeRateRecord{
		StudentID:     student.ID,
		EffectiveFrom: "2024-06",
		Rate:          decimal.NewFromInt(150),
	})
	require.NoError(t, err)

	// THEN: One record remains, carrying the later rate
	records, err := store.ListFeeRates(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Rate.Equal(decimal.NewFromInt(150)))
}

func TestListFeeRates_EarliestFirst(t *testing.T) {
	store := newTestStore(t)
	student := seedStudent(t, store)
	ctx := context.Background()

	for _, month := range []ledger.MonthKey{"2024-09", "2024-01", "2024-05"} {
		_, err := store.UpsertFeeRate(ctx, tuition.FeeRateRecord{
			StudentID:     student.ID,
			EffectiveFrom: month,
			Rate:          decimal.NewFromInt(100),
		})
		require.NoError(t, err)
	}

	records, err := store.ListFeeRates(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ledger.MonthKey("2024-01"), records[0].EffectiveFrom)
	assert.Equal(t, ledger.MonthKey("2024-09"), records[2].EffectiveFrom)
}

// =============================================================================
// TUITION LEDGER
// =============================================================================

func TestAppendEntries_MintsIDsAndPersists(t *testing.T) {
	store := newTestStore(t)
	student := seedStudent(t, store)
	ctx := context.Background()

	saved, err := store.AppendEntries(ctx, []tuition.Entry{
		feeDueEntry(student.ID, "2024-02", 100),
		feeDueEntry(student.ID, "2024-03", 100),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved[0].ID)
	assert.NotEmpty(t, saved[1].ID)

	entries, err := store.ListEntries(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.MonthKey("2024-02"), entries[0].Month)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestAppendEntries_DuplicateFeeDueRejected(t *testing.T) {
	store := newTestStore(t)
	student := seedStudent(t, store)
	ctx := context.Background()

	_, err := store.AppendEntries(ctx, []tuition.Entry{feeDueEntry(student.ID, "2024-02", 100)})
	require.NoError(t, err)

	// A second FEE_DUE for the same month must fail, and atomically: the
	// accompanying row for March must not slip in either.
	_, err = store.AppendEntries(ctx, []tuition.Entry{
		feeDueEntry(student.ID, "2024-03", 100),
		feeDueEntry(student.ID, "2024-02", 100),
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateFeeDue)

	entries, err := store.ListEntries(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeletePayment(t *testing.T) {
	store := newTestStore(t)
	student := seedStudent(t, store)
	ctx := context.Background()

	saved, err := store.AppendEntries(ctx, []tuition.Entry{
		feeDueEntry(student.ID, "2024-02", 100),
		{StudentID: student.ID, Type: tuition.EntryPayment, Month: "2024-02", Amount: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)

	// Payments can be removed
	require.NoError(t, store.DeletePayment(ctx, saved[1].ID))

	// FEE_DUE rows cannot, even by ID
	err = store.DeletePayment(ctx, saved[0].ID)
	assert.ErrorIs(t, err, ledger.ErrEntryNotFound)

	entries, err := store.ListEntries(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, tuition.EntryFeeDue, entries[0].Type)
}

func TestSetMonthPaused_Toggle(t *testing.T) {
	store := newTestStore(t)
	student := seedStudent(t, store)
	ctx := context.Background()

	// Pausing twice leaves a single marker
	require.NoError(t, store.SetMonthPaused(ctx, student.ID, "2024-04", true))
	require.NoError(t, store.SetMonthPaused(ctx, student.ID, "2024-04", true))

	entries, err := store.ListEntries(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, tuition.EntryPause, entries[0].Type)

	// Unpausing removes it
	require.NoError(t, store.SetMonthPaused(ctx, student.ID, "2024-04", false))
	entries, err = store.ListEntries(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTuitionSnapshot(t *testing.T) {
	store := newTestStore(t)
	student := seedStudent(t, store)
	ctx := context.Background()

	_, err := store.UpsertFeeRate(ctx, tuition.FeeRateRecord{
		StudentID:     student.ID,
		EffectiveFrom: "2024-01",
		Rate:          decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	_, err = store.AppendEntries(ctx, []tuition.Entry{feeDueEntry(student.ID, "2024-02", 100)})
	require.NoError(t, err)

	snap, err := store.TuitionSnapshot(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, snap.StudentID)
	assert.True(t, student.JoiningDate.Equal(snap.JoiningDate))
	assert.Len(t, snap.Entries, 1)
	assert.Len(t, snap.Rates, 1)

	_, err = store.TuitionSnapshot(ctx, "nope")
	assert.ErrorIs(t, err, ledger.ErrStudentNotFound)
}

// =============================================================================
// LOANS
// =============================================================================

func seedLoan(t *testing.T, store *sqlite.Store, principal int64) lending.Loan {
	t.Helper()
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	loan, err := store.CreateLoan(context.Background(),
		lending.Loan{
			BorrowerID:   "bor-1",
			Principal:    decimal.NewFromInt(principal),
			InterestType: lending.ZeroInterest,
			InterestRate: decimal.Zero,
			StartDate:    start,
		},
		lending.Entry{
			BorrowerID:  "bor-1",
			Type:        lending.EntryPrincipal,
			Amount:      decimal.NewFromInt(principal),
			EntryDate:   start,
			Description: "Loan disbursed",
		})
	require.NoError(t, err)
	return loan
}

func TestCreateLoan_WritesPrincipalEntryAtomically(t *testing.T) {
	store := newTestStore(t)
	loan := seedLoan(t, store, 5000)

	got, err := store.GetLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, lending.LoanActive, got.Status)
	assert.True(t, got.Principal.Equal(decimal.NewFromInt(5000)))
	assert.Nil(t, got.SettledAt)

	entries, err := store.ListLendingEntries(context.Background(), "bor-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, lending.EntryPrincipal, entries[0].Type)
	assert.Equal(t, loan.ID, entries[0].LoanID)
}

func TestGetLoan_Missing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetLoan(context.Background(), "nope")
	assert.ErrorIs(t, err, ledger.ErrLoanNotFound)
}

func TestSettleLoan_SecondSettlementLosesRace(t *testing.T) {
	store := newTestStore(t)
	loan := seedLoan(t, store, 1000)
	ctx := context.Background()

	settledAt := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	loan.Status = lending.LoanSettled
	loan.SettledAt = &settledAt
	writeOff := &lending.Entry{
		BorrowerID:  "bor-1",
		LoanID:      loan.ID,
		Type:        lending.EntryAdjustment,
		Amount:      decimal.NewFromInt(-1000),
		EntryDate:   settledAt,
		Description: "Write-off on settlement",
	}

	require.NoError(t, store.SettleLoan(ctx, loan, writeOff))

	got, err := store.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, lending.LoanSettled, got.Status)
	require.NotNil(t, got.SettledAt)

	// The guarded UPDATE rejects a replay, and no second write-off lands.
	err = store.SettleLoan(ctx, loan, writeOff)
	assert.ErrorIs(t, err, ledger.ErrLoanSettled)

	entries, err := store.ListLendingEntries(ctx, "bor-1")
	require.NoError(t, err)
	assert.Len(t, entries, 2) // principal + one write-off
}

func TestAppendLendingEntry_AndListOrder(t *testing.T) {
	store := newTestStore(t)
	loan := seedLoan(t, store, 1000)
	ctx := context.Background()

	_, err := store.AppendLendingEntry(ctx, lending.Entry{
		BorrowerID: "bor-1",
		LoanID:     loan.ID,
		Type:       lending.EntryPayment,
		Amount:     decimal.NewFromInt(-400),
		EntryDate:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	entries, err := store.ListLendingEntries(ctx, "bor-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Earliest first: principal (Jan) before payment (Mar)
	assert.Equal(t, lending.EntryPrincipal, entries[0].Type)
	assert.Equal(t, lending.EntryPayment, entries[1].Type)
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(-400)))
}

func TestListLoansByBorrower(t *testing.T) {
	store := newTestStore(t)
	seedLoan(t, store, 1000)
	seedLoan(t, store, 2000)

	loans, err := store.ListLoansByBorrower(context.Background(), "bor-1")
	require.NoError(t, err)
	assert.Len(t, loans, 2)

	loans, err = store.ListLoansByBorrower(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Empty(t, loans)
}
