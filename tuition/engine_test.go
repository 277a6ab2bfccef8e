package tuition_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
	"github.com/piyush-ds-bit/teach-ease-engine/tuition"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func feeDue(month ledger.MonthKey, amount int64) tuition.Entry {
	return tuition.Entry{
		StudentID: "stu-1",
		Type:      tuition.EntryFeeDue,
		Month:     month,
		Amount:    decimal.NewFromInt(amount),
	}
}

func payment(month ledger.MonthKey, amount int64) tuition.Entry {
	return tuition.Entry{
		StudentID: "stu-1",
		Type:      tuition.EntryPayment,
		Month:     month,
		Amount:    decimal.NewFromInt(amount),
	}
}

func pause(month ledger.MonthKey) tuition.Entry {
	return tuition.Entry{StudentID: "stu-1", Type: tuition.EntryPause, Month: month}
}

func snapshot(joining time.Time, entries []tuition.Entry, rates ...tuition.FeeRateRecord) tuition.Snapshot {
	return tuition.Snapshot{
		StudentID:   "stu-1",
		JoiningDate: joining,
		Entries:     entries,
		Rates:       rates,
	}
}

// =============================================================================
// DUE GENERATION
// =============================================================================

func TestGenerateDueEntries_ChargesInteriorMonthsOnly(t *testing.T) {
	// GIVEN: Student joined Jan 15, flat rate 100, asOf April 10
	// WHEN: Generating dues
	// THEN: Feb and Mar are charged; the joining month and the running month
	//       are not
	snap := snapshot(date(2024, time.January, 15), nil, rate("2024-01", 100))

	entries, err := tuition.GenerateDueEntries(snap, date(2024, time.April, 10))
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, ledger.MonthKey("2024-02"), entries[0].Month)
	assert.Equal(t, ledger.MonthKey("2024-03"), entries[1].Month)
	for _, e := range entries {
		assert.Equal(t, tuition.EntryFeeDue, e.Type)
		assert.True(t, e.Amount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "stu-1", e.StudentID)
	}
}

func TestGenerateDueEntries_PricesEachMonthThroughHistory(t *testing.T) {
	// GIVEN: Rate 100 until a raise to 150 effective April
	snap := snapshot(date(2024, time.January, 1), nil,
		rate("2024-01", 100), rate("2024-04", 150))

	entries, err := tuition.GenerateDueEntries(snap, date(2024, time.June, 1))
	require.NoError(t, err)

	require.Len(t, entries, 4) // Feb..May
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(100))) // Feb
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(100))) // Mar
	assert.True(t, entries[2].Amount.Equal(decimal.NewFromInt(150))) // Apr
	assert.True(t, entries[3].Amount.Equal(decimal.NewFromInt(150))) // May
}

func TestGenerateDueEntries_SkipsPausedMonths(t *testing.T) {
	snap := snapshot(date(2024, time.January, 1),
		[]tuition.Entry{pause("2024-03")},
		rate("2024-01", 100))

	entries, err := tuition.GenerateDueEntries(snap, date(2024, time.May, 1))
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, ledger.MonthKey("2024-02"), entries[0].Month)
	assert.Equal(t, ledger.MonthKey("2024-04"), entries[1].Month)
}

func TestGenerateDueEntries_UnpauseRestoresMonth(t *testing.T) {
	// Legacy ledgers carry an UNPAUSE row instead of having the PAUSE removed.
	snap := snapshot(date(2024, time.January, 1),
		[]tuition.Entry{
			pause("2024-03"),
			{StudentID: "stu-1", Type: tuition.EntryUnpause, Month: "2024-03"},
		},
		rate("2024-01", 100))

	entries, err := tuition.GenerateDueEntries(snap, date(2024, time.May, 1))
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestGenerateDueEntries_Idempotent(t *testing.T) {
	// GIVEN: Dues already generated once
	// WHEN: Regenerating with no new chargeable months
	// THEN: Nothing new comes back - safe to call on every page load
	snap := snapshot(date(2024, time.January, 1), nil, rate("2024-01", 100))
	asOf := date(2024, time.April, 1)

	first, err := tuition.GenerateDueEntries(snap, asOf)
	require.NoError(t, err)
	require.Len(t, first, 2)

	snap.Entries = append(snap.Entries, first...)
	second, err := tuition.GenerateDueEntries(snap, asOf)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestGenerateDueEntries_LaterAsOfExtendsLedger(t *testing.T) {
	snap := snapshot(date(2024, time.January, 1), nil, rate("2024-01", 100))

	first, err := tuition.GenerateDueEntries(snap, date(2024, time.April, 1))
	require.NoError(t, err)
	snap.Entries = append(snap.Entries, first...)

	// A month later only the newly chargeable month appears.
	second, err := tuition.GenerateDueEntries(snap, date(2024, time.May, 1))
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, ledger.MonthKey("2024-04"), second[0].Month)
}

func TestGenerateDueEntries_EmptyRateHistory_Halts(t *testing.T) {
	// No rate records: generation must fail loudly, never price at zero.
	snap := snapshot(date(2024, time.January, 1), nil)

	_, err := tuition.GenerateDueEntries(snap, date(2024, time.April, 1))
	assert.ErrorIs(t, err, ledger.ErrNoRateHistory)
}

func TestGenerateDueEntries_NewStudent_NothingChargeable(t *testing.T) {
	// Joined this month: no interior months yet, and no rate needed.
	snap := snapshot(date(2024, time.April, 5), nil)

	entries, err := tuition.GenerateDueEntries(snap, date(2024, time.April, 20))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestCalculateSummary_Totals(t *testing.T) {
	entries := []tuition.Entry{
		feeDue("2024-02", 100),
		feeDue("2024-03", 100),
		payment("2024-02", 100),
		payment("2024-03", 40),
	}

	summary := tuition.CalculateSummary(entries)

	assert.True(t, summary.TotalDue.Equal(decimal.NewFromInt(200)))
	assert.True(t, summary.TotalPaid.Equal(decimal.NewFromInt(140)))
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(60)))
}

func TestCalculateSummary_PendingMonthsIsKeyMembership(t *testing.T) {
	// GIVEN: March has a payment smaller than its fee
	// THEN: March still drops out of PendingMonths - the documented
	//       set-difference approximation. CalculateDueInfo is authoritative
	//       for amounts; this list is a display hint.
	entries := []tuition.Entry{
		feeDue("2024-02", 100),
		feeDue("2024-03", 100),
		feeDue("2024-04", 100),
		payment("2024-03", 10),
	}

	summary := tuition.CalculateSummary(entries)

	assert.Equal(t, []ledger.MonthKey{"2024-02", "2024-04"}, summary.PendingMonths)
	assert.True(t, summary.Balance.Equal(decimal.NewFromInt(290)))
}

// =============================================================================
// DUE INFO - Earliest-month-first allocation
// =============================================================================

func TestCalculateDueInfo_OldestMonthPartiallyPaid(t *testing.T) {
	// GIVEN: Jan..Mar due at 100 each, 150 paid in total
	// WHEN: Allocating earliest-first
	// THEN: Jan fully paid, Feb partial with 50 remaining, Mar fully unpaid
	snap := snapshot(date(2023, time.December, 1), []tuition.Entry{
		feeDue("2024-01", 100),
		feeDue("2024-02", 100),
		feeDue("2024-03", 100),
		payment("2024-01", 150),
	}, rate("2023-12", 100))

	info := tuition.CalculateDueInfo(snap, date(2024, time.April, 1))

	assert.True(t, info.IsPartial)
	assert.Equal(t, ledger.MonthKey("2024-02"), info.PartialMonth)
	assert.True(t, info.PartialAmount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, []ledger.MonthKey{"2024-03"}, info.FullDueMonths)
}

func TestCalculateDueInfo_NoPayments_AllMonthsFullyDue(t *testing.T) {
	snap := snapshot(date(2023, time.December, 1), []tuition.Entry{
		feeDue("2024-01", 100),
		feeDue("2024-02", 100),
	}, rate("2023-12", 100))

	info := tuition.CalculateDueInfo(snap, date(2024, time.March, 1))

	assert.False(t, info.IsPartial)
	assert.Equal(t, []ledger.MonthKey{"2024-01", "2024-02"}, info.FullDueMonths)
}

func TestCalculateDueInfo_ExactCover_NothingDue(t *testing.T) {
	snap := snapshot(date(2023, time.December, 1), []tuition.Entry{
		feeDue("2024-01", 100),
		feeDue("2024-02", 100),
		payment("2024-01", 200),
	}, rate("2023-12", 100))

	info := tuition.CalculateDueInfo(snap, date(2024, time.March, 1))

	assert.False(t, info.IsPartial)
	assert.Empty(t, info.FullDueMonths)
}

func TestCalculateDueInfo_RespectsHistoricalPricing(t *testing.T) {
	// Months carry their own priced amounts; allocation consumes each at its
	// historical fee, not today's rate.
	snap := snapshot(date(2023, time.December, 1), []tuition.Entry{
		feeDue("2024-01", 100),
		feeDue("2024-02", 150), // raised rate
		payment("2024-01", 100),
		payment("2024-02", 75),
	}, rate("2023-12", 100), rate("2024-02", 150))

	info := tuition.CalculateDueInfo(snap, date(2024, time.March, 1))

	assert.True(t, info.IsPartial)
	assert.Equal(t, ledger.MonthKey("2024-02"), info.PartialMonth)
	assert.True(t, info.PartialAmount.Equal(decimal.NewFromInt(75)))
	assert.Empty(t, info.FullDueMonths)
}

func TestCalculateDueInfo_RunningMonthNotOwed(t *testing.T) {
	// A FEE_DUE row for the running month (or later) is never owed yet,
	// whatever the ledger holds.
	snap := snapshot(date(2023, time.December, 1), []tuition.Entry{
		feeDue("2024-01", 100),
		feeDue("2024-02", 100),
		feeDue("2024-03", 100),
	}, rate("2023-12", 100))

	info := tuition.CalculateDueInfo(snap, date(2024, time.March, 15))

	assert.False(t, info.IsPartial)
	assert.Equal(t, []ledger.MonthKey{"2024-01", "2024-02"}, info.FullDueMonths)
}

func TestCalculateDueInfo_OutOfOrderEntries(t *testing.T) {
	// Storage order must not matter: allocation is strictly chronological.
	snap := snapshot(date(2023, time.December, 1), []tuition.Entry{
		feeDue("2024-03", 100),
		feeDue("2024-01", 100),
		feeDue("2024-02", 100),
		payment("2024-01", 150),
	}, rate("2023-12", 100))

	info := tuition.CalculateDueInfo(snap, date(2024, time.April, 1))

	assert.True(t, info.IsPartial)
	assert.Equal(t, ledger.MonthKey("2024-02"), info.PartialMonth)
	assert.Equal(t, []ledger.MonthKey{"2024-03"}, info.FullDueMonths)
}

// =============================================================================
// TOTAL PAYABLE
// =============================================================================

func TestTotalPayableWithHistory(t *testing.T) {
	snap := snapshot(date(2024, time.January, 1),
		[]tuition.Entry{pause("2024-03")},
		rate("2024-01", 100), rate("2024-04", 150))

	// Chargeable: Feb(100), Apr(150), May(150); Mar paused.
	total, err := tuition.TotalPayableWithHistory(snap, date(2024, time.June, 1))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(400)))
}

func TestTotalPayable_LegacyFlatRate(t *testing.T) {
	paused := map[ledger.MonthKey]bool{"2024-03": true}

	total := tuition.TotalPayable(date(2024, time.January, 1),
		decimal.NewFromInt(100), paused, date(2024, time.June, 1))

	// Feb, Apr, May at the flat rate.
	assert.True(t, total.Equal(decimal.NewFromInt(300)))
}
