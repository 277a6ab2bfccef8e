/*
engine.go - Tuition due generation and read-time settlement

PURPOSE:
  The three calculations the fee ledger is built on:

  1. GenerateDueEntries: which months still need a FEE_DUE row, and at what
     historical price. Idempotent - safe to run on every page load.
  2. CalculateSummary: totals derived by replaying the ledger.
  3. CalculateDueInfo: earliest-month-first payment allocation - "which months
     does the student still owe, and is the oldest one half-paid?"

ALLOCATION SEMANTICS:
  Payments are recorded without any month-level allocation; allocation happens
  entirely at read time. CalculateDueInfo walks charged months strictly
  chronologically, consuming the payment pool against each month's fee. The
  FIRST month the pool cannot fully cover decides the result. Processing out
  of order gives wrong answers.

KNOWN APPROXIMATION:
  Summary.PendingMonths is a set difference on month keys - a month whose
  payment is smaller than its fee drops out even though a balance remains.
  Kept deliberately: the UI treats it as a display hint, and CalculateDueInfo
  is the authoritative source for amounts. Do not "fix" it here.

SEE ALSO:
  - rates.go: Historical pricing of each month
  - types.go: Snapshot and Entry definitions
*/
package tuition

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
)

// =============================================================================
// DUE GENERATION - Emit FEE_DUE rows for uncharged chargeable months
// =============================================================================

// GenerateDueEntries computes the FEE_DUE rows missing from the snapshot as of
// the given date, priced per month through the rate history. The caller
// persists the returned rows; the engine stores nothing.
//
// A month is chargeable when it lies strictly after the joining month and
// strictly before asOf's month, is not paused, and has no FEE_DUE row yet.
// Regeneration with no new chargeable months returns an empty slice.
//
// Fails with NoRateHistoryError when a month needs pricing but the student
// has no rate records; generation halts until history is backfilled.
func GenerateDueEntries(snap Snapshot, asOf time.Time) ([]Entry, error) {
	paused := snap.PausedMonths()
	charged := snap.FeeDueMonths()

	var generated []Entry
	for _, month := range ledger.MonthsBetween(snap.JoiningDate, asOf) {
		if paused[month] || charged[month] {
			continue
		}

		rate, err := ResolveRate(snap.StudentID, month, snap.Rates)
		if err != nil {
			return nil, err
		}

		generated = append(generated, Entry{
			StudentID:   snap.StudentID,
			Type:        EntryFeeDue,
			Month:       month,
			Amount:      rate,
			Description: "Monthly fee for " + month.Label(),
		})
	}
	return generated, nil
}

// =============================================================================
// SUMMARY - Ledger totals
// =============================================================================

// Summary holds the replayed totals for one student's ledger.
type Summary struct {
	TotalDue  decimal.Decimal
	TotalPaid decimal.Decimal
	Balance   decimal.Decimal

	// PendingMonths is FEE_DUE months minus PAYMENT months by key membership.
	// NOT amount-aware: a partially paid month is absent here even though a
	// balance remains. Display hint only; CalculateDueInfo is authoritative.
	PendingMonths []ledger.MonthKey
}

// CalculateSummary replays the ledger into due/paid/balance totals.
func CalculateSummary(entries []Entry) Summary {
	totalDue := decimal.Zero
	totalPaid := decimal.Zero
	dueMonths := make(map[ledger.MonthKey]bool)
	paidMonths := make(map[ledger.MonthKey]bool)

	for _, e := range entries {
		switch e.Type {
		case EntryFeeDue:
			totalDue = totalDue.Add(e.Amount)
			dueMonths[e.Month] = true
		case EntryPayment:
			totalPaid = totalPaid.Add(e.Amount)
			paidMonths[e.Month] = true
		}
	}

	var pending []ledger.MonthKey
	for month := range dueMonths {
		if !paidMonths[month] {
			pending = append(pending, month)
		}
	}
	ledger.SortMonthKeys(pending)

	return Summary{
		TotalDue:      totalDue,
		TotalPaid:     totalPaid,
		Balance:       totalDue.Sub(totalPaid),
		PendingMonths: pending,
	}
}

// =============================================================================
// DUE INFO - Earliest-month-first payment allocation
// =============================================================================

// DueInfo reports the oldest outstanding month and everything after it.
type DueInfo struct {
	// IsPartial is true when the oldest not-fully-paid month has some payment
	// against it but not enough to cover its fee.
	IsPartial     bool
	PartialMonth  ledger.MonthKey
	PartialAmount decimal.Decimal // remaining balance on the partial month

	// FullDueMonths lists the months with no payment cover at all, earliest
	// first. When IsPartial is true the partial month is NOT included here.
	FullDueMonths []ledger.MonthKey
}

// CalculateDueInfo allocates the payment pool across charged months strictly
// chronologically and reports where the money ran out.
//
// Each FEE_DUE row is consumed in month order: a month is fully paid while
// the remaining pool covers its fee, partially paid when the pool is positive
// but short, fully unpaid once the pool is exhausted. The first month that is
// not fully paid determines the result shape.
func CalculateDueInfo(snap Snapshot, asOf time.Time) DueInfo {
	dues := snap.feeDueEntriesByMonth()

	remaining := decimal.Zero
	for _, e := range snap.Entries {
		if e.Type == EntryPayment {
			remaining = remaining.Add(e.Amount)
		}
	}

	info := DueInfo{}
	running := ledger.MonthKeyOf(asOf)
	for _, due := range dues {
		// Months from asOf's month onward are not owed yet, whatever the
		// ledger holds.
		if due.Month.AfterOrEqual(running) {
			break
		}
		if remaining.GreaterThanOrEqual(due.Amount) {
			remaining = remaining.Sub(due.Amount)
			continue
		}

		if remaining.IsPositive() {
			// Oldest unsettled month is half-paid.
			info.IsPartial = true
			info.PartialMonth = due.Month
			info.PartialAmount = due.Amount.Sub(remaining)
			remaining = decimal.Zero
			continue
		}

		info.FullDueMonths = append(info.FullDueMonths, due.Month)
	}
	return info
}

// =============================================================================
// TOTAL PAYABLE - Expected lifetime charge
// =============================================================================

// TotalPayableWithHistory sums the historically priced fee over every
// chargeable month (paused months excluded) as of the given date. This is
// the canonical path.
func TotalPayableWithHistory(snap Snapshot, asOf time.Time) (decimal.Decimal, error) {
	paused := snap.PausedMonths()

	total := decimal.Zero
	for _, month := range ledger.MonthsBetween(snap.JoiningDate, asOf) {
		if paused[month] {
			continue
		}
		rate, err := ResolveRate(snap.StudentID, month, snap.Rates)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(rate)
	}
	return total, nil
}

// TotalPayable multiplies the chargeable month count by a single flat fee.
//
// Deprecated: pre-dates fee-rate history and misprices students whose rate
// ever changed. Kept for ledgers created before rate records were backfilled;
// use TotalPayableWithHistory.
func TotalPayable(joiningDate time.Time, monthlyFee decimal.Decimal, paused map[ledger.MonthKey]bool, asOf time.Time) decimal.Decimal {
	chargeable := 0
	for _, month := range ledger.MonthsBetween(joiningDate, asOf) {
		if !paused[month] {
			chargeable++
		}
	}
	return monthlyFee.Mul(decimal.NewFromInt(int64(chargeable)))
}

// =============================================================================
// HELPERS
// =============================================================================

func sortEntriesByMonth(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Month < entries[j].Month })
}
