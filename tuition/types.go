/*
Package tuition implements the fee-ledger engine: month-by-month due
generation, payment bookkeeping, and read-time settlement summaries.

PURPOSE:
  A student's tuition account is an append-only ledger of typed entries.
  FEE_DUE rows are generated once per chargeable month, priced by the fee-rate
  history in force for that month. Payments are recorded as-is; who owes what
  is always derived at read time by replaying the ledger.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entry: one immutable ledger row (FEE_DUE, PAYMENT, PAUSE, ...)
  - FeeRateRecord: a rate change effective from a given month
  - Snapshot: everything the engine needs for one student, fetched by the
    caller before any computation

DESIGN PRINCIPLES:
  1. Pure engine: no I/O anywhere in this package. Callers fetch a Snapshot,
     call the engine, and persist whatever rows it returns.
  2. Explicit clock: "now" is always an asOf parameter supplied by the caller.
  3. Precision: decimal.Decimal for all money.

SIGN CONVENTION:
  PAYMENT amounts are stored POSITIVE in this ledger. The lending ledger
  stores them negative. The two conventions are intentionally different and
  must not be unified; call sites depend on each.

SEE ALSO:
  - rates.go: Fee-rate history resolution
  - engine.go: Due generation, summaries, payment allocation
*/
package tuition

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
)

// =============================================================================
// ENTRY - One immutable tuition ledger row
// =============================================================================

type EntryType string

const (
	EntryFeeDue     EntryType = "FEE_DUE"
	EntryPayment    EntryType = "PAYMENT"
	EntryPause      EntryType = "PAUSE"
	EntryUnpause    EntryType = "UNPAUSE"
	EntryAdjustment EntryType = "ADJUSTMENT"
)

// Entry is an append-only tuition ledger row. Entries are never mutated after
// creation; a payment may be deleted outright and a pause marker removed, but
// there is no update path.
//
// INVARIANT: at most one FEE_DUE entry per (StudentID, Month). The engine
// filters already-charged months before emitting new rows; the store's unique
// index is a backstop.
type Entry struct {
	ID          string
	StudentID   string
	Type        EntryType
	Month       ledger.MonthKey
	Amount      decimal.Decimal // non-negative; PAYMENT stored positive here
	Description string
	CreatedAt   time.Time
	Metadata    map[string]string
}

// =============================================================================
// FEE RATE RECORD - A rate change effective from a month
// =============================================================================

// FeeRateRecord says "from this month onward the monthly fee is Rate".
// Records are immutable once created, except that a record for the current
// month may be superseded when the rate is changed twice within one month
// (an upsert at the store layer, not an engine concern).
type FeeRateRecord struct {
	ID            string
	StudentID     string
	EffectiveFrom ledger.MonthKey
	Rate          decimal.Decimal
	CreatedAt     time.Time
}

// =============================================================================
// SNAPSHOT - Everything the engine needs for one student
// =============================================================================

// Snapshot is the engine's entire view of a student: identity, joining date,
// the full entry ledger and the full rate history. Callers assemble it from
// storage; the engine never fetches anything itself.
type Snapshot struct {
	StudentID   string
	JoiningDate time.Time
	Entries     []Entry
	Rates       []FeeRateRecord
}

// PausedMonths returns the set of months excluded from due generation.
// A month is paused while a PAUSE marker is present; unpausing removes the
// marker. Legacy data may instead carry an UNPAUSE row, which cancels the
// pause for that month.
func (s Snapshot) PausedMonths() map[ledger.MonthKey]bool {
	paused := make(map[ledger.MonthKey]bool)
	for _, e := range s.Entries {
		switch e.Type {
		case EntryPause:
			paused[e.Month] = true
		case EntryUnpause:
			delete(paused, e.Month)
		}
	}
	return paused
}

// FeeDueMonths returns the set of months that already carry a FEE_DUE row.
func (s Snapshot) FeeDueMonths() map[ledger.MonthKey]bool {
	charged := make(map[ledger.MonthKey]bool)
	for _, e := range s.Entries {
		if e.Type == EntryFeeDue {
			charged[e.Month] = true
		}
	}
	return charged
}

// feeDueEntriesByMonth returns FEE_DUE entries sorted earliest month first.
func (s Snapshot) feeDueEntriesByMonth() []Entry {
	var dues []Entry
	for _, e := range s.Entries {
		if e.Type == EntryFeeDue {
			dues = append(dues, e)
		}
	}
	sortEntriesByMonth(dues)
	return dues
}
