/*
rates.go - Fee-rate history resolution

PURPOSE:
  Answers "what was this student's monthly fee in month X?" against a set of
  rate-change records. Historical months keep their historical price even
  after later rate changes.

ALGORITHM:
  Among records with EffectiveFrom <= target, pick the one with the LARGEST
  EffectiveFrom (the most recent applicable change). If no record qualifies -
  the target predates all history, which correct backfill should prevent -
  fall back to the single earliest record rather than failing. Only an empty
  record set is an error.

COST:
  O(n) per call over a handful of records, called once per chargeable month.
  O(months x records) overall; tens of months, no need for anything cleverer.

SEE ALSO:
  - engine.go: Prices each chargeable month through ResolveRate
  - ledger/errors.go: NoRateHistoryError
*/
package tuition

import (
	"github.com/shopspring/decimal"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
)

// ResolveRate resolves the fee rate effective for target given a student's
// rate-change records. The records may arrive in any order.
//
// Returns NoRateHistoryError (wrapping ledger.ErrNoRateHistory) only when the
// record set is empty - that is a caller-data-integrity problem and is never
// silently defaulted to zero.
func ResolveRate(studentID string, target ledger.MonthKey, records []FeeRateRecord) (decimal.Decimal, error) {
	if len(records) == 0 {
		return decimal.Zero, &ledger.NoRateHistoryError{StudentID: studentID, Month: target}
	}

	var best *FeeRateRecord
	var earliest *FeeRateRecord

	for i := range records {
		r := &records[i]
		if earliest == nil || r.EffectiveFrom.Before(earliest.EffectiveFrom) {
			earliest = r
		}
		if r.EffectiveFrom.BeforeOrEqual(target) {
			if best == nil || r.EffectiveFrom.After(best.EffectiveFrom) {
				best = r
			}
		}
	}

	// Target predates all history: charge the earliest known rate rather
	// than failing mid-generation.
	if best == nil {
		return earliest.Rate, nil
	}
	return best.Rate, nil
}
