/*
Package ledger provides the core calendar and money primitives shared by the
tuition and lending engines.

PURPOSE:
  Both engines bucket charges by calendar month and derive balances by replaying
  ledger rows. This package owns the month-key arithmetic they share: bucketing
  a date into a YYYY-MM key, enumerating chargeable months between two dates,
  and counting fully elapsed months for interest accrual.

KEY CONCEPTS IN THIS FILE (month.go):
  - MonthKey: canonical "YYYY-MM" bucket; lexicographic order IS chronological
    order because the month is zero-padded
  - MonthsBetween: the chargeability window - strictly after the start month,
    strictly before the end month
  - ElapsedMonths: full calendar months between two dates, for interest

TWO DIFFERENT QUESTIONS:
  "Which months should be charged?" -> MonthsBetween. The joining month and the
  current month are never auto-charged, hence exclusive on both ends.

  "How many months of interest have accrued?" -> ElapsedMonths. A month only
  counts once the day-of-month has come around again.

  Callers must not mix these up; a chargeability check built on ElapsedMonths
  would bill the current month early.

SEE ALSO:
  - errors.go: Shared sentinel errors
  - tuition/engine.go: Uses MonthsBetween for due generation
  - lending/interest.go: Uses ElapsedMonths for accrual
*/
package ledger

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// MONTH KEY - Canonical "YYYY-MM" bucket for a calendar month
// =============================================================================

// MonthKey identifies a calendar month as "YYYY-MM".
// Zero-padded, so string comparison equals chronological comparison.
type MonthKey string

// MonthKeyOf buckets a date into its calendar month.
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month())))
}

// NewMonthKey builds a key directly from year and month.
func NewMonthKey(year int, month time.Month) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, int(month)))
}

// ParseMonthKey parses "YYYY-MM" into the first instant of that month (UTC).
func ParseMonthKey(key MonthKey) (time.Time, error) {
	t, err := time.Parse("2006-01", string(key))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t, nil
}

// Comparison
func (m MonthKey) Before(other MonthKey) bool        { return m < other }
func (m MonthKey) After(other MonthKey) bool         { return m > other }
func (m MonthKey) BeforeOrEqual(other MonthKey) bool { return m <= other }
func (m MonthKey) AfterOrEqual(other MonthKey) bool  { return m >= other }

// Label renders the key for humans, e.g. "Feb 2024".
// Falls back to the raw key if it does not parse.
func (m MonthKey) Label() string {
	t, err := ParseMonthKey(m)
	if err != nil {
		return string(m)
	}
	return t.Format("Jan 2006")
}

// SortMonthKeys sorts keys in place, earliest first.
func SortMonthKeys(keys []MonthKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
}

// =============================================================================
// MONTH ENUMERATION - The chargeability window
// =============================================================================

// MonthsBetween returns the months strictly after start's month and strictly
// before end's month, earliest first.
//
// EXCLUSIVE ON BOTH ENDS. A student joining mid-January with asOf in April is
// chargeable for February and March only: the joining month is covered by the
// admission, and the running month is not yet complete.
//
// Same-month or inverted ranges yield an empty slice, never an error.
func MonthsBetween(start, end time.Time) []MonthKey {
	var months []MonthKey

	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	boundary := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	for current.Before(boundary) {
		months = append(months, MonthKeyOf(current))
		current = current.AddDate(0, 1, 0)
	}
	return months
}

// =============================================================================
// ELAPSED MONTHS - Interest accrual counter
// =============================================================================

// ElapsedMonths counts fully elapsed calendar months from start to end.
//
// The calendar-month difference is decremented by one when end's day-of-month
// has not yet reached start's day-of-month (the current month is incomplete).
// Floors at zero; end before start is not an error.
//
// For interest accrual only. Chargeable-month enumeration uses MonthsBetween.
func ElapsedMonths(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
