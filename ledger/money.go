package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// MONEY HELPERS - All amounts are decimal, never float
// =============================================================================

// MustDecimal parses a decimal literal, returning zero on malformed input.
// For constants and test fixtures; runtime parsing goes through decimal directly.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ClampNonNegative floors a balance at zero. Overpayments are absorbed, not
// reported as credit.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
