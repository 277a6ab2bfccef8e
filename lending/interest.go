/*
interest.go - Closed-form simple-interest accrual

PURPOSE:
  Interest is never persisted incrementally. It is a pure function of the
  loan's terms and a point in time:

    zero_interest:  0
    simple_monthly: principal x (rate/100)    x elapsedMonths
    simple_yearly:  principal x (rate/100/12) x elapsedMonths

  The yearly rate is prorated monthly - not compounded, not day-counted.

SETTLEMENT FREEZE:
  For a settled loan the accrual window ends at SettledAt regardless of how
  much real time has passed since. Settling a loan freezes its interest
  permanently.

SEE ALSO:
  - ledger/month.go: ElapsedMonths (full-month counting)
  - summary.go: Combines accrual with the payment ledger
*/
package lending

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/piyush-ds-bit/teach-ease-engine/ledger"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Interest computes the interest accrued on a loan as of the given time.
// For settled loans the window is frozen at SettledAt; asOf is ignored.
func Interest(loan Loan, asOf time.Time) decimal.Decimal {
	if loan.InterestType == ZeroInterest {
		return decimal.Zero
	}

	end := asOf
	if loan.IsSettled() && loan.SettledAt != nil {
		end = *loan.SettledAt
	}

	months := decimal.NewFromInt(int64(ledger.ElapsedMonths(loan.StartDate, end)))

	switch loan.InterestType {
	case SimpleMonthly:
		return loan.Principal.Mul(loan.InterestRate.Div(hundred)).Mul(months)
	case SimpleYearly:
		return loan.Principal.Mul(loan.InterestRate.Div(hundred).Div(twelve)).Mul(months)
	default:
		return decimal.Zero
	}
}
