package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// TotalExpectedPayment calculates the interest-inclusive repayment total
// Formula: principal * (1 + rate/100), flat rate, no amortization
func TotalExpectedPayment(principal decimal.Decimal, ratePercent *float64) decimal.Decimal {
	if ratePercent == nil {
		return principal
	}
	rate := decimal.NewFromFloat(*ratePercent)
	multiplier := decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100)))
	return principal.Mul(multiplier).Round(2)
}

// RepaymentDeadline calculates the date a loan must be settled by,
// using calendar-month arithmetic rather than fixed 30-day periods
func RepaymentDeadline(createdAt time.Time, termMonths int) time.Time {
	return createdAt.AddDate(0, termMonths, 0)
}

// IsPastDeadline checks whether the given date is strictly after the
// deadline, comparing dates rather than instants
func IsPastDeadline(deadline, now time.Time) bool {
	return TruncateToDate(now).After(TruncateToDate(deadline))
}

// TruncateToDate drops the time-of-day component
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SumPayments adds up a list of payment amounts
func SumPayments(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
