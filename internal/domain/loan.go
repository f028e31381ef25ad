package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankcore/loan-engine/pkg/utils"
)

const (
	LoanStatusInProgress = "in_progress"
	LoanStatusFullyPaid  = "fully_paid"
	LoanStatusOverdue    = "overdue"
)

// Loan is an approved, funded debt obligation created from a loan
// request. CreatedAt is immutable and anchors the repayment deadline.
type Loan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	CustomerID   uuid.UUID       `json:"customer_id" db:"customer_id"`
	RequestID    uuid.UUID       `json:"request_id" db:"request_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	TermMonths   *int            `json:"term_months" db:"term_months"`
	InterestRate *float64        `json:"interest_rate" db:"interest_rate"`
	Status       string          `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	Documents []*Document `json:"documents,omitempty" db:"-"`
}

// TotalExpectedPayment is the principal compounded once by the flat
// interest rate: amount * (1 + rate/100). Without a rate it is the
// principal alone.
func (l *Loan) TotalExpectedPayment() decimal.Decimal {
	return utils.TotalExpectedPayment(l.Amount, l.InterestRate)
}

// RemainingBalance is what is still owed given the total repaid so far.
func (l *Loan) RemainingBalance(totalPaid decimal.Decimal) decimal.Decimal {
	return l.TotalExpectedPayment().Sub(totalPaid)
}

// IsFullyPaid reports whether the repaid total covers the expected payment.
func (l *Loan) IsFullyPaid(totalPaid decimal.Decimal) bool {
	return totalPaid.GreaterThanOrEqual(l.TotalExpectedPayment())
}

// HasDeadlinePassed reports whether now is strictly after
// createdAt + termMonths, in calendar months. Loans without a term
// never become overdue.
func (l *Loan) HasDeadlinePassed(now time.Time) bool {
	if l.TermMonths == nil {
		return false
	}
	return utils.IsPastDeadline(utils.RepaymentDeadline(l.CreatedAt, *l.TermMonths), now)
}

// NextStatus derives the loan status from payments and elapsed time.
// Priority: fully paid, then overdue, then in progress. Idempotent.
func (l *Loan) NextStatus(totalPaid decimal.Decimal, now time.Time) string {
	switch {
	case l.IsFullyPaid(totalPaid):
		return LoanStatusFullyPaid
	case l.HasDeadlinePassed(now):
		return LoanStatusOverdue
	default:
		return LoanStatusInProgress
	}
}
