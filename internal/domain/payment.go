package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanPayment is a single repayment event. Payments are immutable:
// created once, never updated or deleted.
type LoanPayment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      uuid.UUID       `json:"loan_id" db:"loan_id"`
	AmountPaid  decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
}

type RecordPaymentInput struct {
	AmountPaid decimal.Decimal `json:"amount_paid" validate:"required"`
}
