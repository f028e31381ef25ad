package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan request negotiation states. Terminal states are approved and
// rejected; rejected is reachable from every non-terminal state.
const (
	RequestStatusPendingReview   = "pending"
	RequestStatusPendingCustomer = "pending_customer"
	RequestStatusPendingApproval = "pending_approval"
	RequestStatusApproved        = "approved"
	RequestStatusRejected        = "rejected"
)

// LoanRequest is the negotiation artifact preceding a Loan. Personnel
// set the min/max/rate/duration bounds, the customer picks final terms
// within them, personnel approve or reject against the ledger.
type LoanRequest struct {
	ID                  uuid.UUID           `json:"id" db:"id"`
	CustomerID          uuid.UUID           `json:"customer_id" db:"customer_id"`
	Status              string              `json:"status" db:"status"`
	MinAmount           decimal.NullDecimal `json:"min_amount" db:"min_amount"`
	MaxAmount           decimal.NullDecimal `json:"max_amount" db:"max_amount"`
	InterestRate        *float64            `json:"interest_rate" db:"interest_rate"`
	MaxDurationMonths   int                 `json:"max_duration_months" db:"max_duration_months"`
	FinalDurationMonths *int                `json:"final_duration_months" db:"final_duration_months"`
	Purpose             string              `json:"purpose" db:"purpose"`
	Details             string              `json:"details" db:"details"`
	Amount              decimal.Decimal     `json:"amount" db:"amount"`
	Secured             bool                `json:"secured" db:"secured"`
	CreatedAt           time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at" db:"updated_at"`

	Documents []*Document `json:"documents,omitempty" db:"-"`
}

// IsTerminal reports whether the request has reached a final state.
func (r *LoanRequest) IsTerminal() bool {
	return r.Status == RequestStatusApproved || r.Status == RequestStatusRejected
}

// DTOs for requests and responses

type SubmitRequestInput struct {
	Purpose           string           `json:"purpose" validate:"required,max=150"`
	Details           string           `json:"details" validate:"required"`
	Amount            decimal.Decimal  `json:"amount" validate:"required"`
	MaxDurationMonths int              `json:"max_duration_months" validate:"required,gt=0"`
	Secured           *bool            `json:"secured" validate:"required"`
	Documents         []*DocumentInput `json:"documents" validate:"omitempty,dive"`
}

type SetConstraintsInput struct {
	MinAmount         decimal.Decimal `json:"min_amount" validate:"required"`
	MaxAmount         decimal.Decimal `json:"max_amount" validate:"required"`
	InterestRate      *float64        `json:"interest_rate" validate:"omitempty,gte=0"`
	MaxDurationMonths int             `json:"max_duration_months" validate:"required,gt=0"`
}

type SelectTermsInput struct {
	Amount              decimal.Decimal `json:"amount" validate:"required"`
	FinalDurationMonths int             `json:"final_duration_months" validate:"required,gt=0"`
}
