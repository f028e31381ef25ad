package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerID is the primary key of the only bank_ledger row. The schema
// enforces the singleton; code always addresses the ledger by this ID.
const LedgerID = 1

// BankLedger is the bank's single pool of lendable capital.
type BankLedger struct {
	ID         int64           `json:"id" db:"id"`
	TotalFunds decimal.Decimal `json:"total_funds" db:"total_funds"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// Fund records a provider's contribution to the ledger.
type Fund struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ProviderID uuid.UUID       `json:"provider_id" db:"provider_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type AddFundRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type AvailableFundsResponse struct {
	AvailableFunds decimal.Decimal `json:"available_funds"`
}
