package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bankcore/loan-engine/internal/domain"
)

func (s *store) EnsureLedger(ctx context.Context) error {
	query := `
		INSERT INTO bank_ledger (id, total_funds, updated_at)
		VALUES ($1, 0, $2)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := s.ext.ExecContext(ctx, query, domain.LedgerID, time.Now())
	return err
}

func (s *store) GetLedger(ctx context.Context) (*domain.BankLedger, error) {
	query := `
		SELECT id, total_funds, updated_at
		FROM bank_ledger
		WHERE id = $1
	`

	var ledger domain.BankLedger
	err := sqlx.GetContext(ctx, s.ext, &ledger, query, domain.LedgerID)
	if err != nil {
		return nil, err
	}

	return &ledger, nil
}

func (s *store) GetLedgerForUpdate(ctx context.Context) (*domain.BankLedger, error) {
	query := `
		SELECT id, total_funds, updated_at
		FROM bank_ledger
		WHERE id = $1
		FOR UPDATE
	`

	var ledger domain.BankLedger
	err := sqlx.GetContext(ctx, s.ext, &ledger, query, domain.LedgerID)
	if err != nil {
		return nil, err
	}

	return &ledger, nil
}

func (s *store) SetLedgerFunds(ctx context.Context, totalFunds decimal.Decimal) error {
	query := `
		UPDATE bank_ledger
		SET total_funds = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := s.ext.ExecContext(ctx, query, domain.LedgerID, totalFunds, time.Now())
	return err
}

func (s *store) CreateFund(ctx context.Context, fund *domain.Fund) error {
	query := `
		INSERT INTO fund (id, provider_id, amount, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.ext.ExecContext(ctx, query,
		fund.ID,
		fund.ProviderID,
		fund.Amount,
		fund.CreatedAt,
	)

	return err
}

func (s *store) ListFundsByProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.Fund, error) {
	query := `
		SELECT id, provider_id, amount, created_at
		FROM fund
		WHERE provider_id = $1
		ORDER BY created_at DESC
	`

	var funds []*domain.Fund
	err := sqlx.SelectContext(ctx, s.ext, &funds, query, providerID)
	if err != nil {
		return nil, err
	}

	return funds, nil
}
