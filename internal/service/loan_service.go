package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/bankcore/loan-engine/internal/config"
	"github.com/bankcore/loan-engine/internal/domain"
	"github.com/bankcore/loan-engine/internal/repository"
	apperrors "github.com/bankcore/loan-engine/pkg/errors"
)

// fundsCacheKey holds the cached available-funds snapshot. The cache is
// advisory: every guard that gates a debit re-reads the ledger row
// inside its own transaction.
const fundsCacheKey = "ledger:available_funds"

// LoanService implements the loan-request negotiation state machine and
// the bank-capital ledger operations. Every mutation that touches the
// ledger runs as one database transaction holding the ledger row lock.
type LoanService struct {
	db    repository.DB
	redis *redis.Client
	cfg   *config.Config
}

func NewLoanService(db repository.DB, redisClient *redis.Client, cfg *config.Config) *LoanService {
	return &LoanService{
		db:    db,
		redis: redisClient,
		cfg:   cfg,
	}
}

// EnsureLedger creates the singleton ledger row when missing. Called at
// startup so every later operation can assume the row exists.
func (s *LoanService) EnsureLedger(ctx context.Context) error {
	if err := s.db.EnsureLedger(ctx); err != nil {
		return apperrors.WrapDatabaseError(err)
	}
	return nil
}

// AvailableFunds returns a snapshot of the bank's lendable capital.
// Callers must not use it to gate a debit; debits re-read under lock.
func (s *LoanService) AvailableFunds(ctx context.Context) (decimal.Decimal, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, fundsCacheKey).Result(); err == nil {
			if funds, err := decimal.NewFromString(cached); err == nil {
				return funds, nil
			}
		}
	}

	ledger, err := s.db.GetLedger(ctx)
	if err != nil {
		return decimal.Zero, apperrors.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, fundsCacheKey, ledger.TotalFunds.String(), s.cfg.Cache.FundsTTL).Err(); err != nil {
			log.Printf("Failed to cache available funds: %v", err)
		}
	}

	return ledger.TotalFunds, nil
}

// AddFund credits a provider contribution to the ledger. The fund row
// and the ledger credit commit together.
func (s *LoanService) AddFund(ctx context.Context, actor domain.Actor, amount decimal.Decimal) (*domain.Fund, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WrapInvalidAmount(amount)
	}

	fund := &domain.Fund{
		ID:         uuid.New(),
		ProviderID: actor.ID,
		Amount:     amount,
		CreatedAt:  time.Now(),
	}

	err := s.db.WithinTx(ctx, func(st repository.Store) error {
		ledger, err := st.GetLedgerForUpdate(ctx)
		if err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		if err := st.SetLedgerFunds(ctx, ledger.TotalFunds.Add(amount)); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		if err := st.CreateFund(ctx, fund); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFundsCache(ctx)

	return fund, nil
}

// ListFunds returns the contributions made by the acting provider.
func (s *LoanService) ListFunds(ctx context.Context, actor domain.Actor) ([]*domain.Fund, error) {
	funds, err := s.db.ListFundsByProvider(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return funds, nil
}

func (s *LoanService) invalidateFundsCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, fundsCacheKey).Err(); err != nil {
		log.Printf("Failed to invalidate funds cache: %v", err)
	}
}

func wrapGetRequestErr(err error, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.WrapNotFound("Loan request", id.String())
	}
	return apperrors.WrapDatabaseError(err)
}

func wrapGetLoanErr(err error, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.WrapNotFound("Loan", id.String())
	}
	return apperrors.WrapDatabaseError(err)
}
