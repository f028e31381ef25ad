package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankcore/loan-engine/internal/domain"
	"github.com/bankcore/loan-engine/internal/repository"
	apperrors "github.com/bankcore/loan-engine/pkg/errors"
)

// RecordPayment applies a repayment to a loan. In a single transaction
// it re-reads the loan's payment total under the loan row lock (two
// concurrent payments cannot both pass the remaining-balance check),
// creates the payment, recomputes the loan status and credits the
// repaid amount back to the ledger.
func (s *LoanService) RecordPayment(ctx context.Context, loanID uuid.UUID, actor domain.Actor, amount decimal.Decimal) (*domain.LoanPayment, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WrapInvalidAmount(amount)
	}

	var payment *domain.LoanPayment
	err := s.db.WithinTx(ctx, func(st repository.Store) error {
		// Same lock order as Approve: ledger first, then the loan row.
		ledger, err := st.GetLedgerForUpdate(ctx)
		if err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		loan, err := st.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			return wrapGetLoanErr(err, loanID)
		}

		if actor.IsCustomer() && loan.CustomerID != actor.ID {
			return apperrors.WrapUnauthorized("You are not authorized to make payments for this loan")
		}

		if loan.Status == domain.LoanStatusFullyPaid {
			return apperrors.WrapLoanAlreadySettled(loan.ID.String())
		}

		totalPaid, err := st.GetTotalPaid(ctx, loanID)
		if err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		remaining := loan.RemainingBalance(totalPaid)
		if amount.GreaterThan(remaining) {
			return apperrors.WrapAmountExceedsBalance(amount, remaining)
		}

		now := time.Now()
		payment = &domain.LoanPayment{
			ID:          uuid.New(),
			LoanID:      loan.ID,
			AmountPaid:  amount,
			PaymentDate: now,
		}
		if err := st.CreatePayment(ctx, payment); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		next := loan.NextStatus(totalPaid.Add(amount), now)
		if next != loan.Status {
			if err := st.UpdateLoanStatus(ctx, loan.ID, next); err != nil {
				return apperrors.WrapDatabaseError(err)
			}
		}

		// Repayments return capital to the lending pool.
		if err := st.SetLedgerFunds(ctx, ledger.TotalFunds.Add(amount)); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFundsCache(ctx)

	return payment, nil
}

// GetLoan retrieves a loan with its documents, refreshing the status so
// elapsed time is reflected even without new payments. Customers only
// see their own loans.
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID, actor domain.Actor) (*domain.Loan, error) {
	loan, err := s.refreshLoanStatus(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if actor.IsCustomer() && loan.CustomerID != actor.ID {
		return nil, apperrors.WrapNotFound("Loan", loanID.String())
	}

	docs, err := s.db.ListDocumentsByLoan(ctx, loanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	loan.Documents = docs

	return loan, nil
}

// ListLoans returns loans visible to the actor, optionally filtered by
// status. Personnel see everything, customers their own.
func (s *LoanService) ListLoans(ctx context.Context, actor domain.Actor, status string) ([]*domain.Loan, error) {
	var (
		loans []*domain.Loan
		err   error
	)
	if actor.IsCustomer() {
		loans, err = s.db.ListLoansByCustomer(ctx, actor.ID, status)
	} else {
		loans, err = s.db.ListLoans(ctx, status)
	}
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListPayments returns a loan's payment history, applying the same
// visibility rule as GetLoan.
func (s *LoanService) ListPayments(ctx context.Context, loanID uuid.UUID, actor domain.Actor) ([]*domain.LoanPayment, error) {
	loan, err := s.db.GetLoan(ctx, loanID)
	if err != nil {
		return nil, wrapGetLoanErr(err, loanID)
	}

	if actor.IsCustomer() && loan.CustomerID != actor.ID {
		return nil, apperrors.WrapNotFound("Loan", loanID.String())
	}

	payments, err := s.db.ListPaymentsByLoan(ctx, loanID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return payments, nil
}

// SweepOverdueLoans recomputes the status of in-progress loans whose
// repayment deadline has passed, returning how many went overdue. Used
// by the scheduler; the same recomputation also happens lazily on read.
func (s *LoanService) SweepOverdueLoans(ctx context.Context) (int, error) {
	candidates, err := s.db.ListDeadlineCandidates(ctx, time.Now())
	if err != nil {
		return 0, apperrors.WrapDatabaseError(err)
	}

	marked := 0
	for _, candidate := range candidates {
		loan, err := s.refreshLoanStatus(ctx, candidate.ID)
		if err != nil {
			log.Printf("Failed to refresh loan %s during overdue sweep: %v", candidate.ID, err)
			continue
		}
		if loan.Status == domain.LoanStatusOverdue {
			marked++
		}
	}

	return marked, nil
}

// refreshLoanStatus recomputes and persists a loan's status from its
// payment total and the current time, under the loan row lock.
func (s *LoanService) refreshLoanStatus(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	var refreshed *domain.Loan
	err := s.db.WithinTx(ctx, func(st repository.Store) error {
		loan, err := st.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			return wrapGetLoanErr(err, loanID)
		}

		totalPaid, err := st.GetTotalPaid(ctx, loanID)
		if err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		next := loan.NextStatus(totalPaid, time.Now())
		if next != loan.Status {
			if err := st.UpdateLoanStatus(ctx, loan.ID, next); err != nil {
				return apperrors.WrapDatabaseError(err)
			}
			loan.Status = next
		}

		refreshed = loan
		return nil
	})
	if err != nil {
		return nil, err
	}

	return refreshed, nil
}
