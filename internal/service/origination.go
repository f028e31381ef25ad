package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankcore/loan-engine/internal/domain"
	"github.com/bankcore/loan-engine/internal/repository"
	apperrors "github.com/bankcore/loan-engine/pkg/errors"
)

// SubmitRequest creates a new loan request for the acting customer with
// its document metadata, in status pending review.
func (s *LoanService) SubmitRequest(ctx context.Context, actor domain.Actor, input *domain.SubmitRequestInput) (*domain.LoanRequest, error) {
	if !input.Amount.IsPositive() {
		return nil, apperrors.WrapInvalidAmount(input.Amount)
	}
	if input.MaxDurationMonths <= 0 {
		return nil, apperrors.WrapInvalidRange("Maximum duration must be greater than zero")
	}

	now := time.Now()
	request := &domain.LoanRequest{
		ID:                uuid.New(),
		CustomerID:        actor.ID,
		Status:            domain.RequestStatusPendingReview,
		MaxDurationMonths: input.MaxDurationMonths,
		Purpose:           input.Purpose,
		Details:           input.Details,
		Amount:            input.Amount,
		Secured:           input.Secured != nil && *input.Secured,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.db.WithinTx(ctx, func(st repository.Store) error {
		if err := st.CreateRequest(ctx, request); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		for _, docInput := range input.Documents {
			requestID := request.ID
			doc := &domain.Document{
				ID:          uuid.New(),
				Title:       docInput.Title,
				Details:     docInput.Details,
				StoragePath: docInput.StoragePath,
				RequestID:   &requestID,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := st.CreateDocument(ctx, doc); err != nil {
				return apperrors.WrapDatabaseError(err)
			}
			request.Documents = append(request.Documents, doc)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// SetConstraints applies personnel bounds to a pending request and
// moves it to pending customer input.
func (s *LoanService) SetConstraints(ctx context.Context, requestID uuid.UUID, input *domain.SetConstraintsInput) (*domain.LoanRequest, error) {
	if !input.MinAmount.IsPositive() || !input.MaxAmount.IsPositive() {
		return nil, apperrors.WrapInvalidAmount(decimal.Min(input.MinAmount, input.MaxAmount))
	}
	if input.MinAmount.GreaterThan(input.MaxAmount) {
		return nil, apperrors.WrapInvalidRange("Minimum amount cannot exceed maximum amount")
	}
	if input.MaxDurationMonths <= 0 {
		return nil, apperrors.WrapInvalidRange("Maximum duration must be greater than zero")
	}

	var request *domain.LoanRequest
	err := s.db.WithinTx(ctx, func(st repository.Store) error {
		// Lock the request row so concurrent personnel actions cannot
		// double-apply constraints.
		req, err := st.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return wrapGetRequestErr(err, requestID)
		}

		if req.Status != domain.RequestStatusPendingReview {
			return apperrors.WrapInvalidState("Loan request", req.ID.String(), req.Status)
		}

		ledger, err := st.GetLedger(ctx)
		if err != nil {
			return apperrors.WrapDatabaseError(err)
		}
		if input.MaxAmount.GreaterThan(ledger.TotalFunds) {
			return apperrors.WrapInsufficientFunds(input.MaxAmount, ledger.TotalFunds)
		}

		req.MinAmount = decimal.NewNullDecimal(input.MinAmount)
		req.MaxAmount = decimal.NewNullDecimal(input.MaxAmount)
		req.InterestRate = input.InterestRate
		req.MaxDurationMonths = input.MaxDurationMonths
		req.Status = domain.RequestStatusPendingCustomer

		if err := st.UpdateRequest(ctx, req); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// SelectTerms records the customer's final amount and duration within
// the personnel constraints and moves the request to pending approval.
func (s *LoanService) SelectTerms(ctx context.Context, requestID uuid.UUID, actor domain.Actor, input *domain.SelectTermsInput) (*domain.LoanRequest, error) {
	if !input.Amount.IsPositive() {
		return nil, apperrors.WrapInvalidAmount(input.Amount)
	}
	if input.FinalDurationMonths <= 0 {
		return nil, apperrors.WrapInvalidRange("Final duration months must be positive")
	}

	var request *domain.LoanRequest
	err := s.db.WithinTx(ctx, func(st repository.Store) error {
		req, err := st.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return wrapGetRequestErr(err, requestID)
		}

		// Ownership mismatch reads the same as a missing request.
		if req.CustomerID != actor.ID {
			return apperrors.WrapNotFound("Loan request", requestID.String())
		}

		if req.Status != domain.RequestStatusPendingCustomer {
			return apperrors.WrapInvalidState("Loan request", req.ID.String(), req.Status)
		}

		if input.FinalDurationMonths > req.MaxDurationMonths {
			return apperrors.WrapInvalidRange(fmt.Sprintf(
				"Final duration months cannot exceed the maximum allowed duration of %d months", req.MaxDurationMonths))
		}

		if input.Amount.LessThan(req.MinAmount.Decimal) || input.Amount.GreaterThan(req.MaxAmount.Decimal) {
			return apperrors.WrapInvalidRange("Amount must be within the range set by the bank personnel")
		}

		// Funds may have been consumed by other approvals since the
		// constraints were set; re-check.
		ledger, err := st.GetLedger(ctx)
		if err != nil {
			return apperrors.WrapDatabaseError(err)
		}
		if input.Amount.GreaterThan(ledger.TotalFunds) {
			return apperrors.WrapInsufficientFunds(input.Amount, ledger.TotalFunds)
		}

		finalDuration := input.FinalDurationMonths
		req.Amount = input.Amount
		req.FinalDurationMonths = &finalDuration
		req.Status = domain.RequestStatusPendingApproval

		if err := st.UpdateRequest(ctx, req); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// Approve funds a pending-approval request. In a single transaction it
// debits the ledger by the request amount, marks the request approved,
// creates the loan and re-parents the request's documents onto it. Any
// guard failure rolls everything back; on insufficient funds the
// request stays pending approval for retry or rejection.
func (s *LoanService) Approve(ctx context.Context, requestID uuid.UUID) (*domain.Loan, error) {
	var loan *domain.Loan
	err := s.db.WithinTx(ctx, func(st repository.Store) error {
		// Lock order: ledger before request. Payment recording locks in
		// the same order, so concurrent fund-affecting transactions
		// serialize instead of deadlocking.
		ledger, err := st.GetLedgerForUpdate(ctx)
		if err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		req, err := st.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return wrapGetRequestErr(err, requestID)
		}

		if req.Status != domain.RequestStatusPendingApproval {
			return apperrors.WrapInvalidState("Loan request", req.ID.String(), req.Status)
		}

		if req.Amount.GreaterThan(ledger.TotalFunds) {
			return apperrors.WrapInsufficientFunds(req.Amount, ledger.TotalFunds)
		}

		if err := st.SetLedgerFunds(ctx, ledger.TotalFunds.Sub(req.Amount)); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		req.Status = domain.RequestStatusApproved
		if err := st.UpdateRequest(ctx, req); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		now := time.Now()
		loan = &domain.Loan{
			ID:           uuid.New(),
			CustomerID:   req.CustomerID,
			RequestID:    req.ID,
			Amount:       req.Amount,
			TermMonths:   req.FinalDurationMonths,
			InterestRate: req.InterestRate,
			Status:       domain.LoanStatusInProgress,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := st.CreateLoan(ctx, loan); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		if err := st.ReassignDocumentsToLoan(ctx, req.ID, loan.ID); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFundsCache(ctx)

	return loan, nil
}

// Reject moves a non-terminal request to rejected. Holds the same
// request row lock as Approve so a reject cannot race an in-flight
// approval. No ledger effect.
func (s *LoanService) Reject(ctx context.Context, requestID uuid.UUID) (*domain.LoanRequest, error) {
	var request *domain.LoanRequest
	err := s.db.WithinTx(ctx, func(st repository.Store) error {
		req, err := st.GetRequestForUpdate(ctx, requestID)
		if err != nil {
			return wrapGetRequestErr(err, requestID)
		}

		if req.IsTerminal() {
			return apperrors.WrapInvalidTransition(req.ID.String(), req.Status)
		}

		req.Status = domain.RequestStatusRejected
		if err := st.UpdateRequest(ctx, req); err != nil {
			return apperrors.WrapDatabaseError(err)
		}

		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// GetRequest retrieves a request with its documents. Customers only see
// their own requests.
func (s *LoanService) GetRequest(ctx context.Context, requestID uuid.UUID, actor domain.Actor) (*domain.LoanRequest, error) {
	request, err := s.db.GetRequest(ctx, requestID)
	if err != nil {
		return nil, wrapGetRequestErr(err, requestID)
	}

	if actor.IsCustomer() && request.CustomerID != actor.ID {
		return nil, apperrors.WrapNotFound("Loan request", requestID.String())
	}

	docs, err := s.db.ListDocumentsByRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	request.Documents = docs

	return request, nil
}

// ListRequests returns requests visible to the actor, optionally
// filtered by status. Personnel see everything, customers their own.
func (s *LoanService) ListRequests(ctx context.Context, actor domain.Actor, status string) ([]*domain.LoanRequest, error) {
	var (
		requests []*domain.LoanRequest
		err      error
	)
	if actor.IsCustomer() {
		requests, err = s.db.ListRequestsByCustomer(ctx, actor.ID, status)
	} else {
		requests, err = s.db.ListRequests(ctx, status)
	}
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return requests, nil
}
