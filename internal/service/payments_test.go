package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bankcore/loan-engine/internal/domain"
	apperrors "github.com/bankcore/loan-engine/pkg/errors"
	"github.com/bankcore/loan-engine/tests/mocks"
)

func activeLoan(customerID uuid.UUID) *domain.Loan {
	return &domain.Loan{
		ID:           uuid.New(),
		CustomerID:   customerID,
		RequestID:    uuid.New(),
		Amount:       decimal.NewFromInt(1000),
		TermMonths:   intPtr(12),
		InterestRate: floatPtr(10),
		Status:       domain.LoanStatusInProgress,
		CreatedAt:    time.Now().AddDate(0, -1, 0),
	}
}

func expectLedger(store *mocks.MockStore, funds int64) {
	store.On("GetLedgerForUpdate", mock.Anything).Return(&domain.BankLedger{
		ID:         domain.LedgerID,
		TotalFunds: decimal.NewFromInt(funds),
	}, nil)
}

func TestRecordPayment(t *testing.T) {
	customerID := uuid.New()
	actor := domain.Actor{ID: customerID, Role: domain.RoleCustomer}

	t.Run("partial payment keeps loan in progress and credits ledger", func(t *testing.T) {
		store := &mocks.MockStore{}
		svc := newTestService(store)
		loan := activeLoan(customerID)

		expectLedger(store, 400)
		store.On("GetLoanForUpdate", mock.Anything, loan.ID).Return(loan, nil)
		store.On("GetTotalPaid", mock.Anything, loan.ID).Return(decimal.Zero, nil)
		store.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p *domain.LoanPayment) bool {
			return p.LoanID == loan.ID && p.AmountPaid.Equal(decimal.NewFromInt(500))
		})).Return(nil)
		store.On("SetLedgerFunds", mock.Anything, mock.MatchedBy(func(funds decimal.Decimal) bool {
			return funds.Equal(decimal.NewFromInt(900))
		})).Return(nil)

		payment, err := svc.RecordPayment(context.Background(), loan.ID, actor, decimal.NewFromInt(500))

		assert.NoError(t, err)
		assert.True(t, payment.AmountPaid.Equal(decimal.NewFromInt(500)))
		store.AssertNotCalled(t, "UpdateLoanStatus", mock.Anything, mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("final payment settles the loan", func(t *testing.T) {
		store := &mocks.MockStore{}
		svc := newTestService(store)
		loan := activeLoan(customerID)

		// 1000 at 10% flat means 1100 expected; 500 already paid.
		expectLedger(store, 900)
		store.On("GetLoanForUpdate", mock.Anything, loan.ID).Return(loan, nil)
		store.On("GetTotalPaid", mock.Anything, loan.ID).Return(decimal.NewFromInt(500), nil)
		store.On("CreatePayment", mock.Anything, mock.Anything).Return(nil)
		store.On("UpdateLoanStatus", mock.Anything, loan.ID, domain.LoanStatusFullyPaid).Return(nil)
		store.On("SetLedgerFunds", mock.Anything, mock.MatchedBy(func(funds decimal.Decimal) bool {
			return funds.Equal(decimal.NewFromInt(1500))
		})).Return(nil)

		_, err := svc.RecordPayment(context.Background(), loan.ID, actor, decimal.NewFromInt(600))

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("settled loan accepts no further payments", func(t *testing.T) {
		store := &mocks.MockStore{}
		svc := newTestService(store)
		loan := activeLoan(customerID)
		loan.Status = domain.LoanStatusFullyPaid

		expectLedger(store, 1500)
		store.On("GetLoanForUpdate", mock.Anything, loan.ID).Return(loan, nil)

		_, err := svc.RecordPayment(context.Background(), loan.ID, actor, decimal.NewFromInt(1))

		assert.ErrorIs(t, err, apperrors.ErrLoanAlreadySettled)
		store.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	})

	t.Run("payment above remaining balance is refused", func(t *testing.T) {
		store := &mocks.MockStore{}
		svc := newTestService(store)
		loan := activeLoan(customerID)

		expectLedger(store, 900)
		store.On("GetLoanForUpdate", mock.Anything, loan.ID).Return(loan, nil)
		store.On("GetTotalPaid", mock.Anything, loan.ID).Return(decimal.NewFromInt(600), nil)

		// remaining is 500
		_, err := svc.RecordPayment(context.Background(), loan.ID, actor, decimal.NewFromInt(600))

		assert.ErrorIs(t, err, apperrors.ErrAmountExceedsBalance)
		store.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "SetLedgerFunds", mock.Anything, mock.Anything)
	})

	t.Run("non-positive amount is refused before touching the store", func(t *testing.T) {
		store := &mocks.MockStore{}
		svc := newTestService(store)

		_, err := svc.RecordPayment(context.Background(), uuid.New(), actor, decimal.Zero)

		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		store.AssertNotCalled(t, "GetLoanForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("another customer's loan is off limits", func(t *testing.T) {
		store := &mocks.MockStore{}
		svc := newTestService(store)
		loan := activeLoan(uuid.New())

		expectLedger(store, 900)
		store.On("GetLoanForUpdate", mock.Anything, loan.ID).Return(loan, nil)

		_, err := svc.RecordPayment(context.Background(), loan.ID, actor, decimal.NewFromInt(100))

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
		store.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	})
}

func TestGetLoanRefreshesStatus(t *testing.T) {
	customerID := uuid.New()
	actor := domain.Actor{ID: customerID, Role: domain.RoleCustomer}

	store := &mocks.MockStore{}
	svc := newTestService(store)

	loan := activeLoan(customerID)
	loan.TermMonths = intPtr(1)
	loan.CreatedAt = time.Now().AddDate(0, -2, 0)

	store.On("GetLoanForUpdate", mock.Anything, loan.ID).Return(loan, nil)
	store.On("GetTotalPaid", mock.Anything, loan.ID).Return(decimal.Zero, nil)
	store.On("UpdateLoanStatus", mock.Anything, loan.ID, domain.LoanStatusOverdue).Return(nil)
	store.On("ListDocumentsByLoan", mock.Anything, loan.ID).Return([]*domain.Document{}, nil)

	got, err := svc.GetLoan(context.Background(), loan.ID, actor)

	assert.NoError(t, err)
	assert.Equal(t, domain.LoanStatusOverdue, got.Status)
	store.AssertExpectations(t)
}

func TestSweepOverdueLoans(t *testing.T) {
	store := &mocks.MockStore{}
	svc := newTestService(store)

	overdue := activeLoan(uuid.New())
	overdue.TermMonths = intPtr(1)
	overdue.CreatedAt = time.Now().AddDate(0, -3, 0)

	// Past its deadline but settled; the sweep must leave it alone.
	settled := activeLoan(uuid.New())
	settled.TermMonths = intPtr(1)
	settled.CreatedAt = time.Now().AddDate(0, -3, 0)

	store.On("ListDeadlineCandidates", mock.Anything, mock.Anything).
		Return([]*domain.Loan{overdue, settled}, nil)

	store.On("GetLoanForUpdate", mock.Anything, overdue.ID).Return(overdue, nil)
	store.On("GetTotalPaid", mock.Anything, overdue.ID).Return(decimal.Zero, nil)
	store.On("UpdateLoanStatus", mock.Anything, overdue.ID, domain.LoanStatusOverdue).Return(nil)

	store.On("GetLoanForUpdate", mock.Anything, settled.ID).Return(settled, nil)
	store.On("GetTotalPaid", mock.Anything, settled.ID).Return(decimal.NewFromInt(1100), nil)
	store.On("UpdateLoanStatus", mock.Anything, settled.ID, domain.LoanStatusFullyPaid).Return(nil)

	marked, err := svc.SweepOverdueLoans(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, marked)
	store.AssertExpectations(t)
}

func TestAddFund(t *testing.T) {
	provider := domain.Actor{ID: uuid.New(), Role: domain.RoleProvider}

	t.Run("credits the ledger and records the contribution", func(t *testing.T) {
		store := &mocks.MockStore{}
		svc := newTestService(store)

		expectLedger(store, 250)
		store.On("SetLedgerFunds", mock.Anything, mock.MatchedBy(func(funds decimal.Decimal) bool {
			return funds.Equal(decimal.NewFromInt(1250))
		})).Return(nil)
		store.On("CreateFund", mock.Anything, mock.MatchedBy(func(f *domain.Fund) bool {
			return f.ProviderID == provider.ID && f.Amount.Equal(decimal.NewFromInt(1000))
		})).Return(nil)

		fund, err := svc.AddFund(context.Background(), provider, decimal.NewFromInt(1000))

		assert.NoError(t, err)
		assert.Equal(t, provider.ID, fund.ProviderID)
		store.AssertExpectations(t)
	})

	t.Run("rejects non-positive contributions", func(t *testing.T) {
		store := &mocks.MockStore{}
		svc := newTestService(store)

		_, err := svc.AddFund(context.Background(), provider, decimal.NewFromInt(-5))

		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		store.AssertNotCalled(t, "CreateFund", mock.Anything, mock.Anything)
	})
}

func TestAvailableFundsWithoutCache(t *testing.T) {
	store := &mocks.MockStore{}
	svc := newTestService(store)

	store.On("GetLedger", mock.Anything).Return(&domain.BankLedger{
		ID:         domain.LedgerID,
		TotalFunds: decimal.RequireFromString("1234.56"),
	}, nil)

	funds, err := svc.AvailableFunds(context.Background())

	assert.NoError(t, err)
	assert.True(t, funds.Equal(decimal.RequireFromString("1234.56")))
}
