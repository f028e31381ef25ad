package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/bankcore/loan-engine/internal/domain"
	"github.com/bankcore/loan-engine/internal/repository"
)

// MockStore mocks repository.DB. WithinTx simply runs the callback
// against the mock itself, so expectations registered on the mock are
// visible inside "transactions".
type MockStore struct {
	mock.Mock
}

func (m *MockStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

// Ledger

func (m *MockStore) EnsureLedger(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) GetLedger(ctx context.Context) (*domain.BankLedger, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankLedger), args.Error(1)
}

func (m *MockStore) GetLedgerForUpdate(ctx context.Context) (*domain.BankLedger, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankLedger), args.Error(1)
}

func (m *MockStore) SetLedgerFunds(ctx context.Context, totalFunds decimal.Decimal) error {
	args := m.Called(ctx, totalFunds)
	return args.Error(0)
}

// Funds

func (m *MockStore) CreateFund(ctx context.Context, fund *domain.Fund) error {
	args := m.Called(ctx, fund)
	return args.Error(0)
}

func (m *MockStore) ListFundsByProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.Fund, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Fund), args.Error(1)
}

// Loan requests

func (m *MockStore) CreateRequest(ctx context.Context, request *domain.LoanRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockStore) GetRequest(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanRequest), args.Error(1)
}

func (m *MockStore) GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanRequest), args.Error(1)
}

func (m *MockStore) UpdateRequest(ctx context.Context, request *domain.LoanRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockStore) ListRequests(ctx context.Context, status string) ([]*domain.LoanRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRequest), args.Error(1)
}

func (m *MockStore) ListRequestsByCustomer(ctx context.Context, customerID uuid.UUID, status string) ([]*domain.LoanRequest, error) {
	args := m.Called(ctx, customerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRequest), args.Error(1)
}

// Loans

func (m *MockStore) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockStore) GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockStore) GetLoanForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockStore) UpdateLoanStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) ListLoans(ctx context.Context, status string) ([]*domain.Loan, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockStore) ListLoansByCustomer(ctx context.Context, customerID uuid.UUID, status string) ([]*domain.Loan, error) {
	args := m.Called(ctx, customerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockStore) ListDeadlineCandidates(ctx context.Context, now time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

// Payments

func (m *MockStore) CreatePayment(ctx context.Context, payment *domain.LoanPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockStore) ListPaymentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanPayment), args.Error(1)
}

func (m *MockStore) GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// Documents

func (m *MockStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockStore) ListDocumentsByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.Document, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockStore) ListDocumentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Document, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Document), args.Error(1)
}

func (m *MockStore) ReassignDocumentsToLoan(ctx context.Context, requestID, loanID uuid.UUID) error {
	args := m.Called(ctx, requestID, loanID)
	return args.Error(0)
}
