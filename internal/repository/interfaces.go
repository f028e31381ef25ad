package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankcore/loan-engine/internal/domain"
)

// LedgerRepository defines the interface for bank ledger data operations
type LedgerRepository interface {
	// EnsureLedger creates the singleton ledger row if it does not exist yet
	EnsureLedger(ctx context.Context) error

	// GetLedger retrieves a read-only snapshot of the ledger
	GetLedger(ctx context.Context) (*domain.BankLedger, error)

	// GetLedgerForUpdate retrieves the ledger holding an exclusive row lock.
	// Only meaningful inside a transaction.
	GetLedgerForUpdate(ctx context.Context) (*domain.BankLedger, error)

	// SetLedgerFunds persists a new total_funds value
	SetLedgerFunds(ctx context.Context, totalFunds decimal.Decimal) error
}

// FundRepository defines the interface for provider fund contributions
type FundRepository interface {
	// CreateFund records a provider contribution
	CreateFund(ctx context.Context, fund *domain.Fund) error

	// ListFundsByProvider retrieves all contributions of one provider
	ListFundsByProvider(ctx context.Context, providerID uuid.UUID) ([]*domain.Fund, error)
}

// RequestRepository defines the interface for loan request data operations
type RequestRepository interface {
	// CreateRequest creates a new loan request
	CreateRequest(ctx context.Context, request *domain.LoanRequest) error

	// GetRequest retrieves a loan request by ID
	GetRequest(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error)

	// GetRequestForUpdate retrieves a loan request holding an exclusive row lock.
	// Only meaningful inside a transaction.
	GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error)

	// UpdateRequest persists negotiated fields and status of a loan request
	UpdateRequest(ctx context.Context, request *domain.LoanRequest) error

	// ListRequests retrieves loan requests, optionally filtered by status
	ListRequests(ctx context.Context, status string) ([]*domain.LoanRequest, error)

	// ListRequestsByCustomer retrieves a customer's loan requests,
	// optionally filtered by status
	ListRequestsByCustomer(ctx context.Context, customerID uuid.UUID, status string) ([]*domain.LoanRequest, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// CreateLoan creates a new loan
	CreateLoan(ctx context.Context, loan *domain.Loan) error

	// GetLoan retrieves a loan by ID
	GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// GetLoanForUpdate retrieves a loan holding an exclusive row lock.
	// Only meaningful inside a transaction.
	GetLoanForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// UpdateLoanStatus persists a recomputed loan status
	UpdateLoanStatus(ctx context.Context, id uuid.UUID, status string) error

	// ListLoans retrieves loans, optionally filtered by status
	ListLoans(ctx context.Context, status string) ([]*domain.Loan, error)

	// ListLoansByCustomer retrieves a customer's loans, optionally
	// filtered by status
	ListLoansByCustomer(ctx context.Context, customerID uuid.UUID, status string) ([]*domain.Loan, error)

	// ListDeadlineCandidates retrieves in-progress loans whose repayment
	// deadline lies before the given instant
	ListDeadlineCandidates(ctx context.Context, now time.Time) ([]*domain.Loan, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// CreatePayment creates a new payment record
	CreatePayment(ctx context.Context, payment *domain.LoanPayment) error

	// ListPaymentsByLoan retrieves all payments for a loan
	ListPaymentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error)

	// GetTotalPaid calculates total amount paid for a loan
	GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error)
}

// DocumentRepository defines the interface for document metadata operations
type DocumentRepository interface {
	// CreateDocument attaches a document to a loan request
	CreateDocument(ctx context.Context, doc *domain.Document) error

	// ListDocumentsByRequest retrieves a request's documents
	ListDocumentsByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.Document, error)

	// ListDocumentsByLoan retrieves a loan's documents
	ListDocumentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Document, error)

	// ReassignDocumentsToLoan transfers ownership of all of a request's
	// documents to a loan in a single statement
	ReassignDocumentsToLoan(ctx context.Context, requestID, loanID uuid.UUID) error
}

// Store aggregates all repositories so a single transaction can span
// the ledger, requests, loans, payments and documents.
type Store interface {
	LedgerRepository
	FundRepository
	RequestRepository
	LoanRepository
	PaymentRepository
	DocumentRepository
}

// DB is a Store that can also run a function inside one database
// transaction. Row locks taken by the callback are held until the
// transaction commits or rolls back.
type DB interface {
	Store

	// WithinTx runs fn against a transaction-scoped Store. fn returning
	// an error rolls everything back; otherwise the transaction commits.
	WithinTx(ctx context.Context, fn func(Store) error) error
}
