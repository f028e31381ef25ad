package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bankcore/loan-engine/internal/domain"
)

const loanColumns = `
	id, customer_id, request_id, amount, term_months, interest_rate,
	status, created_at, updated_at
`

func (s *store) CreateLoan(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loan (id, customer_id, request_id, amount, term_months, interest_rate, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.ext.ExecContext(ctx, query,
		loan.ID,
		loan.CustomerID,
		loan.RequestID,
		loan.Amount,
		loan.TermMonths,
		loan.InterestRate,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (s *store) GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loan WHERE id = $1`

	var loan domain.Loan
	err := sqlx.GetContext(ctx, s.ext, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (s *store) GetLoanForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loan WHERE id = $1 FOR UPDATE`

	var loan domain.Loan
	err := sqlx.GetContext(ctx, s.ext, &loan, query, id)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (s *store) UpdateLoanStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE loan
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := s.ext.ExecContext(ctx, query, id, status, time.Now())
	return err
}

func (s *store) ListLoans(ctx context.Context, status string) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loan`
	args := []interface{}{}

	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var loans []*domain.Loan
	err := sqlx.SelectContext(ctx, s.ext, &loans, query, args...)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (s *store) ListLoansByCustomer(ctx context.Context, customerID uuid.UUID, status string) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loan WHERE customer_id = $1`
	args := []interface{}{customerID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var loans []*domain.Loan
	err := sqlx.SelectContext(ctx, s.ext, &loans, query, args...)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (s *store) ListDeadlineCandidates(ctx context.Context, now time.Time) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loan
		WHERE status = $1
		  AND term_months IS NOT NULL
		  AND created_at + make_interval(months => term_months) < $2
		ORDER BY created_at
	`

	var loans []*domain.Loan
	err := sqlx.SelectContext(ctx, s.ext, &loans, query, domain.LoanStatusInProgress, now)
	if err != nil {
		return nil, err
	}

	return loans, nil
}
