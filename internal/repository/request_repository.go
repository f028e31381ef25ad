package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bankcore/loan-engine/internal/domain"
)

const requestColumns = `
	id, customer_id, status, min_amount, max_amount, interest_rate,
	max_duration_months, final_duration_months, purpose, details,
	amount, secured, created_at, updated_at
`

func (s *store) CreateRequest(ctx context.Context, request *domain.LoanRequest) error {
	query := `
		INSERT INTO loan_request (id, customer_id, status, max_duration_months, purpose, details, amount, secured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.ext.ExecContext(ctx, query,
		request.ID,
		request.CustomerID,
		request.Status,
		request.MaxDurationMonths,
		request.Purpose,
		request.Details,
		request.Amount,
		request.Secured,
		request.CreatedAt,
		request.UpdatedAt,
	)

	return err
}

func (s *store) GetRequest(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM loan_request WHERE id = $1`

	var request domain.LoanRequest
	err := sqlx.GetContext(ctx, s.ext, &request, query, id)
	if err != nil {
		return nil, err
	}

	return &request, nil
}

func (s *store) GetRequestForUpdate(ctx context.Context, id uuid.UUID) (*domain.LoanRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM loan_request WHERE id = $1 FOR UPDATE`

	var request domain.LoanRequest
	err := sqlx.GetContext(ctx, s.ext, &request, query, id)
	if err != nil {
		return nil, err
	}

	return &request, nil
}

func (s *store) UpdateRequest(ctx context.Context, request *domain.LoanRequest) error {
	query := `
		UPDATE loan_request
		SET status = $2, min_amount = $3, max_amount = $4, interest_rate = $5,
		    max_duration_months = $6, final_duration_months = $7, amount = $8,
		    updated_at = $9
		WHERE id = $1
	`

	_, err := s.ext.ExecContext(ctx, query,
		request.ID,
		request.Status,
		request.MinAmount,
		request.MaxAmount,
		request.InterestRate,
		request.MaxDurationMonths,
		request.FinalDurationMonths,
		request.Amount,
		time.Now(),
	)

	return err
}

func (s *store) ListRequests(ctx context.Context, status string) ([]*domain.LoanRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM loan_request`
	args := []interface{}{}

	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var requests []*domain.LoanRequest
	err := sqlx.SelectContext(ctx, s.ext, &requests, query, args...)
	if err != nil {
		return nil, err
	}

	return requests, nil
}

func (s *store) ListRequestsByCustomer(ctx context.Context, customerID uuid.UUID, status string) ([]*domain.LoanRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM loan_request WHERE customer_id = $1`
	args := []interface{}{customerID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var requests []*domain.LoanRequest
	err := sqlx.SelectContext(ctx, s.ext, &requests, query, args...)
	if err != nil {
		return nil, err
	}

	return requests, nil
}
