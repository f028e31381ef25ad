package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/bankcore/loan-engine/internal/domain"
)

func (s *store) CreatePayment(ctx context.Context, payment *domain.LoanPayment) error {
	query := `
		INSERT INTO loan_payment (id, loan_id, amount_paid, payment_date)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.ext.ExecContext(ctx, query,
		payment.ID,
		payment.LoanID,
		payment.AmountPaid,
		payment.PaymentDate,
	)

	return err
}

func (s *store) ListPaymentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	query := `
		SELECT id, loan_id, amount_paid, payment_date
		FROM loan_payment
		WHERE loan_id = $1
		ORDER BY payment_date
	`

	var payments []*domain.LoanPayment
	err := sqlx.SelectContext(ctx, s.ext, &payments, query, loanID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (s *store) GetTotalPaid(ctx context.Context, loanID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount_paid), 0)
		FROM loan_payment
		WHERE loan_id = $1
	`

	var total decimal.Decimal
	err := sqlx.GetContext(ctx, s.ext, &total, query, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
