package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bankcore/loan-engine/internal/domain"
)

func (s *store) CreateDocument(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO document (id, title, details, storage_path, request_id, loan_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.ext.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		doc.Details,
		doc.StoragePath,
		doc.RequestID,
		doc.LoanID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	return err
}

func (s *store) ListDocumentsByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.Document, error) {
	query := `
		SELECT id, title, details, storage_path, request_id, loan_id, created_at, updated_at
		FROM document
		WHERE request_id = $1
		ORDER BY created_at
	`

	var docs []*domain.Document
	err := sqlx.SelectContext(ctx, s.ext, &docs, query, requestID)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (s *store) ListDocumentsByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Document, error) {
	query := `
		SELECT id, title, details, storage_path, request_id, loan_id, created_at, updated_at
		FROM document
		WHERE loan_id = $1
		ORDER BY created_at
	`

	var docs []*domain.Document
	err := sqlx.SelectContext(ctx, s.ext, &docs, query, loanID)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// ReassignDocumentsToLoan re-parents every document of a request onto
// the loan in one statement, so approval either moves the whole set or
// none of it.
func (s *store) ReassignDocumentsToLoan(ctx context.Context, requestID, loanID uuid.UUID) error {
	query := `
		UPDATE document
		SET request_id = NULL, loan_id = $2, updated_at = $3
		WHERE request_id = $1
	`

	_, err := s.ext.ExecContext(ctx, query, requestID, loanID, time.Now())
	return err
}
