package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is supporting-paperwork metadata attached to a loan request.
// On approval the whole set is re-parented onto the created loan; the
// file content itself lives in external storage.
type Document struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Details     string     `json:"details" db:"details"`
	StoragePath string     `json:"storage_path" db:"storage_path"`
	RequestID   *uuid.UUID `json:"request_id" db:"request_id"`
	LoanID      *uuid.UUID `json:"loan_id" db:"loan_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type DocumentInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Details     string `json:"details"`
	StoragePath string `json:"storage_path" validate:"required"`
}
