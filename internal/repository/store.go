package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SQLStore is the postgres-backed implementation of DB. Queries run
// against the pool directly, or against a transaction when reached
// through WithinTx.
type SQLStore struct {
	store
	db *sqlx.DB
}

// store carries the executor shared by all repository methods; ext is
// either the *sqlx.DB pool or a *sqlx.Tx.
type store struct {
	ext sqlx.ExtContext
}

func New(db *sqlx.DB) *SQLStore {
	return &SQLStore{
		store: store{ext: db},
		db:    db,
	}
}

// WithinTx runs fn against a transaction-scoped Store. The transaction
// rolls back when fn errors and commits otherwise; FOR UPDATE locks
// taken inside fn are released either way.
func (s *SQLStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&store{ext: tx}); err != nil {
		return err
	}

	return tx.Commit()
}
