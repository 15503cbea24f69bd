// Package store is the persistent entity and relation graph: organizational
// nodes (Union, District, Club, Team, Group), people, venues, game-day records
// and the join relations between them. Uniqueness of every relation pair is
// enforced here, at the schema level, so "first of kind" races collapse into
// ErrConflict instead of duplicate rows.
package store

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so every query can run inside
// the caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides typed access to the entity graph.
type Store struct {
	db DBTX
}

func New(db DBTX) *Store {
	return &Store{db: db}
}

// WithTx returns a Store bound to tx. Writes made through the returned store
// commit or roll back with the transaction.
func (s *Store) WithTx(tx *sql.Tx) *Store {
	return &Store{db: tx}
}
