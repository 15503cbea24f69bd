package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound indicates a referenced entity key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation on a relation pair.
	ErrConflict = errors.New("already exists")
	// ErrInvariant indicates a write that would break a structural invariant,
	// e.g. a game winner that is neither the home nor the away team.
	ErrInvariant = errors.New("invariant violation")
)

// mapError translates driver-level errors into the store's sentinel taxonomy.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w", op, ErrConflict)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
