package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Savepoint is a nested rollback scope inside an open transaction.
// Both MySQL (InnoDB) and SQLite accept the statements used here.
type Savepoint struct {
	tx   *sql.Tx
	name string
}

// NewSavepoint marks a savepoint named name on tx. name must be a plain
// identifier; callers generate it, it never comes from user input.
func NewSavepoint(ctx context.Context, tx *sql.Tx, name string) (*Savepoint, error) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return nil, fmt.Errorf("creating savepoint %s: %w", name, err)
	}
	return &Savepoint{tx: tx, name: name}, nil
}

func (s *Savepoint) Name() string {
	return s.name
}

// Release keeps the effects since the savepoint as part of the enclosing transaction.
func (s *Savepoint) Release(ctx context.Context) error {
	if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+s.name); err != nil {
		return fmt.Errorf("releasing savepoint %s: %w", s.name, err)
	}
	return nil
}

// Rollback undoes every write made since the savepoint and discards it,
// leaving the enclosing transaction open.
func (s *Savepoint) Rollback(ctx context.Context) error {
	if _, err := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+s.name); err != nil {
		return fmt.Errorf("rolling back to savepoint %s: %w", s.name, err)
	}
	return s.Release(ctx)
}
