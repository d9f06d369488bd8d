package database

import (
	"context"
	"database/sql"
	"time"
)

// TxConfig is how request transactions are started: isolation options for the
// driver and the deadline each transaction runs under.
type TxConfig struct {
	Options *sql.TxOptions
	Timeout time.Duration
}

func NewTxConfig(driver string, timeout time.Duration) TxConfig {
	return TxConfig{Options: TxOptions(driver), Timeout: timeout}
}

// Context derives the context a transaction runs under. A zero Timeout only
// adds cancellation.
func (c TxConfig) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Paginate appends LIMIT/OFFSET to query when limit is positive. An offset
// without a limit is ignored.
func Paginate(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 {
		return query, args
	}
	query += " LIMIT ? OFFSET ?"
	return query, append(args, limit, offset)
}
