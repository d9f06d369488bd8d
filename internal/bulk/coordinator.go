// Package bulk writes a batch of records in one transaction where every item
// succeeds or fails on its own. Each item runs inside a savepoint: a failing
// item is rolled back to its savepoint and reported, the others are kept, and
// the whole batch becomes visible at the single top-level commit.
package bulk

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	apperrors "crm/internal/errors"
	"crm/internal/infrastructure/database"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ItemFunc validates and writes one item inside tx. A returned error fails
// only that item.
type ItemFunc[In, Out any] func(ctx context.Context, tx *sql.Tx, item In) (Out, error)

// Failure describes a rejected item. Index is zero-based, Row is the
// one-based position reported to callers.
type Failure struct {
	Index   int
	Row     int
	Code    apperrors.Reason
	Message string
}

type Result[Out any] struct {
	Committed []Out
	Failures  []Failure
}

type Coordinator struct {
	db       TransactionManager
	txCfg    database.TxConfig
	logger   *zap.Logger
	maxItems int
}

func NewCoordinator(db TransactionManager, txCfg database.TxConfig, logger *zap.Logger, maxItems int) *Coordinator {
	return &Coordinator{
		db:       db,
		txCfg:    txCfg,
		logger:   logger,
		maxItems: maxItems,
	}
}

// Run processes items in input order. kind names the batch in logs and errors.
// When the final commit fails the result is nil and the error is a
// FatalCommitError: nothing from the batch was persisted.
func Run[In, Out any](ctx context.Context, c *Coordinator, kind string, items []In, fn ItemFunc[In, Out]) (*Result[Out], error) {
	if len(items) == 0 {
		return nil, apperrors.NewEmptyInputError(kind, fmt.Sprintf("no %s provided", kind))
	}
	if c.maxItems > 0 && len(items) > c.maxItems {
		msg := fmt.Sprintf("%s batch exceeds maximum of %d items", kind, c.maxItems)
		return nil, apperrors.NewValidationError(msg, apperrors.ValidationDetail{Field: kind, Message: msg})
	}

	ctx, cancel := c.txCfg.Context(ctx)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, c.txCfg.Options)
	if err != nil {
		c.logger.Error("failed to begin transaction", zap.String("kind", kind), zap.Error(err))
		return nil, fmt.Errorf("beginning %s batch: %w", kind, err)
	}
	defer tx.Rollback()

	result := &Result[Out]{
		Committed: []Out{},
		Failures:  []Failure{},
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s batch interrupted at item %d: %w", kind, i+1, err)
		}

		sp, err := database.NewSavepoint(ctx, tx, fmt.Sprintf("bulk_item_%d", i))
		if err != nil {
			c.logger.Error("failed to open savepoint", zap.String("kind", kind), zap.Int("row", i+1), zap.Error(err))
			return nil, err
		}

		out, itemErr := fn(ctx, tx, item)
		if itemErr != nil {
			if err := sp.Rollback(ctx); err != nil {
				c.logger.Error("failed to roll back item", zap.String("kind", kind), zap.Int("row", i+1), zap.String("savepoint", sp.Name()), zap.Error(err))
				return nil, err
			}

			failure := Failure{
				Index:   i,
				Row:     i + 1,
				Code:    apperrors.ReasonOf(itemErr),
				Message: itemErr.Error(),
			}
			result.Failures = append(result.Failures, failure)
			c.logger.Warn("bulk item failed",
				zap.String("kind", kind),
				zap.Int("row", failure.Row),
				zap.String("savepoint", sp.Name()),
				zap.String("code", string(failure.Code)),
				zap.Error(itemErr),
			)
			continue
		}

		if err := sp.Release(ctx); err != nil {
			c.logger.Error("failed to release savepoint", zap.String("kind", kind), zap.Int("row", i+1), zap.String("savepoint", sp.Name()), zap.Error(err))
			return nil, err
		}

		result.Committed = append(result.Committed, out)
		c.logger.Debug("bulk item written", zap.String("kind", kind), zap.Int("row", i+1), zap.String("savepoint", sp.Name()))
	}

	if err := tx.Commit(); err != nil {
		c.logger.Error("failed to commit batch", zap.String("kind", kind), zap.Int("items", len(items)), zap.Error(err))
		return nil, apperrors.NewFatalCommitError(kind, err)
	}

	c.logger.Info("batch committed",
		zap.String("kind", kind),
		zap.Int("committed", len(result.Committed)),
		zap.Int("failed", len(result.Failures)),
	)

	return result, nil
}
