package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/repository"
)

// TxOptions controls isolation and retry behaviour of WithinTx
type TxOptions struct {
	IsolationLevel sql.IsolationLevel
	MaxRetries     int
	InitialBackoff time.Duration
}

func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel: sql.LevelReadCommitted,
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
	}
}

type transactor struct {
	db     *sqlx.DB
	opts   TxOptions
	logger *zap.Logger
}

// NewTransactor creates a transactor that retries on contention errors
func NewTransactor(db *sqlx.DB, opts TxOptions, logger *zap.Logger) *transactor {
	return &transactor{db: db, opts: opts, logger: logger}
}

func (t *transactor) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	backoff := t.opts.InitialBackoff

	for attempt := 0; ; attempt++ {
		err := t.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt >= t.opts.MaxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", t.opts.MaxRetries, err)
		}

		t.logger.Warn("Retrying transaction",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		jitter := time.Duration(rand.Int63n(int64(backoff/4) + 1))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}

func (t *transactor) runOnce(ctx context.Context, fn repository.TxFunc) error {
	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{Isolation: t.opts.IsolationLevel})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, newRepositories(tx, t, t.logger)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
