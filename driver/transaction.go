package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	defaultMaxRetries = 3
	retryBackoff      = 20 * time.Millisecond
)

// Transactor runs a function inside a database transaction. Services depend on
// this interface so they can be exercised without a live database.
type Transactor interface {
	ExecuteTransaction(ctx context.Context, fn func(pgx.Tx) error) error
	ExecuteSerializableTransaction(ctx context.Context, fn func(pgx.Tx) error) error
}

var _ Transactor = (*TransactionManager)(nil)

type TransactionManager struct {
	conn       PostgresPool
	logger     *zap.Logger
	maxRetries int
}

func NewTransactionManager(conn PostgresPool, logger *zap.Logger) *TransactionManager {
	return &TransactionManager{
		conn:       conn,
		logger:     logger,
		maxRetries: defaultMaxRetries,
	}
}

// ExecuteTransaction runs fn in a read-committed transaction. fn's error rolls
// the transaction back and is returned unchanged.
func (tm *TransactionManager) ExecuteTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	return tm.execute(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// ExecuteSerializableTransaction runs fn in a serializable transaction and
// re-runs it when Postgres aborts it with a serialization failure or deadlock.
func (tm *TransactionManager) ExecuteSerializableTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt <= tm.maxRetries; attempt++ {
		err = tm.execute(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}

		tm.logger.Warn("serializable transaction aborted, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * retryBackoff):
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func (tm *TransactionManager) execute(ctx context.Context, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := tm.conn.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			tm.logger.Error("failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// IsRetryable reports whether err is a serialization failure (40001) or a
// deadlock (40P01).
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
