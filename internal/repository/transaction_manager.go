package repository

import (
	"context"
	"fmt"

	"mission-desk/internal/domain"
	"mission-desk/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type contextKey string

const (
	// TransactionContextKey carries the active *sqlx.Tx.
	TransactionContextKey contextKey = "tx"
)

// GetExecutor returns the transaction stored in ctx, or db when there is none.
func GetExecutor(ctx context.Context, db DBTX) DBTX {
	if tx := ctx.Value(TransactionContextKey); tx != nil {
		if sqlxTx, ok := tx.(*sqlx.Tx); ok {
			return sqlxTx
		}
	}
	return db
}

// TransactionManagerAdapter implements domain.TransactionManager on *sqlx.DB.
type TransactionManagerAdapter struct {
	db *sqlx.DB
}

func NewTransactionManagerAdapter(db *sqlx.DB) domain.TransactionManager {
	return &TransactionManagerAdapter{db: db}
}

// WithTransaction runs fn in a transaction. Nested calls join the outer transaction.
func (tma *TransactionManagerAdapter) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(TransactionContextKey).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := tma.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				logger.Get().Error("failed to rollback transaction after panic", zap.Error(rollbackErr))
			}
			panic(p)
		}
	}()

	txCtx := context.WithValue(ctx, TransactionContextKey, tx)

	if err := fn(txCtx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
