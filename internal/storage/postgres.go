package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/hjemly/hjemly/internal/config"
	"github.com/hjemly/hjemly/internal/logger"
	"github.com/hjemly/hjemly/internal/types"
)

// Client wraps sqlx.DB to provide transaction management. Repositories obtain
// their querier through Querier so reads and writes inside a WithTx call share
// the same transaction.
type Client struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewDB opens a pooled postgres connection from config.
func NewDB(cfg *config.Configuration, logger *logger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	return db, nil
}

// NewClient creates a postgres-backed IClient with transaction management.
func NewClient(db *sqlx.DB, logger *logger.Logger) *Client {
	return &Client{
		db:     db,
		logger: logger,
	}
}

// WithTx wraps the given function in a transaction.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// Already in a transaction: reuse it, do not commit it here.
	if tx := c.TxFromContext(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if v := recover(); v != nil {
			c.logger.Errorw("rolling back transaction due to panic",
				"panic", v,
			)
			_ = tx.Rollback()
			panic(v)
		}
	}()

	txCtx := context.WithValue(ctx, types.CtxDBTransaction, tx)

	if err := fn(txCtx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("rolling back transaction: %v (original error: %w)", rerr, err)
		}
		c.logger.Errorw("rolling back transaction due to error",
			"error", err,
		)
		return err
	}

	if err := tx.Commit(); err != nil {
		c.logger.Errorw("committing transaction",
			"error", err,
		)
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// TxFromContext returns the transaction from context if it exists.
func (c *Client) TxFromContext(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(types.CtxDBTransaction).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}

// Querier returns the current transaction if in one, or the pooled DB.
func (c *Client) Querier(ctx context.Context) sqlx.ExtContext {
	if tx := c.TxFromContext(ctx); tx != nil {
		return tx
	}
	return c.db
}
