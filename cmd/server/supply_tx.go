package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "foodsupply/pkg/domain-errors"
	txcontext "foodsupply/pkg/platform/tx"
)

const defaultSupplyTxTimeout = 5 * time.Second

// supplyPostgresTx runs one custody operation in a single Postgres
// transaction. Stores pick the transaction up from the context.
type supplyPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newSupplyPostgresTx(db *sql.DB) *supplyPostgresTx {
	return &supplyPostgresTx{db: db}
}

// Atomic reports that listing and retailer writes commit together.
func (t *supplyPostgresTx) Atomic() bool { return true }

func (t *supplyPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultSupplyTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}
