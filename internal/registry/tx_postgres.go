package registry

import (
	"context"
	"database/sql"
	"time"

	"warga/internal/document"
	"warga/internal/household"
	"warga/internal/mutation"
	"warga/internal/resident"
	"warga/internal/sequence"
	dErrors "warga/pkg/domain-errors"
)

// PostgresTx runs registry operations inside one SQL transaction. All stores
// handed to fn share the same *sql.Tx, so the sequence allocator's counter
// increment commits and rolls back together with the approval that asked
// for it.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(s Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "begin registry transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stores := Stores{
		Residents:  resident.NewPostgresStore(tx),
		Households: household.NewPostgresStore(tx),
		Events:     mutation.NewPostgresStore(tx),
		Documents:  document.NewPostgresStore(tx),
		Sequences:  sequence.NewPostgresStore(tx),
	}
	if err := fn(stores); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "commit registry transaction")
	}
	return nil
}
