package trm

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// ExtractTx returns the transaction bound to ctx, or nil when the
// caller runs outside one. Repositories fall back to the pool then.
func ExtractTx(ctx context.Context) *sqlx.Tx {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	if !ok {
		return nil
	}
	return tx
}

// Manager runs callbacks inside a database transaction propagated via
// context. Checkout, cancellation and webhook completion rely on it to
// make their multi-row mutations a single unit.
type Manager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type manager struct {
	db *sqlx.DB
}

func NewManager(db *sqlx.DB) Manager {
	return &manager{db: db}
}

func (m *manager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ExtractTx(ctx) != nil {
		// already inside a transaction, join it
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
