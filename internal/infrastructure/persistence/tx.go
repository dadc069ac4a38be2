package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/bookloop/backend/internal/domain/shared"
)

type txContextKey struct{}

// WithTx returns a context carrying an open transaction. Repositories
// and the ledger adapter resolve their connection through TxFromContext,
// so everything called inside WithinTx shares one commit boundary.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext returns the transaction carried by the context, or nil
func TxFromContext(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return nil
}

// GormTransactionManager implements shared.TransactionManager on a
// gorm connection
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new transaction manager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTx runs fn inside a transaction carried through the context.
// A nested call joins the surrounding transaction instead of opening
// a second one.
func (m *GormTransactionManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

var _ shared.TransactionManager = (*GormTransactionManager)(nil)
