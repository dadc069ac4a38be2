package shared

import "context"

// TransactionManager runs a function inside a single all-or-nothing
// commit boundary. Repositories and the ledger adapter pick the
// transaction up from the context, so a lending operation's state
// transition and its value movement commit or roll back together.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
