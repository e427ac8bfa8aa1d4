package domain

import "context"

// TxManager runs fn inside a single database transaction. Returning an error
// rolls back; returning nil commits. Repositories called with the ctx passed to
// fn join the transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
