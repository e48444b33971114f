package ports

import "context"

// Tx is the store's transaction handle. Only infrastructure knows the
// concrete type.
type Tx interface{}

// UnitOfWork runs fn inside one store transaction. A non-nil error from fn
// rolls back; nil commits. Calls nested inside an open transaction join it.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the open transaction, or nil outside one.
func TxFromContext(ctx context.Context) Tx {
	if ctx == nil {
		return nil
	}
	return ctx.Value(txKey{})
}

// InTx reports whether ctx carries an open transaction.
func InTx(ctx context.Context) bool {
	return TxFromContext(ctx) != nil
}
