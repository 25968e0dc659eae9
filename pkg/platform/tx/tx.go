package tx

import (
	"context"
	"time"
)

// DefaultTimeout bounds a transaction whose caller set no deadline.
const DefaultTimeout = 5 * time.Second

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores an open transaction in context so nested units of work join it.
func WithTx[T any](ctx context.Context, tx T) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a transaction of type T from context if present.
func From[T any](ctx context.Context) (T, bool) {
	tx, ok := ctx.Value(txKey).(T)
	return tx, ok
}

// Bound applies DefaultTimeout when ctx has no deadline.
func Bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, DefaultTimeout)
}
