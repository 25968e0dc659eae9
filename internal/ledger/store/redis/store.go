// Package redis stores ledger records as Redis strings. Every key read inside
// a transaction is WATCHed before the read; staged writes are applied in one
// MULTI/EXEC, and a transaction whose watched keys changed is re-run.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"vouch/internal/ledger"
	"vouch/pkg/platform/sentinel"
)

const defaultKeyPrefix = "vouch:ledger:"

// Store is a ledger.Store backed by Redis.
type Store struct {
	client      *redis.Client
	keyPrefix   string
	maxAttempts int
}

type Option func(*Store)

func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.keyPrefix = prefix }
}

func WithMaxAttempts(n int) Option {
	return func(s *Store) { s.maxAttempts = n }
}

// New creates a Redis-backed ledger store. The caller owns the client.
func New(client *redis.Client, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	s := &Store{
		client:      client,
		keyPrefix:   defaultKeyPrefix,
		maxAttempts: ledger.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) key(addr ledger.Address) string {
	return s.keyPrefix + string(addr)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	return ledger.Retry(ctx, s.maxAttempts, isRace, func() error {
		return s.client.Watch(ctx, func(rtx *redis.Tx) error {
			ov := ledger.NewOverlay(func(ctx context.Context, addr ledger.Address) ([]byte, error) {
				key := s.key(addr)
				if err := rtx.Watch(ctx, key).Err(); err != nil {
					return nil, fmt.Errorf("watch %s: %w", addr.Namespace(), err)
				}
				v, err := rtx.Get(ctx, key).Bytes()
				if errors.Is(err, redis.Nil) {
					return nil, sentinel.ErrNotFound
				}
				if err != nil {
					return nil, fmt.Errorf("get %s: %w", addr.Namespace(), err)
				}
				return v, nil
			})

			if err := fn(ctx, ov); err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			writes := ov.Writes()
			if len(writes) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, w := range writes {
					pipe.Set(ctx, s.key(w.Addr), w.Value, 0)
				}
				return nil
			})
			return err
		})
	})
}

func isRace(err error) bool {
	return errors.Is(err, redis.TxFailedErr)
}

// Close is a no-op; the client is shared and closed by its owner.
func (s *Store) Close() error { return nil }
