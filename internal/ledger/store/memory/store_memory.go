package memory

import (
	"context"
	"sync"

	"vouch/internal/ledger"
	"vouch/pkg/platform/sentinel"
)

// InMemoryStore keeps records in a map. Transactions are serialized by a
// single mutex and their writes staged until fn returns nil.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[ledger.Address][]byte
}

func New() *InMemoryStore {
	return &InMemoryStore{records: make(map[ledger.Address][]byte)}
}

func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	ov := ledger.NewOverlay(s.read)
	if err := fn(ctx, ov); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, w := range ov.Writes() {
		s.records[w.Addr] = w.Value
	}
	return nil
}

// read runs with s.mu held by RunInTx.
func (s *InMemoryStore) read(_ context.Context, addr ledger.Address) ([]byte, error) {
	v, ok := s.records[addr]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *InMemoryStore) Close() error { return nil }
