package ledger

import (
	"context"
	"errors"

	"vouch/pkg/platform/sentinel"
)

// Write is one staged mutation.
type Write struct {
	Addr  Address
	Value []byte
}

// Overlay buffers writes over a backend read function. Reads see the
// transaction's own writes first. Backends without native transactions use it
// to stage changes and apply Writes() on commit.
type Overlay struct {
	read   func(ctx context.Context, addr Address) ([]byte, error)
	writes map[Address][]byte
	order  []Address
}

// NewOverlay creates an empty overlay on top of read.
func NewOverlay(read func(ctx context.Context, addr Address) ([]byte, error)) *Overlay {
	return &Overlay{read: read, writes: make(map[Address][]byte)}
}

func (o *Overlay) Get(ctx context.Context, addr Address) ([]byte, error) {
	if v, ok := o.writes[addr]; ok {
		return append([]byte(nil), v...), nil
	}
	return o.read(ctx, addr)
}

func (o *Overlay) Put(_ context.Context, addr Address, value []byte) error {
	if _, ok := o.writes[addr]; !ok {
		o.order = append(o.order, addr)
	}
	o.writes[addr] = append([]byte(nil), value...)
	return nil
}

func (o *Overlay) Create(ctx context.Context, addr Address, value []byte) error {
	_, err := o.Get(ctx, addr)
	if err == nil {
		return sentinel.ErrConflict
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return o.Put(ctx, addr, value)
}

// Writes returns staged mutations in first-write order.
func (o *Overlay) Writes() []Write {
	out := make([]Write, 0, len(o.order))
	for _, addr := range o.order {
		out = append(out, Write{Addr: addr, Value: o.writes[addr]})
	}
	return out
}
