// Package ledger is the durable keyed record store every protocol operation
// runs against. Records live at addresses derived from a namespace and a
// natural key; an operation reads and writes them inside one transaction and
// either all of its writes land or none do.
package ledger

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	txctx "vouch/pkg/platform/tx"
)

// Address is the storage key of one record.
type Address string

// Derive computes the deterministic address of a record: the namespace and
// the BLAKE2b-256 digest of its key parts. Each part is length prefixed before
// hashing so distinct tuples never collide by concatenation.
func Derive(namespace string, parts ...[]byte) Address {
	var buf []byte
	for _, p := range parts {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(p)))
		buf = append(buf, p...)
	}
	sum := blake2b.Sum256(buf)
	return Address(namespace + ":" + hex.EncodeToString(sum[:]))
}

// Namespace returns the namespace prefix of the address.
func (a Address) Namespace() string {
	ns, _, _ := strings.Cut(string(a), ":")
	return ns
}

func (a Address) String() string { return string(a) }

// Tx is the view of the ledger inside one transaction.
type Tx interface {
	// Get returns the stored payload or sentinel.ErrNotFound.
	Get(ctx context.Context, addr Address) ([]byte, error)
	// Put creates or overwrites the record at addr.
	Put(ctx context.Context, addr Address, value []byte) error
	// Create writes a new record and fails with sentinel.ErrConflict if one exists.
	Create(ctx context.Context, addr Address, value []byte) error
}

// Store runs transactions. Implementations guarantee that fn's writes are
// applied atomically, and only when fn returns nil. Optimistic backends may
// call fn more than once; fn must not have side effects outside tx.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

// Run executes fn in a transaction. A transaction already carried by ctx is
// joined instead of opening a nested one.
func Run(ctx context.Context, store Store, fn func(ctx context.Context, tx Tx) error) error {
	if open, ok := txctx.From[Tx](ctx); ok {
		return fn(ctx, open)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := txctx.Bound(ctx)
	defer cancel()
	return store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return fn(txctx.WithTx[Tx](ctx, tx), tx)
	})
}
