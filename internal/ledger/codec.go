package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"vouch/pkg/platform/sentinel"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ledger: cbor encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		MaxMapPairs: 256,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("ledger: cbor decoder: %v", err))
	}
}

// Encode serializes a record deterministically.
func Encode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Decode parses a record payload.
func Decode(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", sentinel.ErrCorrupt, err)
	}
	return nil
}

// Load reads and decodes the record at addr.
func Load[T any](ctx context.Context, tx Tx, addr Address) (*T, error) {
	raw, err := tx.Get(ctx, addr)
	if err != nil {
		return nil, err
	}
	var rec T
	if err := Decode(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", addr.Namespace(), err)
	}
	return &rec, nil
}

// Exists reports whether a record is stored at addr.
func Exists(ctx context.Context, tx Tx, addr Address) (bool, error) {
	_, err := tx.Get(ctx, addr)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Save encodes rec and writes it at addr, replacing any existing record.
func Save[T any](ctx context.Context, tx Tx, addr Address, rec *T) error {
	raw, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", addr.Namespace(), err)
	}
	return tx.Put(ctx, addr, raw)
}

// Insert encodes rec and creates it at addr; an existing record yields sentinel.ErrConflict.
func Insert[T any](ctx context.Context, tx Tx, addr Address, rec *T) error {
	raw, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", addr.Namespace(), err)
	}
	return tx.Create(ctx, addr, raw)
}
