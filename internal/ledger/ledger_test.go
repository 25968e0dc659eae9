package ledger

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"vouch/pkg/platform/sentinel"
)

func TestDerive(t *testing.T) {
	t.Run("deterministic and namespaced", func(t *testing.T) {
		a := Derive("nullifier", []byte{1, 2, 3})
		b := Derive("nullifier", []byte{1, 2, 3})
		assert.Equal(t, a, b)
		assert.Equal(t, "nullifier", a.Namespace())
		assert.True(t, strings.HasPrefix(a.String(), "nullifier:"))
	})

	t.Run("namespace separates equal keys", func(t *testing.T) {
		assert.NotEqual(t, Derive("verifier", []byte{9}), Derive("rate_limit", []byte{9}))
	})

	t.Run("length prefix prevents concatenation collisions", func(t *testing.T) {
		a := Derive("airdrop_registration", []byte("ab"), []byte("c"))
		b := Derive("airdrop_registration", []byte("a"), []byte("bc"))
		assert.NotEqual(t, a, b)
	})

	t.Run("digest is blake2b-256 over length prefixed parts", func(t *testing.T) {
		sum := blake2b.Sum256([]byte{0, 0, 0, 2, 'a', 'b'})
		assert.Equal(t, Address("commitment:"+hex.EncodeToString(sum[:])), Derive("commitment", []byte("ab")))
	})
}

type sample struct {
	Name  string
	Count uint64
	Key   [32]byte
}

func TestOverlayAndCodec(t *testing.T) {
	ctx := context.Background()
	backend := map[Address][]byte{}
	read := func(_ context.Context, addr Address) ([]byte, error) {
		v, ok := backend[addr]
		if !ok {
			return nil, sentinel.ErrNotFound
		}
		return v, nil
	}
	ov := NewOverlay(read)
	addr := Derive("sample", []byte("one"))

	ok, err := Exists(ctx, ov, addr)
	require.NoError(t, err)
	assert.False(t, ok)

	rec := &sample{Name: "one", Count: 3}
	rec.Key[0] = 0xff
	require.NoError(t, Insert(ctx, ov, addr, rec))

	err = Insert(ctx, ov, addr, rec)
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	got, err := Load[sample](ctx, ov, addr)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	require.Empty(t, backend)
	writes := ov.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, addr, writes[0].Addr)
}

func TestDecodeCorrupt(t *testing.T) {
	var rec sample
	err := Decode([]byte{0xff, 0x00}, &rec)
	assert.ErrorIs(t, err, sentinel.ErrCorrupt)
}

func TestRetry(t *testing.T) {
	errRace := errors.New("race")
	isRace := func(err error) bool { return errors.Is(err, errRace) }

	t.Run("retries races until success", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, isRace, func() error {
			calls++
			if calls < 3 {
				return errRace
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := Retry(context.Background(), 3, isRace, func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhaustion reports conflict", func(t *testing.T) {
		err := Retry(context.Background(), 2, isRace, func() error { return errRace })
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})
}
