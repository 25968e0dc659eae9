package tx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{ id int }

func TestWithTxRoundTrip(t *testing.T) {
	ctx := WithTx(context.Background(), &fakeTx{id: 7})

	got, ok := From[*fakeTx](ctx)
	require.True(t, ok)
	assert.Equal(t, 7, got.id)

	_, ok = From[string](ctx)
	assert.False(t, ok)
}

func TestBound(t *testing.T) {
	t.Run("adds default deadline", func(t *testing.T) {
		ctx, cancel := Bound(context.Background())
		defer cancel()
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(DefaultTimeout), deadline, time.Second)
	})

	t.Run("keeps caller deadline", func(t *testing.T) {
		parent, cancelParent := context.WithTimeout(context.Background(), time.Minute)
		defer cancelParent()
		ctx, cancel := Bound(parent)
		defer cancel()
		want, _ := parent.Deadline()
		got, _ := ctx.Deadline()
		assert.Equal(t, want, got)
	})
}
