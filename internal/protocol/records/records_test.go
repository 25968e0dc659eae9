package records

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouch/internal/ledger"
	"vouch/internal/ledger/store/memory"
	"vouch/internal/protocol/models"
	"vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

func TestAddressesAreNamespaced(t *testing.T) {
	var key domain.PublicKey
	key[0] = 7
	var h domain.Hash32
	h[0] = 7

	assert.Equal(t, models.NamespaceVerifier, VerifierAddress(key).Namespace())
	assert.Equal(t, models.NamespaceRateLimit, RateLimitAddress(key).Namespace())
	assert.NotEqual(t, NullifierAddress(h), CommitmentAddress(h), "same bytes in different namespaces never collide")
}

func TestLoadAndCreate(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	var n domain.Hash32
	n[31] = 1
	addr := NullifierAddress(n)

	err := ledger.Run(ctx, store, func(ctx context.Context, tx ledger.Tx) error {
		_, err := Load[models.Nullifier](ctx, tx, addr, models.ErrNullifierNotInitialized)
		return err
	})
	assert.True(t, errors.Is(err, models.ErrNullifierNotInitialized))

	rec := &models.Nullifier{Nullifier: n}
	require.NoError(t, ledger.Run(ctx, store, func(ctx context.Context, tx ledger.Tx) error {
		return Create(ctx, tx, addr, rec)
	}))

	err = ledger.Run(ctx, store, func(ctx context.Context, tx ledger.Tx) error {
		return Create(ctx, tx, addr, rec)
	})
	assert.True(t, errors.Is(err, models.ErrAlreadyInitialized))
}

func TestStoreError(t *testing.T) {
	assert.Nil(t, StoreError(nil, "x"))
	assert.Equal(t, models.ErrOverflow, StoreError(models.ErrOverflow, "x"), "domain errors pass through")
	assert.Equal(t, dErrors.CodeTimeout, dErrors.CodeOf(StoreError(context.DeadlineExceeded, "x")))
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(StoreError(fmt.Errorf("retry: %w", sentinel.ErrConflict), "x")))
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(StoreError(errors.New("disk"), "x")))
}

func TestCaller(t *testing.T) {
	_, err := Caller(context.Background())
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	var key domain.PublicKey
	key[0] = 1
	got, err := Caller(requestcontext.WithCaller(context.Background(), key))
	require.NoError(t, err)
	assert.Equal(t, key, got)
}
