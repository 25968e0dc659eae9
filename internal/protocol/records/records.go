// Package records maps protocol records onto derived ledger addresses and
// translates storage facts into protocol errors.
package records

import (
	"context"
	"errors"

	"vouch/internal/ledger"
	"vouch/internal/protocol/models"
	"vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/sentinel"
	"vouch/pkg/requestcontext"
)

func ConfigAddress() ledger.Address {
	return ledger.Derive(models.NamespaceConfig, []byte("singleton"))
}

func VerifierAddress(id domain.PublicKey) ledger.Address {
	return ledger.Derive(models.NamespaceVerifier, id.Bytes())
}

func RateLimitAddress(wallet domain.PublicKey) ledger.Address {
	return ledger.Derive(models.NamespaceRateLimit, wallet.Bytes())
}

func NullifierAddress(n domain.Hash32) ledger.Address {
	return ledger.Derive(models.NamespaceNullifier, n.Bytes())
}

func CommitmentAddress(c domain.Hash32) ledger.Address {
	return ledger.Derive(models.NamespaceCommitment, c.Bytes())
}

// Load reads the record at addr, returning missing when nothing is stored.
func Load[T any](ctx context.Context, tx ledger.Tx, addr ledger.Address, missing error) (*T, error) {
	rec, err := ledger.Load[T](ctx, tx, addr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, missing
	}
	if err != nil {
		return nil, StoreError(err, "failed to load "+addr.Namespace())
	}
	return rec, nil
}

// Create writes a new record at addr; an existing one yields ErrAlreadyInitialized.
func Create[T any](ctx context.Context, tx ledger.Tx, addr ledger.Address, rec *T) error {
	err := ledger.Insert(ctx, tx, addr, rec)
	if errors.Is(err, sentinel.ErrConflict) {
		return models.ErrAlreadyInitialized.WithMessage(addr.Namespace() + " already initialized")
	}
	if err != nil {
		return StoreError(err, "failed to create "+addr.Namespace())
	}
	return nil
}

// Save overwrites the record at addr.
func Save[T any](ctx context.Context, tx ledger.Tx, addr ledger.Address, rec *T) error {
	if err := ledger.Save(ctx, tx, addr, rec); err != nil {
		return StoreError(err, "failed to save "+addr.Namespace())
	}
	return nil
}

// LoadConfig reads the protocol singleton.
func LoadConfig(ctx context.Context, tx ledger.Tx) (*models.Config, error) {
	return Load[models.Config](ctx, tx, ConfigAddress(), models.ErrConfigNotInitialized)
}

// StoreError passes domain errors through and classifies everything else.
func StoreError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	case errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg+": request cancelled")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, msg+": concurrent update, retry")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// Caller returns the authenticated caller or an Unauthorized error.
func Caller(ctx context.Context) (domain.PublicKey, error) {
	caller, ok := requestcontext.Caller(ctx)
	if !ok || caller.IsZero() {
		return domain.PublicKey{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	return caller, nil
}
