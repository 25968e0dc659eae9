// Package verifier maintains the registry of off-chain attestation signers.
package verifier

import (
	"context"
	"errors"
	"log/slog"

	"vouch/internal/ledger"
	"vouch/internal/platform/tracing"
	"vouch/internal/protocol/models"
	"vouch/internal/protocol/records"
	"vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/audit"
	"vouch/pkg/requestcontext"
)

type Service struct {
	store     ledger.Store
	publisher audit.Publisher
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func New(store ledger.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	svc := &Service{store: store}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Add authorizes id as an attestation signer. Re-adding a removed verifier
// reactivates it with a fresh attestation count. An active verifier cannot be
// added twice.
func (s *Service) Add(ctx context.Context, id domain.PublicKey) (v *models.Verifier, err error) {
	ctx, span := tracing.Start(ctx, "verifier.add")
	defer func() { tracing.End(span, err) }()

	if id.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "verifier identity is required")
	}
	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()

	var count uint32
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		cfg, err := authorize(ctx, tx, caller)
		if err != nil {
			return err
		}
		addr := records.VerifierAddress(id)
		existing, err := records.Load[models.Verifier](ctx, tx, addr, models.ErrVerifierNotFound)
		switch {
		case err == nil && existing.IsActive:
			return models.ErrAlreadyInitialized.WithMessage("verifier is already active")
		case err != nil && !errors.Is(err, models.ErrVerifierNotFound):
			return err
		}
		if cfg.VerifierCount, err = models.IncU32(cfg.VerifierCount); err != nil {
			return err
		}
		v = &models.Verifier{Verifier: id, IsActive: true, AddedAt: now}
		if err := records.Save(ctx, tx, addr, v); err != nil {
			return err
		}
		count = cfg.VerifierCount
		return records.Save(ctx, tx, records.ConfigAddress(), cfg)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to add verifier")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventVerifierAdded,
		"subject", id.String(),
		"verifier_count", count,
		"added_at", now,
	)
	return v, nil
}

// Remove deactivates id. The record is kept so its attestation history
// survives. Removing an inactive verifier leaves the registry count alone.
func (s *Service) Remove(ctx context.Context, id domain.PublicKey) (v *models.Verifier, err error) {
	ctx, span := tracing.Start(ctx, "verifier.remove")
	defer func() { tracing.End(span, err) }()

	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}

	var count uint32
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		cfg, err := authorize(ctx, tx, caller)
		if err != nil {
			return err
		}
		addr := records.VerifierAddress(id)
		v, err = records.Load[models.Verifier](ctx, tx, addr, models.ErrVerifierNotFound)
		if err != nil {
			return err
		}
		if v.IsActive {
			cfg.VerifierCount = models.SubSatU32(cfg.VerifierCount, 1)
		}
		v.IsActive = false
		count = cfg.VerifierCount
		if err := records.Save(ctx, tx, addr, v); err != nil {
			return err
		}
		return records.Save(ctx, tx, records.ConfigAddress(), cfg)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to remove verifier")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventVerifierRemoved,
		"subject", id.String(),
		"verifier_count", count,
		"attestation_count", v.AttestationCount,
	)
	return v, nil
}

// Get returns the verifier record for id.
func (s *Service) Get(ctx context.Context, id domain.PublicKey) (*models.Verifier, error) {
	var v *models.Verifier
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		v, err = records.Load[models.Verifier](ctx, tx, records.VerifierAddress(id), models.ErrVerifierNotFound)
		return err
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to load verifier")
	}
	return v, nil
}

func authorize(ctx context.Context, tx ledger.Tx, caller domain.PublicKey) (*models.Config, error) {
	cfg, err := records.LoadConfig(ctx, tx)
	if err != nil {
		return nil, err
	}
	if cfg.Admin != caller {
		return nil, models.ErrUnauthorized.WithMessage("only the admin may manage verifiers")
	}
	if err := cfg.EnsureActive(); err != nil {
		return nil, err
	}
	return cfg, nil
}
