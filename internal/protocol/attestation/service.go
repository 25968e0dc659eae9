// Package attestation records credentials: it allocates nullifiers and
// consumes them once an authorized verifier's attestation checks out.
package attestation

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"vouch/internal/ledger"
	"vouch/internal/platform/metrics"
	"vouch/internal/platform/tracing"
	"vouch/internal/protocol/models"
	"vouch/internal/protocol/ratelimit"
	"vouch/internal/protocol/records"
	"vouch/internal/protocol/signature"
	"vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/audit"
	"vouch/pkg/requestcontext"
)

type Service struct {
	store        ledger.Store
	publisher    audit.Publisher
	logger       *slog.Logger
	metrics      *metrics.Metrics
	signatures   *signature.Verifier
	directProofs bool
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithSignatureOracle replaces the default Ed25519 oracle.
func WithSignatureOracle(oracle signature.Oracle) Option {
	return func(s *Service) {
		s.signatures = signature.NewVerifier(oracle)
	}
}

// WithDirectProofs enables the legacy direct verification operations. They
// trust the submitter's proof bytes, so they are off unless a deployment
// opts in.
func WithDirectProofs(enabled bool) Option {
	return func(s *Service) {
		s.directProofs = enabled
	}
}

func New(store ledger.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("ledger store is required")
	}
	svc := &Service{
		store:      store,
		signatures: signature.NewVerifier(nil),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// InitNullifier allocates an unused nullifier record. Allocation is kept
// separate from consumption so the two never happen in one step.
func (s *Service) InitNullifier(ctx context.Context, nullifier domain.Hash32) (n *models.Nullifier, err error) {
	ctx, span := tracing.Start(ctx, "attestation.init_nullifier")
	defer func() { tracing.End(span, err) }()

	if _, err := records.Caller(ctx); err != nil {
		return nil, err
	}
	n = &models.Nullifier{Nullifier: nullifier, ProofType: models.ProofTypeUnset}
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		return records.Create(ctx, tx, records.NullifierAddress(nullifier), n)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to initialize nullifier")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventNullifierInitialized,
		"subject", nullifier.String(),
	)
	return n, nil
}

// GetNullifier returns the nullifier record.
func (s *Service) GetNullifier(ctx context.Context, nullifier domain.Hash32) (*models.Nullifier, error) {
	var n *models.Nullifier
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		n, err = records.Load[models.Nullifier](ctx, tx, records.NullifierAddress(nullifier), models.ErrNullifierNotInitialized)
		return err
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to load nullifier")
	}
	return n, nil
}

// RecordAttestation commits one credential. The checks run in a fixed order:
// pause state, verifier authorization, recipient rate limit, signature
// binding, nullifier freshness, proof type. Any failure commits nothing.
func (s *Service) RecordAttestation(ctx context.Context, req RecordRequest) (receipt *Receipt, err error) {
	ctx, span := tracing.Start(ctx, "attestation.record",
		attribute.String("nullifier", req.Nullifier.String()),
		attribute.Int("proof_type_code", int(req.ProofTypeCode)),
	)
	defer func() { tracing.End(span, err) }()

	recipient, err := s.recipient(ctx, req.Recipient)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()

	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		cfg, err := records.LoadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if err := cfg.EnsureActive(); err != nil {
			return err
		}

		verifierAddr := records.VerifierAddress(req.Verifier)
		v, err := records.Load[models.Verifier](ctx, tx, verifierAddr, models.ErrVerifierNotFound)
		if err != nil {
			return err
		}
		if !v.IsActive {
			return models.ErrVerifierNotAuthorized
		}

		rl, err := ratelimit.Consume(ctx, tx, cfg, recipient, now)
		if err != nil {
			return err
		}

		msg := signature.Message(req.ProofTypeCode, req.Nullifier, req.AttestationHash)
		if err := s.signatures.Bind(req.Proof, req.Verifier, msg, req.Signature); err != nil {
			return err
		}

		n, err := loadUnused(ctx, tx, req.Nullifier)
		if err != nil {
			return err
		}
		proofType, err := models.ParseProofType(req.ProofTypeCode)
		if err != nil {
			return err
		}

		n.IsUsed = true
		n.UsedAt = now
		n.ProofType = proofType
		if v.AttestationCount, err = models.AddU64(v.AttestationCount, 1); err != nil {
			return err
		}
		if cfg.TotalProofsVerified, err = models.AddU64(cfg.TotalProofsVerified, 1); err != nil {
			return err
		}
		if err := records.Save(ctx, tx, records.NullifierAddress(req.Nullifier), n); err != nil {
			return err
		}
		if err := records.Save(ctx, tx, verifierAddr, v); err != nil {
			return err
		}
		if err := records.Save(ctx, tx, records.ConfigAddress(), cfg); err != nil {
			return err
		}

		hash, verifier := req.AttestationHash, req.Verifier
		receipt = &Receipt{
			Nullifier:       *n,
			AttestationHash: &hash,
			Verifier:        &verifier,
			Recipient:       recipient,
			RateLimit:       *rl,
			TotalVerified:   cfg.TotalProofsVerified,
		}
		return nil
	})
	if err != nil {
		err = records.StoreError(err, "failed to record attestation")
		s.reject(ctx, err, req.Nullifier, recipient)
		return nil, err
	}

	s.metrics.IncrementAttestationsRecorded(receipt.Nullifier.ProofType.String())
	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventAttestationRecorded,
		"subject", req.Nullifier.String(),
		"attestation_hash", req.AttestationHash.String(),
		"verifier", req.Verifier.String(),
		"proof_type", receipt.Nullifier.ProofType.String(),
		"recipient", recipient.String(),
		"signature", req.Signature.String(),
		"used_at", now,
	)
	return receipt, nil
}

// VerifyDeveloperReputation is the legacy direct path for developer
// reputation proofs. minTVL is recorded with the event.
func (s *Service) VerifyDeveloperReputation(ctx context.Context, req DirectRequest) (*Receipt, error) {
	return s.verifyDirect(ctx, req, models.ProofTypeDeveloperReputation)
}

// VerifyWhaleTrading is the legacy direct path for whale trading proofs.
func (s *Service) VerifyWhaleTrading(ctx context.Context, req DirectRequest) (*Receipt, error) {
	return s.verifyDirect(ctx, req, models.ProofTypeWhaleTrading)
}

func (s *Service) verifyDirect(ctx context.Context, req DirectRequest, proofType models.ProofType) (receipt *Receipt, err error) {
	ctx, span := tracing.Start(ctx, "attestation.verify_direct",
		attribute.String("proof_type", proofType.String()),
	)
	defer func() { tracing.End(span, err) }()

	if !s.directProofs {
		return nil, models.ErrDirectVerificationDisabled
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	recipient, err := s.recipient(ctx, req.Recipient)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()

	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		cfg, err := records.LoadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if err := cfg.EnsureActive(); err != nil {
			return err
		}
		rl, err := ratelimit.Consume(ctx, tx, cfg, recipient, now)
		if err != nil {
			return err
		}
		n, err := loadUnused(ctx, tx, req.Nullifier)
		if err != nil {
			return err
		}

		n.IsUsed = true
		n.UsedAt = now
		n.ProofType = proofType
		if cfg.TotalProofsVerified, err = models.AddU64(cfg.TotalProofsVerified, 1); err != nil {
			return err
		}
		if err := records.Save(ctx, tx, records.NullifierAddress(req.Nullifier), n); err != nil {
			return err
		}
		if err := records.Save(ctx, tx, records.ConfigAddress(), cfg); err != nil {
			return err
		}
		receipt = &Receipt{
			Nullifier:     *n,
			Recipient:     recipient,
			RateLimit:     *rl,
			TotalVerified: cfg.TotalProofsVerified,
		}
		return nil
	})
	if err != nil {
		err = records.StoreError(err, "failed to verify proof")
		s.reject(ctx, err, req.Nullifier, recipient)
		return nil, err
	}

	s.metrics.IncrementProofsVerified(proofType.String())
	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventProofVerified,
		"subject", req.Nullifier.String(),
		"proof_type", proofType.String(),
		"min_threshold", req.MinThreshold,
		"recipient", recipient.String(),
		"used_at", now,
	)
	return receipt, nil
}

func (s *Service) recipient(ctx context.Context, requested domain.PublicKey) (domain.PublicKey, error) {
	caller, err := records.Caller(ctx)
	if err != nil {
		return domain.PublicKey{}, err
	}
	if requested.IsZero() {
		return caller, nil
	}
	return requested, nil
}

// reject records protocol rejections. Infrastructure failures are only logged.
func (s *Service) reject(ctx context.Context, err error, nullifier domain.Hash32, recipient domain.PublicKey) {
	reason := dErrors.ReasonOf(err)
	if reason == "" {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "credential operation failed", "error", err, "nullifier", nullifier.String())
		}
		return
	}
	s.metrics.IncrementAttestationsRejected(reason)
	if errors.Is(err, models.ErrRateLimitCooldown) || errors.Is(err, models.ErrDailyRateLimitExceeded) {
		s.metrics.IncrementRateLimitRejections(reason)
	}
	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventAttestationRejected,
		"subject", nullifier.String(),
		"recipient", recipient.String(),
		"reason", reason,
	)
}

func loadUnused(ctx context.Context, tx ledger.Tx, nullifier domain.Hash32) (*models.Nullifier, error) {
	n, err := records.Load[models.Nullifier](ctx, tx, records.NullifierAddress(nullifier), models.ErrNullifierNotInitialized)
	if err != nil {
		return nil, err
	}
	if n.IsUsed {
		return nil, models.ErrNullifierAlreadyUsed
	}
	return n, nil
}
