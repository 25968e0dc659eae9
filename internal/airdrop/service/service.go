// Package service runs airdrop campaigns: creation, registration, funding,
// distribution bookkeeping and claims.
package service

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"vouch/internal/airdrop/models"
	"vouch/internal/asset"
	"vouch/internal/ledger"
	"vouch/internal/platform/metrics"
	"vouch/internal/platform/tracing"
	protocol "vouch/internal/protocol/models"
	"vouch/internal/protocol/records"
	"vouch/pkg/domain"
	"vouch/pkg/platform/audit"
	"vouch/pkg/requestcontext"
)

type Service struct {
	store     ledger.Store
	publisher audit.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
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

// CreateCampaignRequest describes a new campaign. Amounts are asset base units.
type CreateCampaignRequest struct {
	ID                   uint64
	Name                 string
	Asset                domain.PublicKey
	BaseAmount           uint64
	DevBonus             uint64
	WhaleBonus           uint64
	RegistrationDeadline int64
}

// ClaimReceipt is the result of a paid claim.
type ClaimReceipt struct {
	Registration models.Registration `json:"registration"`
	Amount       uint64              `json:"amount"`
	VaultBalance uint64              `json:"vault_balance"`
}

// CreateCampaign opens a campaign owned by the caller.
func (s *Service) CreateCampaign(ctx context.Context, req CreateCampaignRequest) (c *models.Campaign, err error) {
	ctx, span := tracing.Start(ctx, "airdrop.create_campaign", attribute.Int64("campaign_id", int64(req.ID)))
	defer func() { tracing.End(span, err) }()

	creator, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()
	switch {
	case req.Name == "" || utf8.RuneCountInString(req.Name) > models.MaxNameLength:
		return nil, models.ErrInvalidName
	case req.BaseAmount == 0:
		return nil, models.ErrInvalidAmount.WithMessage("base amount must be positive")
	case req.RegistrationDeadline <= now:
		return nil, models.ErrInvalidDeadline
	}

	c = &models.Campaign{
		ID:                   req.ID,
		Creator:              creator,
		Name:                 req.Name,
		Asset:                req.Asset,
		BaseAmount:           req.BaseAmount,
		DevBonus:             req.DevBonus,
		WhaleBonus:           req.WhaleBonus,
		RegistrationDeadline: req.RegistrationDeadline,
		Status:               models.StatusOpen,
		CreatedAt:            now,
	}
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		return records.Create(ctx, tx, models.CampaignAddress(req.ID), c)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to create campaign")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventCampaignCreated,
		"subject", campaignSubject(req.ID),
		"creator", creator.String(),
		"name", req.Name,
		"asset", req.Asset.String(),
		"base_amount", req.BaseAmount,
		"dev_bonus", req.DevBonus,
		"whale_bonus", req.WhaleBonus,
		"registration_deadline", req.RegistrationDeadline,
	)
	return c, nil
}

// GetCampaign returns the campaign record.
func (s *Service) GetCampaign(ctx context.Context, id uint64) (*models.Campaign, error) {
	var c *models.Campaign
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		c, err = loadCampaign(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to load campaign")
	}
	return c, nil
}

// GetRegistration returns the registration keyed by key in campaign id.
func (s *Service) GetRegistration(ctx context.Context, id uint64, key domain.Hash32) (*models.Registration, error) {
	var r *models.Registration
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		r, err = loadRegistration(ctx, tx, id, key)
		return err
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to load registration")
	}
	return r, nil
}

// RegisterVerified registers the holder of a consumed nullifier. The proof
// type of the credential selects the reward tier.
func (s *Service) RegisterVerified(ctx context.Context, id uint64, nullifier domain.Hash32, payoutAddress string) (*models.Registration, error) {
	return s.register(ctx, id, payoutAddress, func(ctx context.Context, tx ledger.Tx, _ domain.PublicKey) (domain.Hash32, protocol.ProofType, error) {
		n, err := records.Load[protocol.Nullifier](ctx, tx, records.NullifierAddress(nullifier), protocol.ErrNullifierNotInitialized)
		if err != nil {
			return domain.Hash32{}, protocol.ProofTypeUnset, err
		}
		if !n.IsUsed {
			return domain.Hash32{}, protocol.ProofTypeUnset, models.ErrCredentialRequired
		}
		if n.ProofType == protocol.ProofTypeUnset {
			return domain.Hash32{}, protocol.ProofTypeUnset, protocol.ErrInvalidProofType
		}
		return nullifier, n.ProofType, nil
	})
}

// RegisterOpen registers the caller without a credential. Open registrants
// receive the base amount only.
func (s *Service) RegisterOpen(ctx context.Context, id uint64, payoutAddress string) (*models.Registration, error) {
	return s.register(ctx, id, payoutAddress, func(_ context.Context, _ ledger.Tx, caller domain.PublicKey) (domain.Hash32, protocol.ProofType, error) {
		return models.OpenRegistrationKey(caller), protocol.ProofTypeUnset, nil
	})
}

type identify func(ctx context.Context, tx ledger.Tx, caller domain.PublicKey) (domain.Hash32, protocol.ProofType, error)

func (s *Service) register(ctx context.Context, id uint64, payoutAddress string, resolve identify) (reg *models.Registration, err error) {
	ctx, span := tracing.Start(ctx, "airdrop.register", attribute.Int64("campaign_id", int64(id)))
	defer func() { tracing.End(span, err) }()

	if n := len(payoutAddress); n < models.MinPayoutAddressLength || n > models.MaxPayoutAddressLength {
		return nil, models.ErrInvalidPayoutAddress
	}
	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()

	var total uint64
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		c, err := loadCampaign(ctx, tx, id)
		if err != nil {
			return err
		}
		if c.Status != models.StatusOpen {
			return models.ErrCampaignNotOpen
		}
		if now >= c.RegistrationDeadline {
			return models.ErrRegistrationClosed
		}

		key, proofType, err := resolve(ctx, tx, caller)
		if err != nil {
			return err
		}
		if err := countRegistration(c, proofType); err != nil {
			return err
		}

		reg = &models.Registration{
			CampaignID:    id,
			RegistrantKey: key,
			Registrant:    caller,
			PayoutAddress: payoutAddress,
			ProofType:     proofType,
			RegisteredAt:  now,
		}
		if err := records.Create(ctx, tx, models.RegistrationAddress(id, key), reg); err != nil {
			if errors.Is(err, protocol.ErrAlreadyInitialized) {
				return models.ErrAlreadyRegistered
			}
			return err
		}
		total = c.TotalRegistrations
		return records.Save(ctx, tx, models.CampaignAddress(id), c)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to register")
	}

	tier := tierOf(reg.ProofType)
	s.metrics.IncrementAirdropRegistrations(tier)
	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventCampaignRegistered,
		"subject", campaignSubject(id),
		"registrant_key", reg.RegistrantKey.String(),
		"tier", tier,
		"total_registrations", total,
	)
	return reg, nil
}

// CloseRegistration moves an open campaign to RegistrationClosed.
func (s *Service) CloseRegistration(ctx context.Context, id uint64) (c *models.Campaign, err error) {
	ctx, span := tracing.Start(ctx, "airdrop.close_registration", attribute.Int64("campaign_id", int64(id)))
	defer func() { tracing.End(span, err) }()

	c, err = s.advance(ctx, id, models.StatusOpen, models.StatusRegistrationClosed)
	if err != nil {
		return nil, err
	}
	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventCampaignRegistrationClosed,
		"subject", campaignSubject(id),
		"total_registrations", c.TotalRegistrations,
		"dev_registrations", c.DevRegistrations,
		"whale_registrations", c.WhaleRegistrations,
		"open_registrations", c.OpenRegistrations,
	)
	return c, nil
}

// CompleteCampaign moves a closed campaign to Completed.
func (s *Service) CompleteCampaign(ctx context.Context, id uint64) (c *models.Campaign, err error) {
	ctx, span := tracing.Start(ctx, "airdrop.complete_campaign", attribute.Int64("campaign_id", int64(id)))
	defer func() { tracing.End(span, err) }()

	c, err = s.advance(ctx, id, models.StatusRegistrationClosed, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventCampaignCompleted,
		"subject", campaignSubject(id),
		"total_claimed", c.TotalClaimed,
		"total_distributed", c.TotalDistributed,
		"completed_at", c.CompletedAt,
	)
	return c, nil
}

func (s *Service) advance(ctx context.Context, id uint64, from, to models.Status) (*models.Campaign, error) {
	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()

	var c *models.Campaign
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		c, err = loadOwnedCampaign(ctx, tx, id, caller)
		if err != nil {
			return err
		}
		if c.Status != from {
			return models.ErrInvalidCampaignStatus.WithMessage("campaign is " + c.Status.String() + ", expected " + from.String())
		}
		c.Status = to
		switch to {
		case models.StatusRegistrationClosed:
			c.ClosedAt = now
		case models.StatusCompleted:
			c.CompletedAt = now
		}
		return records.Save(ctx, tx, models.CampaignAddress(id), c)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to update campaign")
	}
	return c, nil
}

// FundCampaign moves amount of the campaign asset from the creator into the
// campaign vault.
func (s *Service) FundCampaign(ctx context.Context, id uint64, amount uint64) (c *models.Campaign, err error) {
	ctx, span := tracing.Start(ctx, "airdrop.fund_campaign", attribute.Int64("campaign_id", int64(id)))
	defer func() { tracing.End(span, err) }()

	if amount == 0 {
		return nil, models.ErrInvalidAmount
	}
	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}

	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		c, err = loadOwnedCampaign(ctx, tx, id, caller)
		if err != nil {
			return err
		}
		if c.Status == models.StatusCompleted {
			return models.ErrInvalidCampaignStatus.WithMessage("completed campaigns cannot be funded")
		}
		if c.VaultBalance, err = protocol.AddU64(c.VaultBalance, amount); err != nil {
			return err
		}
		if err := asset.Transfer(ctx, tx, c.Asset, caller, models.VaultOwner(id), amount); err != nil {
			return err
		}
		return records.Save(ctx, tx, models.CampaignAddress(id), c)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to fund campaign")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventCampaignFunded,
		"subject", campaignSubject(id),
		"amount", amount,
		"vault_balance", c.VaultBalance,
	)
	return c, nil
}

// MarkDistributed records that a registration was paid through an external
// channel. txRef identifies that payout.
func (s *Service) MarkDistributed(ctx context.Context, id uint64, key domain.Hash32, txRef string) (reg *models.Registration, err error) {
	ctx, span := tracing.Start(ctx, "airdrop.mark_distributed", attribute.Int64("campaign_id", int64(id)))
	defer func() { tracing.End(span, err) }()

	if len(txRef) == 0 || len(txRef) > models.MaxTxRefLength {
		return nil, models.ErrInvalidTxRef
	}
	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()

	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		c, err := loadOwnedCampaign(ctx, tx, id, caller)
		if err != nil {
			return err
		}
		reg, err = loadRegistration(ctx, tx, id, key)
		if err != nil {
			return err
		}
		if reg.IsDistributed {
			return models.ErrAlreadyDistributed
		}
		if reg.IsClaimed {
			return models.ErrAlreadyClaimed
		}
		if c.TotalDistributed, err = protocol.AddU64(c.TotalDistributed, 1); err != nil {
			return err
		}
		reg.IsDistributed = true
		reg.DistributionTxRef = txRef
		reg.DistributedAt = now
		if err := records.Save(ctx, tx, models.RegistrationAddress(id, key), reg); err != nil {
			return err
		}
		return records.Save(ctx, tx, models.CampaignAddress(id), c)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to mark distribution")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventCampaignDistributed,
		"subject", campaignSubject(id),
		"registrant_key", key.String(),
		"tx_ref", txRef,
		"distributed_at", now,
	)
	return reg, nil
}

// Claim pays the caller's reward from the campaign vault. The transfer and
// the bookkeeping commit together or not at all.
func (s *Service) Claim(ctx context.Context, id uint64, key domain.Hash32) (receipt *ClaimReceipt, err error) {
	ctx, span := tracing.Start(ctx, "airdrop.claim", attribute.Int64("campaign_id", int64(id)))
	defer func() { tracing.End(span, err) }()

	claimer, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx).Unix()

	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		c, err := loadCampaign(ctx, tx, id)
		if err != nil {
			return err
		}
		reg, err := loadRegistration(ctx, tx, id, key)
		if err != nil {
			return err
		}
		if reg.Registrant != claimer {
			return protocol.ErrUnauthorized.WithMessage("only the registrant may claim")
		}
		if reg.IsClaimed {
			return models.ErrAlreadyClaimed
		}
		if reg.IsDistributed {
			return models.ErrAlreadyDistributed
		}

		amount, err := models.Reward(c, reg.ProofType)
		if err != nil {
			return err
		}
		vault := models.VaultOwner(id)
		held, err := asset.Load(ctx, tx, c.Asset, vault)
		if err != nil {
			return err
		}
		if held.Amount < amount {
			return asset.ErrInsufficientFunds.WithMessage("campaign vault cannot cover the claim")
		}
		if err := asset.Transfer(ctx, tx, c.Asset, vault, claimer, amount); err != nil {
			return err
		}

		reg.IsClaimed = true
		reg.ClaimedAt = now
		reg.ClaimedAmount = amount
		c.VaultBalance = protocol.SubSatU64(c.VaultBalance, amount)
		if c.TotalClaimed, err = protocol.AddU64(c.TotalClaimed, amount); err != nil {
			return err
		}
		if err := records.Save(ctx, tx, models.RegistrationAddress(id, key), reg); err != nil {
			return err
		}
		if err := records.Save(ctx, tx, models.CampaignAddress(id), c); err != nil {
			return err
		}
		receipt = &ClaimReceipt{Registration: *reg, Amount: amount, VaultBalance: c.VaultBalance}
		return nil
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to claim")
	}

	s.metrics.ObserveAirdropClaim(receipt.Amount)
	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventCampaignClaimed,
		"subject", campaignSubject(id),
		"registrant_key", key.String(),
		"claimer", claimer.String(),
		"amount", receipt.Amount,
		"proof_type", receipt.Registration.ProofType.String(),
		"claimed_at", now,
	)
	return receipt, nil
}
