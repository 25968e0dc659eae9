package ratelimit

import (
	"context"
	"errors"
	"log/slog"

	"vouch/internal/ledger"
	"vouch/internal/platform/tracing"
	"vouch/internal/protocol/models"
	"vouch/internal/protocol/records"
	"vouch/pkg/domain"
	"vouch/pkg/platform/audit"
	"vouch/pkg/requestcontext"
)

// Service owns per-wallet rate limit records.
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

// Init allocates the rate limit record for wallet. The daily window starts now.
func (s *Service) Init(ctx context.Context, wallet domain.PublicKey) (rec *models.RateLimit, err error) {
	ctx, span := tracing.Start(ctx, "ratelimit.init")
	defer func() { tracing.End(span, err) }()

	now := requestcontext.Now(ctx).Unix()
	rec = &models.RateLimit{Wallet: wallet, DayStart: now}
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		return records.Create(ctx, tx, records.RateLimitAddress(wallet), rec)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to initialize rate limit")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventRateLimitInitialized,
		"subject", wallet.String(),
		"day_start", now,
	)
	return rec, nil
}

// Get returns the record for wallet.
func (s *Service) Get(ctx context.Context, wallet domain.PublicKey) (*models.RateLimit, error) {
	var rec *models.RateLimit
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		rec, err = records.Load[models.RateLimit](ctx, tx, records.RateLimitAddress(wallet), models.ErrRateLimitNotInitialized)
		return err
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to load rate limit")
	}
	return rec, nil
}

// Consume runs CheckAndConsume against the stored record for wallet inside
// the caller's transaction and stages the result.
func Consume(ctx context.Context, tx ledger.Tx, cfg *models.Config, wallet domain.PublicKey, now int64) (*models.RateLimit, error) {
	addr := records.RateLimitAddress(wallet)
	rec, err := records.Load[models.RateLimit](ctx, tx, addr, models.ErrRateLimitNotInitialized)
	if err != nil {
		return nil, err
	}
	next, err := CheckAndConsume(*rec, cfg, now)
	if err != nil {
		return nil, err
	}
	if err := records.Save(ctx, tx, addr, &next); err != nil {
		return nil, err
	}
	return &next, nil
}
