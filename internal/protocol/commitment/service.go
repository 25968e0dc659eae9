// Package commitment records write-once bindings between an owner and an
// opaque commitment value.
package commitment

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

// Create binds value to the caller. A value can be bound only once.
func (s *Service) Create(ctx context.Context, value domain.Hash32) (c *models.Commitment, err error) {
	ctx, span := tracing.Start(ctx, "commitment.create")
	defer func() { tracing.End(span, err) }()

	if value.IsZero() {
		return nil, models.ErrInvalidCommitment
	}
	owner, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	c = &models.Commitment{
		Commitment: value,
		Owner:      owner,
		CreatedAt:  requestcontext.Now(ctx).Unix(),
	}
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		return records.Create(ctx, tx, records.CommitmentAddress(value), c)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to create commitment")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventCommitmentCreated,
		"subject", value.String(),
		"owner", owner.String(),
		"created_at", c.CreatedAt,
	)
	return c, nil
}

// Get returns the commitment record for value.
func (s *Service) Get(ctx context.Context, value domain.Hash32) (*models.Commitment, error) {
	var c *models.Commitment
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		c, err = records.Load[models.Commitment](ctx, tx, records.CommitmentAddress(value), models.ErrCommitmentNotFound)
		return err
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to load commitment")
	}
	return c, nil
}
