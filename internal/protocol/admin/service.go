// Package admin owns the protocol configuration singleton and the
// administrative controls over it.
package admin

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"vouch/internal/ledger"
	"vouch/internal/platform/tracing"
	"vouch/internal/protocol/models"
	"vouch/internal/protocol/records"
	"vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/audit"
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

// Initialize creates the configuration once. The caller becomes both admin
// and pause authority.
func (s *Service) Initialize(ctx context.Context) (cfg *models.Config, err error) {
	ctx, span := tracing.Start(ctx, "admin.initialize")
	defer func() { tracing.End(span, err) }()

	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	cfg = &models.Config{
		Admin:           caller,
		PauseAuthority:  caller,
		MaxProofsPerDay: models.DefaultMaxProofsPerDay,
		CooldownSeconds: models.DefaultCooldownSeconds,
	}
	err = ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		return records.Create(ctx, tx, records.ConfigAddress(), cfg)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to initialize config")
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventConfigInitialized,
		"subject", caller.String(),
		"max_proofs_per_day", cfg.MaxProofsPerDay,
		"cooldown_seconds", cfg.CooldownSeconds,
	)
	return cfg, nil
}

// Get returns the current configuration.
func (s *Service) Get(ctx context.Context) (*models.Config, error) {
	var cfg *models.Config
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		var err error
		cfg, err = records.LoadConfig(ctx, tx)
		return err
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to load config")
	}
	return cfg, nil
}

// Pause halts state-changing protocol operations.
func (s *Service) Pause(ctx context.Context) (*models.Config, error) {
	return s.setPaused(ctx, true)
}

// Unpause resumes protocol operations.
func (s *Service) Unpause(ctx context.Context) (*models.Config, error) {
	return s.setPaused(ctx, false)
}

func (s *Service) setPaused(ctx context.Context, paused bool) (cfg *models.Config, err error) {
	ctx, span := tracing.Start(ctx, "admin.set_paused", attribute.Bool("paused", paused))
	defer func() { tracing.End(span, err) }()

	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err = s.mutate(ctx, func(cfg *models.Config) error {
		if cfg.PauseAuthority != caller {
			return models.ErrUnauthorized.WithMessage("only the pause authority may change the pause state")
		}
		if paused && cfg.IsPaused {
			return models.ErrAlreadyPaused
		}
		if !paused && !cfg.IsPaused {
			return models.ErrNotPaused
		}
		cfg.IsPaused = paused
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := audit.EventProtocolUnpaused
	if paused {
		event = audit.EventProtocolPaused
	}
	audit.LogAudit(ctx, s.logger, s.publisher, event, "subject", caller.String())
	return cfg, nil
}

// UpdateRateLimits replaces the per-wallet limits. max must be positive and
// cooldown non-negative.
func (s *Service) UpdateRateLimits(ctx context.Context, maxProofsPerDay uint32, cooldownSeconds int64) (cfg *models.Config, err error) {
	ctx, span := tracing.Start(ctx, "admin.update_rate_limits")
	defer func() { tracing.End(span, err) }()

	if maxProofsPerDay == 0 || cooldownSeconds < 0 {
		return nil, models.ErrInvalidRateLimit
	}
	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	var oldMax uint32
	var oldCooldown int64
	cfg, err = s.mutate(ctx, func(cfg *models.Config) error {
		if cfg.Admin != caller {
			return models.ErrUnauthorized.WithMessage("only the admin may update rate limits")
		}
		oldMax, oldCooldown = cfg.MaxProofsPerDay, cfg.CooldownSeconds
		cfg.MaxProofsPerDay = maxProofsPerDay
		cfg.CooldownSeconds = cooldownSeconds
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventRateLimitsUpdated,
		"subject", caller.String(),
		"old_max_proofs_per_day", oldMax,
		"new_max_proofs_per_day", maxProofsPerDay,
		"old_cooldown_seconds", oldCooldown,
		"new_cooldown_seconds", cooldownSeconds,
	)
	return cfg, nil
}

// TransferAdmin hands the admin role to newAdmin. The pause authority follows
// the admin role.
func (s *Service) TransferAdmin(ctx context.Context, newAdmin domain.PublicKey) (cfg *models.Config, err error) {
	ctx, span := tracing.Start(ctx, "admin.transfer_admin")
	defer func() { tracing.End(span, err) }()

	if newAdmin.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "new admin must be a valid identity")
	}
	caller, err := records.Caller(ctx)
	if err != nil {
		return nil, err
	}
	var previous domain.PublicKey
	cfg, err = s.mutate(ctx, func(cfg *models.Config) error {
		if cfg.Admin != caller {
			return models.ErrUnauthorized.WithMessage("only the admin may transfer the admin role")
		}
		previous = cfg.Admin
		cfg.Admin = newAdmin
		cfg.PauseAuthority = newAdmin
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.LogAudit(ctx, s.logger, s.publisher, audit.EventAdminTransferred,
		"subject", newAdmin.String(),
		"previous_admin", previous.String(),
	)
	return cfg, nil
}

func (s *Service) mutate(ctx context.Context, fn func(cfg *models.Config) error) (*models.Config, error) {
	var cfg *models.Config
	err := ledger.Run(ctx, s.store, func(ctx context.Context, tx ledger.Tx) error {
		loaded, err := records.LoadConfig(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(loaded); err != nil {
			return err
		}
		cfg = loaded
		return records.Save(ctx, tx, records.ConfigAddress(), loaded)
	})
	if err != nil {
		return nil, records.StoreError(err, "failed to update config")
	}
	return cfg, nil
}
