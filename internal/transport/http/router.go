package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	airdropModels "vouch/internal/airdrop/models"
	airdrop "vouch/internal/airdrop/service"
	"vouch/internal/asset"
	"vouch/internal/platform/metrics"
	"vouch/internal/protocol/attestation"
	"vouch/internal/protocol/models"
	"vouch/pkg/domain"
	"vouch/pkg/platform/audit"
	adminmw "vouch/pkg/platform/middleware/admin"
	"vouch/pkg/platform/middleware/auth"
	"vouch/pkg/platform/middleware/request"
	"vouch/pkg/platform/middleware/requesttime"
)

// ConfigService manages the protocol configuration.
type ConfigService interface {
	Initialize(ctx context.Context) (*models.Config, error)
	Get(ctx context.Context) (*models.Config, error)
	Pause(ctx context.Context) (*models.Config, error)
	Unpause(ctx context.Context) (*models.Config, error)
	UpdateRateLimits(ctx context.Context, maxProofsPerDay uint32, cooldownSeconds int64) (*models.Config, error)
	TransferAdmin(ctx context.Context, newAdmin domain.PublicKey) (*models.Config, error)
}

// VerifierService manages the verifier registry.
type VerifierService interface {
	Add(ctx context.Context, id domain.PublicKey) (*models.Verifier, error)
	Remove(ctx context.Context, id domain.PublicKey) (*models.Verifier, error)
	Get(ctx context.Context, id domain.PublicKey) (*models.Verifier, error)
}

// RateLimitService manages per-wallet quota records.
type RateLimitService interface {
	Init(ctx context.Context, wallet domain.PublicKey) (*models.RateLimit, error)
	Get(ctx context.Context, wallet domain.PublicKey) (*models.RateLimit, error)
}

// CommitmentService stores identity commitments.
type CommitmentService interface {
	Create(ctx context.Context, value domain.Hash32) (*models.Commitment, error)
	Get(ctx context.Context, value domain.Hash32) (*models.Commitment, error)
}

// AttestationService records credentials against nullifiers.
type AttestationService interface {
	InitNullifier(ctx context.Context, nullifier domain.Hash32) (*models.Nullifier, error)
	GetNullifier(ctx context.Context, nullifier domain.Hash32) (*models.Nullifier, error)
	RecordAttestation(ctx context.Context, req attestation.RecordRequest) (*attestation.Receipt, error)
	VerifyDeveloperReputation(ctx context.Context, req attestation.DirectRequest) (*attestation.Receipt, error)
	VerifyWhaleTrading(ctx context.Context, req attestation.DirectRequest) (*attestation.Receipt, error)
}

// AirdropService runs reward campaigns.
type AirdropService interface {
	CreateCampaign(ctx context.Context, req airdrop.CreateCampaignRequest) (*airdropModels.Campaign, error)
	GetCampaign(ctx context.Context, id uint64) (*airdropModels.Campaign, error)
	GetRegistration(ctx context.Context, id uint64, key domain.Hash32) (*airdropModels.Registration, error)
	RegisterVerified(ctx context.Context, id uint64, nullifier domain.Hash32, payoutAddress string) (*airdropModels.Registration, error)
	RegisterOpen(ctx context.Context, id uint64, payoutAddress string) (*airdropModels.Registration, error)
	CloseRegistration(ctx context.Context, id uint64) (*airdropModels.Campaign, error)
	CompleteCampaign(ctx context.Context, id uint64) (*airdropModels.Campaign, error)
	FundCampaign(ctx context.Context, id uint64, amount uint64) (*airdropModels.Campaign, error)
	MarkDistributed(ctx context.Context, id uint64, key domain.Hash32, txRef string) (*airdropModels.Registration, error)
	Claim(ctx context.Context, id uint64, key domain.Hash32) (*airdrop.ClaimReceipt, error)
}

// AssetService reads and seeds token balances.
type AssetService interface {
	Balance(ctx context.Context, asset, owner domain.PublicKey) (*asset.Account, error)
	Deposit(ctx context.Context, asset, owner domain.PublicKey, amount uint64) (*asset.Account, error)
}

// EventLister reads recently emitted events.
type EventLister interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Services bundles the domain services behind the HTTP surface.
type Services struct {
	Config       ConfigService
	Verifiers    VerifierService
	RateLimits   RateLimitService
	Commitments  CommitmentService
	Attestations AttestationService
	Airdrops     AirdropService
	Assets       AssetService
	Events       EventLister
}

// RouterConfig carries transport settings.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Validator      auth.JWTValidator
	AdminToken     string
	RequestTimeout time.Duration
	Clock          func() time.Time
}

// Handler is the thin HTTP layer. It delegates to domain services without
// embedding business logic so transport concerns remain isolated.
type Handler struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter wires every public endpoint. Reads are anonymous; writes need a
// bearer token whose subject becomes the caller.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	h := &Handler{svc: svc, logger: cfg.Logger}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(request.RequestID)
	r.Use(chimw.RealIP)
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Latency(cfg.Metrics))
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(requesttime.WithClock(cfg.Clock))

	r.Get("/healthz", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/config", h.handleGetConfig)
		r.Get("/verifiers/{verifier}", h.handleGetVerifier)
		r.Get("/rate-limits/{wallet}", h.handleGetRateLimit)
		r.Get("/commitments/{commitment}", h.handleGetCommitment)
		r.Get("/nullifiers/{nullifier}", h.handleGetNullifier)
		r.Get("/campaigns/{campaign}", h.handleGetCampaign)
		r.Get("/campaigns/{campaign}/registrations/{key}", h.handleGetRegistration)
		r.Get("/assets/{asset}/accounts/{owner}", h.handleGetBalance)
		r.Get("/events", h.handleListEvents)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(cfg.Validator, cfg.Logger))

			r.Post("/config", h.handleInitializeConfig)
			r.Post("/config/pause", h.handlePause)
			r.Post("/config/unpause", h.handleUnpause)
			r.Put("/config/rate-limits", h.handleUpdateRateLimits)
			r.Post("/config/admin", h.handleTransferAdmin)

			r.Post("/verifiers", h.handleAddVerifier)
			r.Delete("/verifiers/{verifier}", h.handleRemoveVerifier)
			r.Post("/rate-limits/{wallet}", h.handleInitRateLimit)

			r.Post("/commitments", h.handleCreateCommitment)
			r.Post("/nullifiers", h.handleInitNullifier)
			r.Post("/attestations", h.handleRecordAttestation)
			r.Post("/proofs/developer-reputation", h.handleVerifyDeveloperReputation)
			r.Post("/proofs/whale-trading", h.handleVerifyWhaleTrading)

			r.Post("/campaigns", h.handleCreateCampaign)
			r.Post("/campaigns/{campaign}/registrations", h.handleRegisterVerified)
			r.Post("/campaigns/{campaign}/registrations/open", h.handleRegisterOpen)
			r.Post("/campaigns/{campaign}/close", h.handleCloseRegistration)
			r.Post("/campaigns/{campaign}/fund", h.handleFundCampaign)
			r.Post("/campaigns/{campaign}/complete", h.handleCompleteCampaign)
			r.Post("/campaigns/{campaign}/registrations/{key}/distributed", h.handleMarkDistributed)
			r.Post("/campaigns/{campaign}/registrations/{key}/claim", h.handleClaim)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(cfg.AdminToken, cfg.Logger))
			r.Post("/assets/{asset}/deposits", h.handleDeposit)
		})
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
