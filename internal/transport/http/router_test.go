package httptransport

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	airdrop "vouch/internal/airdrop/service"
	"vouch/internal/asset"
	jwttoken "vouch/internal/jwt_token"
	"vouch/internal/ledger/store/memory"
	"vouch/internal/platform/logger"
	"vouch/internal/platform/metrics"
	"vouch/internal/protocol/admin"
	"vouch/internal/protocol/attestation"
	"vouch/internal/protocol/commitment"
	"vouch/internal/protocol/ratelimit"
	"vouch/internal/protocol/signature"
	"vouch/internal/protocol/verifier"
	"vouch/pkg/domain"
	"vouch/pkg/platform/audit"
	auditmemory "vouch/pkg/platform/audit/store/memory"
	adminmw "vouch/pkg/platform/middleware/admin"
	"vouch/pkg/testutil"
)

// =============================================================================
// HTTP Round-Trip Test Suite
// =============================================================================
// Justification for unit tests: the router owns authentication, path and body
// decoding, and the mapping of protocol errors onto status codes. These tests
// drive the real services through the router so wire formats are exercised
// end to end.

const (
	adminToken = "operator-token"
	payout     = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
)

var clock = time.Unix(1_700_000_000, 0)

type RouterSuite struct {
	suite.Suite
	router     http.Handler
	jwt        *jwttoken.JWTService
	events     *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	adminKey   domain.PublicKey
	wallet     domain.PublicKey
	verifier   domain.PublicKey
	signingKey ed25519.PrivateKey
	mint       domain.PublicKey
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

// syncPublisher delivers straight to the event store.
type syncPublisher struct {
	*auditmemory.InMemoryStore
}

func (p syncPublisher) Emit(ctx context.Context, e audit.Event) error {
	return p.Append(ctx, e)
}

func (s *RouterSuite) SetupTest() {
	store := memory.New()
	s.events = auditmemory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	pub := syncPublisher{s.events}

	adminSvc, err := admin.New(store, admin.WithAuditPublisher(pub))
	s.Require().NoError(err)
	verifierSvc, err := verifier.New(store, verifier.WithAuditPublisher(pub))
	s.Require().NoError(err)
	limitSvc, err := ratelimit.New(store, ratelimit.WithAuditPublisher(pub))
	s.Require().NoError(err)
	commitSvc, err := commitment.New(store, commitment.WithAuditPublisher(pub))
	s.Require().NoError(err)
	attestSvc, err := attestation.New(store, attestation.WithAuditPublisher(pub), attestation.WithMetrics(s.metrics))
	s.Require().NoError(err)
	airdropSvc, err := airdrop.New(store, airdrop.WithAuditPublisher(pub), airdrop.WithMetrics(s.metrics))
	s.Require().NoError(err)
	assetSvc, err := asset.New(store, asset.WithAuditPublisher(pub))
	s.Require().NoError(err)

	s.jwt = jwttoken.NewJWTService("test-key", "vouch-test")
	s.router = NewRouter(Services{
		Config:       adminSvc,
		Verifiers:    verifierSvc,
		RateLimits:   limitSvc,
		Commitments:  commitSvc,
		Attestations: attestSvc,
		Airdrops:     airdropSvc,
		Assets:       assetSvc,
		Events:       s.events,
	}, RouterConfig{
		Logger:     logger.Discard(),
		Metrics:    s.metrics,
		Validator:  jwttoken.NewJWTServiceAdapter(s.jwt),
		AdminToken: adminToken,
		Clock:      func() time.Time { return clock },
	})

	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 0x07
	s.signingKey = ed25519.NewKeyFromSeed(seed)
	s.verifier, err = domain.PublicKeyFromBytes(s.signingKey.Public().(ed25519.PublicKey))
	s.Require().NoError(err)
	s.adminKey = domain.PublicKey{0xAD, 0x01}
	s.wallet = domain.PublicKey{0x3A, 0x01}
	s.mint = domain.PublicKey{0x4D, 0x01}
}

func (s *RouterSuite) do(method, path string, caller *domain.PublicKey, body any) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), method, path, body)
	if caller != nil {
		token, err := s.jwt.GenerateAccessToken(*caller, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return testutil.DoRequest(s.router, req)
}

func (s *RouterSuite) expect(rr *httptest.ResponseRecorder, status int) {
	s.Require().Equal(status, rr.Code, rr.Body.String())
}

func (s *RouterSuite) expectError(rr *httptest.ResponseRecorder, status int, reason string) {
	s.Require().Equal(status, rr.Code, rr.Body.String())
	s.Equal(reason, testutil.UnmarshalErrorResponse(s.T(), rr)["error"])
}

// bootstrap initializes config, a verifier and the wallet's rate limit.
func (s *RouterSuite) bootstrap() {
	s.expect(s.do(http.MethodPost, "/v1/config", &s.adminKey, nil), http.StatusCreated)
	s.expect(s.do(http.MethodPost, "/v1/verifiers", &s.adminKey, map[string]string{"verifier": s.verifier.String()}), http.StatusCreated)
	s.expect(s.do(http.MethodPost, "/v1/rate-limits/"+s.wallet.String(), &s.wallet, nil), http.StatusCreated)
}

func (s *RouterSuite) attest(nullifier domain.Hash32, code uint8) *httptest.ResponseRecorder {
	hash := domain.Hash32{0x99, code}
	msg := signature.Message(code, nullifier, hash)
	var sig domain.Signature
	copy(sig[:], ed25519.Sign(s.signingKey, msg))
	return s.do(http.MethodPost, "/v1/attestations", &s.wallet, map[string]any{
		"attestation_hash": hash.String(),
		"proof_type":       code,
		"nullifier":        nullifier.String(),
		"signature":        sig.String(),
		"verifier":         s.verifier.String(),
		"proof": map[string]any{
			"public_key": s.verifier.String(),
			"message":    msg,
			"signature":  sig.String(),
		},
	})
}

func (s *RouterSuite) TestHealth() {
	s.expect(s.do(http.MethodGet, "/healthz", nil, nil), http.StatusOK)
}

func (s *RouterSuite) TestWritesRequireToken() {
	rr := s.do(http.MethodPost, "/v1/config", nil, nil)
	s.expectError(rr, http.StatusUnauthorized, "unauthorized")

	req := testutil.NewRequest(s.T(), http.MethodPost, "/v1/config")
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	s.expect(testutil.DoRequest(s.router, req), http.StatusUnauthorized)
}

func (s *RouterSuite) TestConfigLifecycle() {
	s.expectError(s.do(http.MethodGet, "/v1/config", nil, nil), http.StatusNotFound, "config_not_initialized")
	s.bootstrap()

	cfg := testutil.UnmarshalResponse[map[string]any](s.T(), s.do(http.MethodGet, "/v1/config", nil, nil))
	s.Equal(s.adminKey.String(), (*cfg)["admin"])
	s.Equal(float64(1), (*cfg)["verifier_count"])

	s.expectError(s.do(http.MethodPost, "/v1/config/pause", &s.wallet, nil), http.StatusForbidden, "unauthorized")
	s.expect(s.do(http.MethodPost, "/v1/config/pause", &s.adminKey, nil), http.StatusOK)
	s.expectError(s.do(http.MethodPost, "/v1/config/pause", &s.adminKey, nil), http.StatusConflict, "already_paused")
	s.expect(s.do(http.MethodPost, "/v1/config/unpause", &s.adminKey, nil), http.StatusOK)

	s.expectError(s.do(http.MethodPut, "/v1/config/rate-limits", &s.adminKey,
		map[string]any{"max_proofs_per_day": 0, "cooldown_seconds": 1}), http.StatusBadRequest, "invalid_rate_limit")
	rr := s.do(http.MethodPut, "/v1/config/rate-limits", &s.adminKey,
		map[string]any{"max_proofs_per_day": 3, "cooldown_seconds": 0})
	s.expect(rr, http.StatusOK)
	s.Equal(float64(3), (*testutil.UnmarshalResponse[map[string]any](s.T(), rr))["max_proofs_per_day"])

	s.expectError(s.do(http.MethodPut, "/v1/config/rate-limits", &s.adminKey,
		map[string]any{"max_proofs_per_day": 3, "unknown": true}), http.StatusBadRequest, "bad_request")
}

func (s *RouterSuite) TestAttestationRoundTrip() {
	s.bootstrap()
	nullifier := domain.Hash32{0xAB, 0xCD}
	s.expect(s.do(http.MethodPost, "/v1/nullifiers", &s.wallet, map[string]string{"nullifier": nullifier.String()}), http.StatusCreated)

	rr := s.attest(nullifier, 1)
	s.expect(rr, http.StatusCreated)
	receipt := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	n := (*receipt)["nullifier"].(map[string]any)
	s.Equal(true, n["is_used"])
	s.Equal("developer_reputation", n["proof_type"])
	s.Equal(float64(1), (*receipt)["total_proofs_verified"])

	s.expectError(s.attest(nullifier, 1), http.StatusTooManyRequests, "rate_limit_cooldown")

	got := testutil.UnmarshalResponse[map[string]any](s.T(), s.do(http.MethodGet, "/v1/nullifiers/"+nullifier.String(), nil, nil))
	s.Equal(true, (*got)["is_used"])
	s.Equal(1.0, promtest.ToFloat64(s.metrics.AttestationsRecorded.WithLabelValues("developer_reputation")))
}

func (s *RouterSuite) TestDirectProofsDisabledByDefault() {
	s.bootstrap()
	rr := s.do(http.MethodPost, "/v1/proofs/whale-trading", &s.wallet, map[string]any{
		"nullifier":     domain.Hash32{0x01}.String(),
		"proof":         []byte{1, 2, 3},
		"public_inputs": []byte{4},
		"min_threshold": 10,
	})
	s.expectError(rr, http.StatusForbidden, "direct_verification_disabled")
}

func (s *RouterSuite) TestPathValidation() {
	s.expectError(s.do(http.MethodGet, "/v1/campaigns/abc", nil, nil), http.StatusBadRequest, "invalid_input")
	s.expectError(s.do(http.MethodGet, "/v1/campaigns/99", nil, nil), http.StatusNotFound, "campaign_not_found")
	s.expectError(s.do(http.MethodGet, "/v1/verifiers/0OIl", nil, nil), http.StatusBadRequest, "invalid_input")
	s.expectError(s.do(http.MethodGet, "/v1/commitments/zz", nil, nil), http.StatusBadRequest, "invalid_input")
	s.expectError(s.do(http.MethodGet, "/v1/events?limit=0", nil, nil), http.StatusBadRequest, "invalid_input")
}

func (s *RouterSuite) TestCommitments() {
	value := domain.Hash32{0xC0, 0xFF, 0xEE}
	s.expect(s.do(http.MethodPost, "/v1/commitments", &s.wallet, map[string]string{"commitment": value.String()}), http.StatusCreated)
	s.expectError(s.do(http.MethodPost, "/v1/commitments", &s.wallet, map[string]string{"commitment": value.String()}),
		http.StatusConflict, "already_initialized")

	got := testutil.UnmarshalResponse[map[string]any](s.T(), s.do(http.MethodGet, "/v1/commitments/"+value.String(), nil, nil))
	s.Equal(s.wallet.String(), (*got)["owner"])
}

func (s *RouterSuite) TestCampaignRoundTrip() {
	s.bootstrap()
	nullifier := domain.Hash32{0x0D, 0xE0}
	s.expect(s.do(http.MethodPost, "/v1/nullifiers", &s.wallet, map[string]string{"nullifier": nullifier.String()}), http.StatusCreated)
	s.expect(s.attest(nullifier, 1), http.StatusCreated)

	creator := s.adminKey
	s.expect(s.do(http.MethodPost, "/v1/campaigns", &creator, map[string]any{
		"id":                    7,
		"name":                  "genesis",
		"asset":                 s.mint.String(),
		"base_amount":           100,
		"dev_bonus":             50,
		"whale_bonus":           200,
		"registration_deadline": clock.Unix() + 3600,
	}), http.StatusCreated)

	rr := s.do(http.MethodPost, "/v1/campaigns/7/registrations", &s.wallet, map[string]string{
		"nullifier":      nullifier.String(),
		"payout_address": payout,
	})
	s.expect(rr, http.StatusCreated)

	deposit := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/assets/"+s.mint.String()+"/deposits",
		map[string]any{"owner": creator.String(), "amount": 1000})
	s.expect(testutil.DoRequest(s.router, deposit), http.StatusUnauthorized)
	deposit = testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/assets/"+s.mint.String()+"/deposits",
		map[string]any{"owner": creator.String(), "amount": 1000})
	deposit.Header.Set(adminmw.HeaderAdminToken, adminToken)
	s.expect(testutil.DoRequest(s.router, deposit), http.StatusOK)

	s.expect(s.do(http.MethodPost, "/v1/campaigns/7/fund", &creator, map[string]any{"amount": 1000}), http.StatusOK)

	claimPath := fmt.Sprintf("/v1/campaigns/7/registrations/%s/claim", nullifier)
	s.expectError(s.do(http.MethodPost, claimPath, &creator, nil), http.StatusForbidden, "unauthorized")
	rr = s.do(http.MethodPost, claimPath, &s.wallet, nil)
	s.expect(rr, http.StatusOK)
	s.Equal(float64(150), (*testutil.UnmarshalResponse[map[string]any](s.T(), rr))["amount"])
	s.expectError(s.do(http.MethodPost, claimPath, &s.wallet, nil), http.StatusConflict, "already_claimed")

	bal := testutil.UnmarshalResponse[map[string]any](s.T(),
		s.do(http.MethodGet, "/v1/assets/"+s.mint.String()+"/accounts/"+s.wallet.String(), nil, nil))
	s.Equal(float64(150), (*bal)["amount"])

	s.expect(s.do(http.MethodPost, "/v1/campaigns/7/close", &creator, nil), http.StatusOK)
	s.expect(s.do(http.MethodPost, "/v1/campaigns/7/complete", &creator, nil), http.StatusOK)
	campaign := testutil.UnmarshalResponse[map[string]any](s.T(), s.do(http.MethodGet, "/v1/campaigns/7", nil, nil))
	s.Equal("completed", (*campaign)["status"])
	s.Equal(float64(850), (*campaign)["vault_balance"])

	events := testutil.UnmarshalResponse[eventsResponse](s.T(), s.do(http.MethodGet, "/v1/events?limit=3", nil, nil))
	s.Require().Len(events.Events, 3)
	s.Equal("campaign_completed", events.Events[0].Action)
}
