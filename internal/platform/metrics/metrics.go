package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for protocol operations.
type Metrics struct {
	AttestationsRecorded *prometheus.CounterVec
	AttestationsRejected *prometheus.CounterVec
	RateLimitRejections  *prometheus.CounterVec
	ProofsVerified       *prometheus.CounterVec
	AirdropClaims        prometheus.Counter
	AirdropClaimedAmount prometheus.Counter
	AirdropRegistrations *prometheus.CounterVec
	RequestLatency       *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AttestationsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_attestations_recorded_total",
			Help: "Total number of attestations recorded, by proof type",
		}, []string{"proof_type"}),
		AttestationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_attestations_rejected_total",
			Help: "Total number of attestations rejected, by reason",
		}, []string{"reason"}),
		RateLimitRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_rate_limit_rejections_total",
			Help: "Total number of proof submissions rejected by the wallet rate limiter",
		}, []string{"reason"}),
		ProofsVerified: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_direct_proofs_verified_total",
			Help: "Total number of proofs accepted through direct verification, by proof type",
		}, []string{"proof_type"}),
		AirdropClaims: factory.NewCounter(prometheus.CounterOpts{
			Name: "vouch_airdrop_claims_total",
			Help: "Total number of airdrop claims paid",
		}),
		AirdropClaimedAmount: factory.NewCounter(prometheus.CounterOpts{
			Name: "vouch_airdrop_claimed_amount_total",
			Help: "Total base units paid out by airdrop claims",
		}),
		AirdropRegistrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vouch_airdrop_registrations_total",
			Help: "Total number of airdrop registrations, by tier",
		}, []string{"tier"}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vouch_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

func (m *Metrics) IncrementAttestationsRecorded(proofType string) {
	if m == nil {
		return
	}
	m.AttestationsRecorded.WithLabelValues(proofType).Inc()
}

func (m *Metrics) IncrementAttestationsRejected(reason string) {
	if m == nil {
		return
	}
	m.AttestationsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementRateLimitRejections(reason string) {
	if m == nil {
		return
	}
	m.RateLimitRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementProofsVerified(proofType string) {
	if m == nil {
		return
	}
	m.ProofsVerified.WithLabelValues(proofType).Inc()
}

func (m *Metrics) IncrementAirdropRegistrations(tier string) {
	if m == nil {
		return
	}
	m.AirdropRegistrations.WithLabelValues(tier).Inc()
}

func (m *Metrics) ObserveAirdropClaim(amount uint64) {
	if m == nil {
		return
	}
	m.AirdropClaims.Inc()
	m.AirdropClaimedAmount.Add(float64(amount))
}

func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(route, method, status).Observe(seconds)
}
