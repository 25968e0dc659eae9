package audit

//go:generate mockgen -source=models.go -destination=mocks/mocks.go -package=mocks Sink,Publisher

import (
	"context"
	"time"
)

// EventCategory classifies events by their primary purpose so sinks can apply
// different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers credential issuance and authority changes.
	// These are the permanent record of who vouched for what.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers pauses, rejections and throttling.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine bookkeeping.
	CategoryOperations EventCategory = "operations"
)

// Event is an append-only notification emitted after a successful commit.
// It carries identifiers, amounts and the operation timestamp as attributes.
type Event struct {
	ID         string            `json:"id"`
	Category   EventCategory     `json:"category"`
	Timestamp  time.Time         `json:"timestamp"`
	Action     string            `json:"action"`
	Subject    string            `json:"subject,omitempty"`
	ActorID    string            `json:"actor_id,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type AuditEvent string

const (
	// Config and admin control
	EventConfigInitialized AuditEvent = "config_initialized"
	EventProtocolPaused    AuditEvent = "protocol_paused"
	EventProtocolUnpaused  AuditEvent = "protocol_unpaused"
	EventRateLimitsUpdated AuditEvent = "rate_limits_updated"
	EventAdminTransferred  AuditEvent = "admin_transferred"

	// Verifier registry
	EventVerifierAdded   AuditEvent = "verifier_added"
	EventVerifierRemoved AuditEvent = "verifier_removed"

	// Credentials
	EventRateLimitInitialized AuditEvent = "rate_limit_initialized"
	EventNullifierInitialized AuditEvent = "nullifier_initialized"
	EventAttestationRecorded  AuditEvent = "attestation_recorded"
	EventAttestationRejected  AuditEvent = "attestation_rejected"
	EventProofVerified        AuditEvent = "proof_verified"
	EventCommitmentCreated    AuditEvent = "commitment_created"

	// Airdrop campaigns
	EventCampaignCreated            AuditEvent = "campaign_created"
	EventCampaignRegistered         AuditEvent = "campaign_registered"
	EventCampaignRegistrationClosed AuditEvent = "campaign_registration_closed"
	EventCampaignFunded             AuditEvent = "campaign_funded"
	EventCampaignCompleted          AuditEvent = "campaign_completed"
	EventCampaignDistributed        AuditEvent = "campaign_distributed"
	EventCampaignClaimed            AuditEvent = "campaign_claimed"

	// Asset ledger
	EventAssetDeposited AuditEvent = "asset_deposited"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAdminTransferred:    CategoryCompliance,
	EventVerifierAdded:       CategoryCompliance,
	EventVerifierRemoved:     CategoryCompliance,
	EventAttestationRecorded: CategoryCompliance,
	EventProofVerified:       CategoryCompliance,
	EventCampaignClaimed:     CategoryCompliance,
	EventCampaignDistributed: CategoryCompliance,

	EventProtocolPaused:       CategorySecurity,
	EventProtocolUnpaused:     CategorySecurity,
	EventRateLimitsUpdated:    CategorySecurity,
	EventAttestationRejected:  CategorySecurity,
	EventConfigInitialized:    CategorySecurity,
	EventRateLimitInitialized: CategoryOperations,
}

// Category returns the EventCategory for this event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Sink receives events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Store is a queryable sink.
type Store interface {
	Sink
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Publisher accepts events from services. Implementations must not block the
// caller on downstream delivery.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
