package httptransport

import (
	"vouch/internal/protocol/signature"
	"vouch/pkg/domain"
)

// Keys decode from base58 and hashes from hex; byte payloads are base64.

type updateRateLimitsRequest struct {
	MaxProofsPerDay uint32 `json:"max_proofs_per_day"`
	CooldownSeconds int64  `json:"cooldown_seconds"`
}

type transferAdminRequest struct {
	NewAdmin domain.PublicKey `json:"new_admin"`
}

type addVerifierRequest struct {
	Verifier domain.PublicKey `json:"verifier"`
}

type commitmentRequest struct {
	Commitment domain.Hash32 `json:"commitment"`
}

type nullifierRequest struct {
	Nullifier domain.Hash32 `json:"nullifier"`
}

type recordAttestationRequest struct {
	AttestationHash domain.Hash32    `json:"attestation_hash"`
	ProofType       uint8            `json:"proof_type"`
	Nullifier       domain.Hash32    `json:"nullifier"`
	Signature       domain.Signature `json:"signature"`
	Verifier        domain.PublicKey `json:"verifier"`
	Recipient       domain.PublicKey `json:"recipient"`
	Proof           *signature.Proof `json:"proof"`
}

type directProofRequest struct {
	Nullifier    domain.Hash32    `json:"nullifier"`
	Recipient    domain.PublicKey `json:"recipient"`
	Proof        []byte           `json:"proof"`
	PublicInputs []byte           `json:"public_inputs"`
	MinThreshold uint64           `json:"min_threshold"`
}

type createCampaignRequest struct {
	ID                   uint64           `json:"id"`
	Name                 string           `json:"name"`
	Asset                domain.PublicKey `json:"asset"`
	BaseAmount           uint64           `json:"base_amount"`
	DevBonus             uint64           `json:"dev_bonus"`
	WhaleBonus           uint64           `json:"whale_bonus"`
	RegistrationDeadline int64            `json:"registration_deadline"`
}

type registerRequest struct {
	Nullifier     domain.Hash32 `json:"nullifier"`
	PayoutAddress string        `json:"payout_address"`
}

type registerOpenRequest struct {
	PayoutAddress string `json:"payout_address"`
}

type amountRequest struct {
	Amount uint64 `json:"amount"`
}

type distributedRequest struct {
	TxRef string `json:"tx_ref"`
}

type depositRequest struct {
	Owner  domain.PublicKey `json:"owner"`
	Amount uint64           `json:"amount"`
}

type eventsResponse struct {
	Events []eventResponse `json:"events"`
}

type eventResponse struct {
	ID         string            `json:"id"`
	Category   string            `json:"category"`
	Timestamp  int64             `json:"timestamp"`
	Action     string            `json:"action"`
	Subject    string            `json:"subject,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}
