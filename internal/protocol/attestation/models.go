package attestation

import (
	"vouch/internal/protocol/models"
	"vouch/internal/protocol/signature"
	"vouch/pkg/domain"
)

// Size limits for legacy direct proofs.
const (
	MaxProofSize        = 4096
	MaxPublicInputsSize = 1024
)

// RecordRequest carries one verifier-signed attestation and the companion
// signature proof produced alongside it.
type RecordRequest struct {
	AttestationHash domain.Hash32
	ProofTypeCode   uint8
	Nullifier       domain.Hash32
	Signature       domain.Signature
	Verifier        domain.PublicKey
	// Recipient is the wallet whose rate limit is charged. Zero means the caller.
	Recipient domain.PublicKey
	Proof     *signature.Proof
}

// DirectRequest is a legacy proof submitted without a verifier attestation.
type DirectRequest struct {
	Nullifier    domain.Hash32
	Recipient    domain.PublicKey
	Proof        []byte
	PublicInputs []byte
	MinThreshold uint64
}

// Receipt describes a committed credential.
type Receipt struct {
	Nullifier       models.Nullifier  `json:"nullifier"`
	AttestationHash *domain.Hash32    `json:"attestation_hash,omitempty"`
	Verifier        *domain.PublicKey `json:"verifier,omitempty"`
	Recipient       domain.PublicKey  `json:"recipient"`
	RateLimit       models.RateLimit  `json:"rate_limit"`
	TotalVerified   uint64            `json:"total_proofs_verified"`
}

func (r DirectRequest) validate() error {
	switch {
	case len(r.Proof) == 0:
		return models.ErrInvalidProof
	case len(r.PublicInputs) == 0:
		return models.ErrInvalidPublicInputs
	case len(r.Proof) > MaxProofSize:
		return models.ErrProofTooLarge
	case len(r.PublicInputs) > MaxPublicInputsSize:
		return models.ErrPublicInputsTooLarge
	}
	return nil
}
