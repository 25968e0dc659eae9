package models

import (
	"vouch/pkg/domain"
)

// Protocol defaults applied by config initialization.
const (
	DefaultMaxProofsPerDay uint32 = 10
	DefaultCooldownSeconds int64  = 60
	SecondsPerDay          int64  = 86400
)

// Record namespaces for derived ledger addresses.
const (
	NamespaceConfig     = "config"
	NamespaceVerifier   = "verifier"
	NamespaceRateLimit  = "rate_limit"
	NamespaceNullifier  = "nullifier"
	NamespaceCommitment = "commitment"
)

// Config is the protocol singleton.
type Config struct {
	Admin               domain.PublicKey `json:"admin"`
	PauseAuthority      domain.PublicKey `json:"pause_authority"`
	IsPaused            bool             `json:"is_paused"`
	MaxProofsPerDay     uint32           `json:"max_proofs_per_day"`
	CooldownSeconds     int64            `json:"cooldown_seconds"`
	TotalProofsVerified uint64           `json:"total_proofs_verified"`
	VerifierCount       uint32           `json:"verifier_count"`
}

// Verifier is an off-chain attestation signer. Records are soft-revoked, never deleted.
type Verifier struct {
	Verifier         domain.PublicKey `json:"verifier"`
	IsActive         bool             `json:"is_active"`
	AddedAt          int64            `json:"added_at"`
	AttestationCount uint64           `json:"attestation_count"`
}

// RateLimit tracks proof submissions for one wallet.
type RateLimit struct {
	Wallet      domain.PublicKey `json:"wallet"`
	ProofsToday uint32           `json:"proofs_today"`
	LastProofAt int64            `json:"last_proof_at"`
	DayStart    int64            `json:"day_start"`
	TotalProofs uint64           `json:"total_proofs"`
}

// Nullifier records one-time consumption of a proof nullifier.
type Nullifier struct {
	Nullifier domain.Hash32 `json:"nullifier"`
	IsUsed    bool          `json:"is_used"`
	UsedAt    int64         `json:"used_at"`
	ProofType ProofType     `json:"proof_type"`
}

// Commitment binds an opaque commitment to its owner.
type Commitment struct {
	Commitment domain.Hash32    `json:"commitment"`
	Owner      domain.PublicKey `json:"owner"`
	CreatedAt  int64            `json:"created_at"`
}

// EnsureActive fails with ErrProtocolPaused while the protocol is paused.
func (c *Config) EnsureActive() error {
	if c.IsPaused {
		return ErrProtocolPaused
	}
	return nil
}
