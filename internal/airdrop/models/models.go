package models

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"vouch/internal/ledger"
	protocol "vouch/internal/protocol/models"
	"vouch/pkg/domain"
)

const (
	NamespaceCampaign         = "airdrop_campaign"
	NamespaceRegistration     = "airdrop_registration"
	NamespaceVault            = "airdrop_vault"
	NamespaceOpenRegistration = "open_registration"

	MaxNameLength          = 64
	MinPayoutAddressLength = 32
	MaxPayoutAddressLength = 44
	MaxTxRefLength         = 128
)

// Status is the campaign phase. Phases only move forward.
type Status uint8

const (
	StatusOpen Status = iota + 1
	StatusRegistrationClosed
	StatusCompleted
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusRegistrationClosed:
		return "registration_closed"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Campaign is a creator-funded reward program.
type Campaign struct {
	ID                   uint64           `json:"id"`
	Creator              domain.PublicKey `json:"creator"`
	Name                 string           `json:"name"`
	Asset                domain.PublicKey `json:"asset"`
	BaseAmount           uint64           `json:"base_amount"`
	DevBonus             uint64           `json:"dev_bonus"`
	WhaleBonus           uint64           `json:"whale_bonus"`
	RegistrationDeadline int64            `json:"registration_deadline"`
	Status               Status           `json:"status"`
	TotalRegistrations   uint64           `json:"total_registrations"`
	DevRegistrations     uint64           `json:"dev_registrations"`
	WhaleRegistrations   uint64           `json:"whale_registrations"`
	OpenRegistrations    uint64           `json:"open_registrations"`
	TotalDistributed     uint64           `json:"total_distributed"`
	VaultBalance         uint64           `json:"vault_balance"`
	TotalClaimed         uint64           `json:"total_claimed"`
	CreatedAt            int64            `json:"created_at"`
	ClosedAt             int64            `json:"closed_at,omitempty"`
	CompletedAt          int64            `json:"completed_at,omitempty"`
}

// Registration is one identity's entry in a campaign. Verified entries are
// keyed by nullifier, open entries by a digest of the registrant wallet.
type Registration struct {
	CampaignID        uint64             `json:"campaign_id"`
	RegistrantKey     domain.Hash32      `json:"registrant_key"`
	Registrant        domain.PublicKey   `json:"registrant"`
	PayoutAddress     string             `json:"payout_address"`
	ProofType         protocol.ProofType `json:"proof_type"`
	RegisteredAt      int64              `json:"registered_at"`
	IsDistributed     bool               `json:"is_distributed"`
	DistributionTxRef string             `json:"distribution_tx_ref,omitempty"`
	DistributedAt     int64              `json:"distributed_at,omitempty"`
	IsClaimed         bool               `json:"is_claimed"`
	ClaimedAt         int64              `json:"claimed_at,omitempty"`
	ClaimedAmount     uint64             `json:"claimed_amount"`
}

func idBytes(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

func CampaignAddress(id uint64) ledger.Address {
	return ledger.Derive(NamespaceCampaign, idBytes(id))
}

func RegistrationAddress(campaignID uint64, key domain.Hash32) ledger.Address {
	return ledger.Derive(NamespaceRegistration, idBytes(campaignID), key.Bytes())
}

// OpenRegistrationKey derives the registration key for an unverified
// registrant so each wallet registers at most once per campaign.
func OpenRegistrationKey(wallet domain.PublicKey) domain.Hash32 {
	return blake2b.Sum256(append([]byte(NamespaceOpenRegistration), wallet.Bytes()...))
}

// VaultOwner is the token account owner holding a campaign's funds.
func VaultOwner(campaignID uint64) domain.PublicKey {
	return blake2b.Sum256(append([]byte(NamespaceVault), idBytes(campaignID)...))
}

// Reward is the claim amount for a registration of proofType.
func Reward(c *Campaign, proofType protocol.ProofType) (uint64, error) {
	switch proofType {
	case protocol.ProofTypeDeveloperReputation:
		return protocol.AddU64(c.BaseAmount, c.DevBonus)
	case protocol.ProofTypeWhaleTrading:
		return protocol.AddU64(c.BaseAmount, c.WhaleBonus)
	case protocol.ProofTypeUnset:
		return c.BaseAmount, nil
	default:
		return 0, protocol.ErrInvalidProofType
	}
}
