package service

import (
	"context"
	"strconv"

	"vouch/internal/airdrop/models"
	"vouch/internal/ledger"
	protocol "vouch/internal/protocol/models"
	"vouch/internal/protocol/records"
	"vouch/pkg/domain"
)

func loadCampaign(ctx context.Context, tx ledger.Tx, id uint64) (*models.Campaign, error) {
	return records.Load[models.Campaign](ctx, tx, models.CampaignAddress(id), models.ErrCampaignNotFound)
}

func loadOwnedCampaign(ctx context.Context, tx ledger.Tx, id uint64, caller domain.PublicKey) (*models.Campaign, error) {
	c, err := loadCampaign(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if c.Creator != caller {
		return nil, protocol.ErrUnauthorized.WithMessage("only the campaign creator may perform this action")
	}
	return c, nil
}

func loadRegistration(ctx context.Context, tx ledger.Tx, id uint64, key domain.Hash32) (*models.Registration, error) {
	return records.Load[models.Registration](ctx, tx, models.RegistrationAddress(id, key), models.ErrRegistrationNotFound)
}

// countRegistration bumps the campaign total and the bucket for proofType.
func countRegistration(c *models.Campaign, proofType protocol.ProofType) error {
	var err error
	if c.TotalRegistrations, err = protocol.AddU64(c.TotalRegistrations, 1); err != nil {
		return err
	}
	switch proofType {
	case protocol.ProofTypeDeveloperReputation:
		c.DevRegistrations, err = protocol.AddU64(c.DevRegistrations, 1)
	case protocol.ProofTypeWhaleTrading:
		c.WhaleRegistrations, err = protocol.AddU64(c.WhaleRegistrations, 1)
	case protocol.ProofTypeUnset:
		c.OpenRegistrations, err = protocol.AddU64(c.OpenRegistrations, 1)
	default:
		return protocol.ErrInvalidProofType
	}
	return err
}

func tierOf(proofType protocol.ProofType) string {
	if proofType == protocol.ProofTypeUnset {
		return "open"
	}
	return proofType.String()
}

func campaignSubject(id uint64) string {
	return "campaign:" + strconv.FormatUint(id, 10)
}
