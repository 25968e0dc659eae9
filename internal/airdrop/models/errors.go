package models

import (
	dErrors "vouch/pkg/domain-errors"
)

var (
	ErrInvalidName          = dErrors.NewReason(dErrors.CodeValidation, "invalid_campaign_name", "campaign name must be 1 to 64 characters")
	ErrInvalidAmount        = dErrors.NewReason(dErrors.CodeValidation, "invalid_amount", "amount must be positive")
	ErrInvalidDeadline      = dErrors.NewReason(dErrors.CodeValidation, "invalid_deadline", "registration deadline must be in the future")
	ErrInvalidPayoutAddress = dErrors.NewReason(dErrors.CodeValidation, "invalid_payout_address", "payout address must be 32 to 44 characters")
	ErrInvalidTxRef         = dErrors.NewReason(dErrors.CodeValidation, "invalid_tx_ref", "distribution reference must be 1 to 128 characters")

	ErrCampaignNotFound     = dErrors.NewReason(dErrors.CodeNotFound, "campaign_not_found", "campaign not found")
	ErrRegistrationNotFound = dErrors.NewReason(dErrors.CodeNotFound, "registration_not_found", "registration not found")

	ErrCampaignNotOpen       = dErrors.NewReason(dErrors.CodeConflict, "campaign_not_open", "campaign is not open for registration")
	ErrRegistrationClosed    = dErrors.NewReason(dErrors.CodeConflict, "registration_deadline_passed", "registration deadline has passed")
	ErrInvalidCampaignStatus = dErrors.NewReason(dErrors.CodeConflict, "invalid_campaign_status", "campaign is not in the required phase")
	ErrCredentialRequired    = dErrors.NewReason(dErrors.CodeConflict, "credential_required", "nullifier has not been consumed by a credential")
	ErrAlreadyRegistered     = dErrors.NewReason(dErrors.CodeConflict, "already_registered", "identity already registered for this campaign")
	ErrAlreadyClaimed        = dErrors.NewReason(dErrors.CodeConflict, "already_claimed", "reward already claimed")
	ErrAlreadyDistributed    = dErrors.NewReason(dErrors.CodeConflict, "already_distributed", "reward already distributed")
)
