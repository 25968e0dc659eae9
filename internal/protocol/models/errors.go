package models

import (
	dErrors "vouch/pkg/domain-errors"
)

// Protocol failures. Each carries a stable reason so callers match with
// errors.Is and transports surface the reason to clients.
var (
	ErrAlreadyInitialized = dErrors.NewReason(dErrors.CodeConflict, "already_initialized", "record already initialized")
	ErrUnauthorized       = dErrors.NewReason(dErrors.CodeForbidden, "unauthorized", "caller is not authorized for this operation")
	ErrProtocolPaused     = dErrors.NewReason(dErrors.CodeConflict, "protocol_paused", "protocol is paused")
	ErrAlreadyPaused      = dErrors.NewReason(dErrors.CodeConflict, "already_paused", "protocol is already paused")
	ErrNotPaused          = dErrors.NewReason(dErrors.CodeConflict, "not_paused", "protocol is not paused")
	ErrInvalidRateLimit   = dErrors.NewReason(dErrors.CodeValidation, "invalid_rate_limit", "max proofs per day must be positive and cooldown non-negative")
	ErrOverflow           = dErrors.NewReason(dErrors.CodeIntegrity, "overflow", "arithmetic overflow")

	ErrConfigNotInitialized    = dErrors.NewReason(dErrors.CodeNotFound, "config_not_initialized", "protocol config not initialized")
	ErrVerifierNotFound        = dErrors.NewReason(dErrors.CodeNotFound, "verifier_not_found", "verifier not found")
	ErrRateLimitNotInitialized = dErrors.NewReason(dErrors.CodeNotFound, "rate_limit_not_initialized", "rate limit not initialized for wallet")
	ErrNullifierNotInitialized = dErrors.NewReason(dErrors.CodeNotFound, "nullifier_not_initialized", "nullifier not initialized")
	ErrCommitmentNotFound      = dErrors.NewReason(dErrors.CodeNotFound, "commitment_not_found", "commitment not found")

	ErrVerifierNotAuthorized  = dErrors.NewReason(dErrors.CodeForbidden, "verifier_not_authorized", "verifier is not active")
	ErrRateLimitCooldown      = dErrors.NewReason(dErrors.CodeRateLimited, "rate_limit_cooldown", "cooldown period has not elapsed")
	ErrDailyRateLimitExceeded = dErrors.NewReason(dErrors.CodeRateLimited, "daily_rate_limit_exceeded", "daily proof limit reached")
	ErrInvalidSignature       = dErrors.NewReason(dErrors.CodeUnauthorized, "invalid_signature", "attestation signature is invalid")
	ErrNullifierAlreadyUsed   = dErrors.NewReason(dErrors.CodeConflict, "nullifier_already_used", "nullifier already used")
	ErrInvalidProofType       = dErrors.NewReason(dErrors.CodeValidation, "invalid_proof_type", "invalid proof type")
	ErrInvalidCommitment      = dErrors.NewReason(dErrors.CodeValidation, "invalid_commitment", "commitment must not be zero")

	ErrInvalidProof               = dErrors.NewReason(dErrors.CodeValidation, "invalid_proof", "proof is required")
	ErrInvalidPublicInputs        = dErrors.NewReason(dErrors.CodeValidation, "invalid_public_inputs", "public inputs are required")
	ErrProofTooLarge              = dErrors.NewReason(dErrors.CodeValidation, "proof_too_large", "proof exceeds maximum size")
	ErrPublicInputsTooLarge       = dErrors.NewReason(dErrors.CodeValidation, "public_inputs_too_large", "public inputs exceed maximum size")
	ErrDirectVerificationDisabled = dErrors.NewReason(dErrors.CodeForbidden, "direct_verification_disabled", "direct proof verification is disabled")
)
