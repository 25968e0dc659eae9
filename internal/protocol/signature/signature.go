// Package signature binds a companion signature proof to an attestation.
//
// The verifier signs an 82-byte message off-chain. The submitter forwards the
// signature together with the proof record produced by the host's signature
// primitive; this package checks that the record covers exactly the expected
// key, message and signature and asks the Oracle to confirm it. Curve
// arithmetic stays behind the Oracle.
package signature

import (
	"bytes"
	"crypto/ed25519"

	"vouch/internal/protocol/models"
	"vouch/pkg/domain"
)

// DomainTag prefixes every attestation message.
const DomainTag = "vouch_attestation"

// MessageLen is the exact length of an attestation message.
const MessageLen = len(DomainTag) + 1 + 32 + 32

// Message builds the canonical attestation message:
// tag (17) | proof type code (1) | nullifier (32) | attestation hash (32).
func Message(proofTypeCode uint8, nullifier, attestationHash domain.Hash32) []byte {
	msg := make([]byte, 0, MessageLen)
	msg = append(msg, DomainTag...)
	msg = append(msg, proofTypeCode)
	msg = append(msg, nullifier[:]...)
	msg = append(msg, attestationHash[:]...)
	return msg
}

// Proof is the companion record of one signature check performed alongside
// the request.
type Proof struct {
	PublicKey domain.PublicKey `json:"public_key"`
	Message   []byte           `json:"message"`
	Signature domain.Signature `json:"signature"`
}

// Oracle verifies a signature. Implementations must be safe for concurrent use.
type Oracle interface {
	Verify(publicKey domain.PublicKey, message []byte, sig domain.Signature) bool
}

// Ed25519Oracle verifies with crypto/ed25519.
type Ed25519Oracle struct{}

func (Ed25519Oracle) Verify(publicKey domain.PublicKey, message []byte, sig domain.Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(publicKey[:]), message, sig[:])
}

// Verifier binds proofs through an Oracle.
type Verifier struct {
	oracle Oracle
}

// NewVerifier returns a Verifier backed by oracle, or by Ed25519Oracle when nil.
func NewVerifier(oracle Oracle) *Verifier {
	if oracle == nil {
		oracle = Ed25519Oracle{}
	}
	return &Verifier{oracle: oracle}
}

// Bind checks that proof was produced by expectedKey over expectedMessage with
// the signature the caller supplied. Every mismatch is ErrInvalidSignature.
func (v *Verifier) Bind(proof *Proof, expectedKey domain.PublicKey, expectedMessage []byte, supplied domain.Signature) error {
	if proof == nil {
		return models.ErrInvalidSignature.WithMessage("companion signature proof is missing")
	}
	if !bytes.Equal(proof.Message, expectedMessage) {
		return models.ErrInvalidSignature.WithMessage("signed message does not match attestation")
	}
	if proof.PublicKey != expectedKey {
		return models.ErrInvalidSignature.WithMessage("signer is not the attesting verifier")
	}
	if proof.Signature != supplied {
		return models.ErrInvalidSignature.WithMessage("signature does not match the submitted signature")
	}
	if !v.oracle.Verify(proof.PublicKey, proof.Message, proof.Signature) {
		return models.ErrInvalidSignature
	}
	return nil
}
