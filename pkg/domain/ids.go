// Package domain holds the identifier primitives shared across the protocol:
// 32-byte public keys (admins, verifiers, wallets, assets), opaque 32-byte
// values (nullifiers, commitments, attestation hashes) and 64-byte signatures.
// Parsing happens once at the trust boundary; the rest of the code works with
// the fixed-size types.
package domain

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"

	dErrors "vouch/pkg/domain-errors"
)

const (
	PublicKeySize = 32
	HashSize      = 32
	SignatureSize = 64
)

// PublicKey identifies an account. Rendered as base58.
type PublicKey [PublicKeySize]byte

// Hash32 is an opaque 32-byte value. Rendered as lowercase hex.
type Hash32 [HashSize]byte

// Signature is a 64-byte signature. Rendered as base58.
type Signature [SignatureSize]byte

// ParsePublicKey decodes a base58 public key.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	if s == "" {
		return pk, dErrors.New(dErrors.CodeInvalidInput, "public key is required")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid public key encoding")
	}
	if len(raw) != PublicKeySize {
		return pk, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("public key must be %d bytes", PublicKeySize))
	}
	copy(pk[:], raw)
	return pk, nil
}

// PublicKeyFromBytes copies b into a PublicKey.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeySize {
		return pk, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("public key must be %d bytes", PublicKeySize))
	}
	copy(pk[:], b)
	return pk, nil
}

func (k PublicKey) String() string { return base58.Encode(k[:]) }

// IsZero reports whether the key is all zeroes.
func (k PublicKey) IsZero() bool { return k == PublicKey{} }

func (k PublicKey) Bytes() []byte { return k[:] }

func (k PublicKey) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseHash32 decodes a 64-character hex value.
func ParseHash32(s string) (Hash32, error) {
	var h Hash32
	if s == "" {
		return h, dErrors.New(dErrors.CodeInvalidInput, "value is required")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid hex encoding")
	}
	if len(raw) != HashSize {
		return h, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("value must be %d bytes", HashSize))
	}
	copy(h[:], raw)
	return h, nil
}

func (h Hash32) String() string { return hex.EncodeToString(h[:]) }

func (h Hash32) IsZero() bool { return h == Hash32{} }

func (h Hash32) Bytes() []byte { return h[:] }

func (h Hash32) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *Hash32) UnmarshalText(text []byte) error {
	parsed, err := ParseHash32(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseSignature decodes a base58 signature.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	if s == "" {
		return sig, dErrors.New(dErrors.CodeInvalidInput, "signature is required")
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return sig, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid signature encoding")
	}
	if len(raw) != SignatureSize {
		return sig, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("signature must be %d bytes", SignatureSize))
	}
	copy(sig[:], raw)
	return sig, nil
}

func (s Signature) String() string { return base58.Encode(s[:]) }

func (s Signature) Bytes() []byte { return s[:] }

func (s Signature) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Signature) UnmarshalText(text []byte) error {
	parsed, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
