package models

import (
	"encoding/json"
	"fmt"
)

// ProofType is the kind of fact a credential proves.
type ProofType uint8

const (
	ProofTypeUnset               ProofType = 0
	ProofTypeDeveloperReputation ProofType = 1
	ProofTypeWhaleTrading        ProofType = 2
)

// ParseProofType maps a wire code onto a credential type. Unset is not a valid
// credential type and is rejected along with unknown codes.
func ParseProofType(code uint8) (ProofType, error) {
	switch ProofType(code) {
	case ProofTypeDeveloperReputation, ProofTypeWhaleTrading:
		return ProofType(code), nil
	default:
		return ProofTypeUnset, ErrInvalidProofType.WithMessage(fmt.Sprintf("unknown proof type code %d", code))
	}
}

// Code is the one-byte wire encoding.
func (p ProofType) Code() uint8 { return uint8(p) }

func (p ProofType) String() string {
	switch p {
	case ProofTypeUnset:
		return "unset"
	case ProofTypeDeveloperReputation:
		return "developer_reputation"
	case ProofTypeWhaleTrading:
		return "whale_trading"
	default:
		return fmt.Sprintf("proof_type(%d)", uint8(p))
	}
}

// MarshalJSON renders the name; the numeric code is kept in records.
func (p ProofType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *ProofType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "unset":
		*p = ProofTypeUnset
	case "developer_reputation":
		*p = ProofTypeDeveloperReputation
	case "whale_trading":
		*p = ProofTypeWhaleTrading
	default:
		return ErrInvalidProofType.WithMessage(fmt.Sprintf("unknown proof type %q", name))
	}
	return nil
}
