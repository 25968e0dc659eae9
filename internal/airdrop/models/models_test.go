package models

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	protocol "vouch/internal/protocol/models"
	"vouch/pkg/domain"
)

func TestReward(t *testing.T) {
	c := &Campaign{BaseAmount: 100, DevBonus: 50, WhaleBonus: 200}

	tests := []struct {
		proofType protocol.ProofType
		want      uint64
	}{
		{protocol.ProofTypeDeveloperReputation, 150},
		{protocol.ProofTypeWhaleTrading, 300},
		{protocol.ProofTypeUnset, 100},
	}
	for _, tt := range tests {
		t.Run(tt.proofType.String(), func(t *testing.T) {
			got, err := Reward(c, tt.proofType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("overflow", func(t *testing.T) {
		_, err := Reward(&Campaign{BaseAmount: math.MaxUint64, DevBonus: 1}, protocol.ProofTypeDeveloperReputation)
		assert.True(t, errors.Is(err, protocol.ErrOverflow))
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := Reward(c, protocol.ProofType(9))
		assert.True(t, errors.Is(err, protocol.ErrInvalidProofType))
	})
}

func TestDerivedKeys(t *testing.T) {
	w1, w2 := domain.PublicKey{1}, domain.PublicKey{2}
	assert.Equal(t, OpenRegistrationKey(w1), OpenRegistrationKey(w1))
	assert.NotEqual(t, OpenRegistrationKey(w1), OpenRegistrationKey(w2))
	assert.NotEqual(t, VaultOwner(1), VaultOwner(2))
	assert.NotEqual(t, RegistrationAddress(1, domain.Hash32{7}), RegistrationAddress(2, domain.Hash32{7}))
	assert.Equal(t, NamespaceCampaign, CampaignAddress(5).Namespace())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "open", StatusOpen.String())
	assert.Equal(t, "registration_closed", StatusRegistrationClosed.String())
	assert.Equal(t, "completed", StatusCompleted.String())
}
