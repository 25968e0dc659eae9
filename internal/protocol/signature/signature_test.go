package signature

//go:generate mockgen -source=signature.go -destination=mocks/mocks.go -package=mocks Oracle

import (
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"vouch/internal/protocol/models"
	"vouch/internal/protocol/signature/mocks"
	"vouch/pkg/domain"
)

func fixedSeedKey(t *testing.T) (domain.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub, err := domain.PublicKeyFromBytes(priv.Public().(ed25519.PublicKey))
	require.NoError(t, err)
	return pub, priv
}

func sign(priv ed25519.PrivateKey, msg []byte) domain.Signature {
	var sig domain.Signature
	copy(sig[:], ed25519.Sign(priv, msg))
	return sig
}

func TestMessageLayout(t *testing.T) {
	var nullifier, hash domain.Hash32
	for i := range nullifier {
		nullifier[i] = 0xAA
		hash[i] = 0xBB
	}
	msg := Message(models.ProofTypeWhaleTrading.Code(), nullifier, hash)

	require.Len(t, msg, 82)
	assert.Equal(t, 82, MessageLen)
	assert.Equal(t, "vouch_attestation", string(msg[0:17]))
	assert.Equal(t, byte(2), msg[17])
	assert.Equal(t, nullifier[:], msg[18:50])
	assert.Equal(t, hash[:], msg[50:82])
}

// =============================================================================
// Bind with the real Ed25519 oracle
// =============================================================================
// Justification for unit tests: acceptance needs message, key and signature to
// match byte for byte. Flipping any single byte of the three must reject.

func TestBindEd25519(t *testing.T) {
	pub, priv := fixedSeedKey(t)
	msg := Message(1, domain.Hash32{1}, domain.Hash32{2})
	sig := sign(priv, msg)
	v := NewVerifier(nil)

	proof := &Proof{PublicKey: pub, Message: append([]byte(nil), msg...), Signature: sig}
	require.NoError(t, v.Bind(proof, pub, msg, sig))

	t.Run("missing proof", func(t *testing.T) {
		assert.True(t, errors.Is(v.Bind(nil, pub, msg, sig), models.ErrInvalidSignature))
	})

	t.Run("every message byte is bound", func(t *testing.T) {
		for i := 0; i < len(msg); i++ {
			tampered := append([]byte(nil), msg...)
			tampered[i] ^= 0x01
			p := &Proof{PublicKey: pub, Message: tampered, Signature: sign(priv, tampered)}
			err := v.Bind(p, pub, msg, p.Signature)
			require.True(t, errors.Is(err, models.ErrInvalidSignature), "byte %d", i)
		}
	})

	t.Run("every public key byte is bound", func(t *testing.T) {
		for i := 0; i < len(pub); i++ {
			other := pub
			other[i] ^= 0x01
			err := v.Bind(proof, other, msg, sig)
			require.True(t, errors.Is(err, models.ErrInvalidSignature), "byte %d", i)
		}
	})

	t.Run("every signature byte is bound", func(t *testing.T) {
		for i := 0; i < len(sig); i++ {
			other := sig
			other[i] ^= 0x01
			err := v.Bind(proof, pub, msg, other)
			require.True(t, errors.Is(err, models.ErrInvalidSignature), "byte %d", i)

			forged := &Proof{PublicKey: pub, Message: msg, Signature: other}
			err = v.Bind(forged, pub, msg, other)
			require.True(t, errors.Is(err, models.ErrInvalidSignature), "forged byte %d", i)
		}
	})
}

func TestBindDefersToOracle(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockOracle(ctrl)
	v := NewVerifier(oracle)

	key := domain.PublicKey{7}
	msg := Message(2, domain.Hash32{3}, domain.Hash32{4})
	sig := domain.Signature{9}
	proof := &Proof{PublicKey: key, Message: msg, Signature: sig}

	oracle.EXPECT().Verify(key, msg, sig).Return(false)
	assert.True(t, errors.Is(v.Bind(proof, key, msg, sig), models.ErrInvalidSignature))

	oracle.EXPECT().Verify(key, msg, sig).Return(true)
	assert.NoError(t, v.Bind(proof, key, msg, sig))
}

func TestBindSkipsOracleOnMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	oracle := mocks.NewMockOracle(ctrl)
	v := NewVerifier(oracle)

	msg := Message(1, domain.Hash32{}, domain.Hash32{})
	proof := &Proof{PublicKey: domain.PublicKey{1}, Message: msg, Signature: domain.Signature{1}}
	err := v.Bind(proof, domain.PublicKey{2}, msg, domain.Signature{1})
	assert.True(t, errors.Is(err, models.ErrInvalidSignature))
}
