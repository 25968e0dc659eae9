package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "vouch/internal/jwt_token"
	"vouch/internal/platform/config"
	"vouch/internal/platform/logger"
	"vouch/pkg/domain"
)

func TestTokenCommandIssuesVerifiableToken(t *testing.T) {
	caller := domain.PublicKey{0x05, 0x06}
	out := &bytes.Buffer{}
	root := newRootCommand()
	root.SetOut(out)
	root.SetArgs([]string{"token", "--caller", caller.String(), "--ttl", "5m"})
	require.NoError(t, root.Execute())

	cfg := config.Default()
	claims, err := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer).
		ValidateToken(string(bytes.TrimSpace(out.Bytes())))
	require.NoError(t, err)
	got, err := claims.Caller()
	require.NoError(t, err)
	assert.Equal(t, caller, got)
}

func TestTokenCommandRejectsBadKey(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"token", "--caller", "not-base58!"})
	assert.Error(t, root.Execute())
}

func TestOpenLedgerRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "etcd"
	_, err := openLedger(t.Context(), cfg, &dependencies{}, nil)
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestOpenDependenciesInMemory(t *testing.T) {
	cfg := config.Default()
	deps, err := openDependencies(t.Context(), cfg, logger.Discard())
	require.NoError(t, err)
	defer deps.Close(logger.Discard())

	assert.NotNil(t, deps.store)
	assert.NotNil(t, deps.dispatcher)
	assert.Nil(t, deps.db)
}
