//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "vouch/pkg/platform/audit"
	"vouch/pkg/testutil/containers"
)

func TestStoreAppendAndList(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()
	s := New(pg.DB)
	require.NoError(t, s.Migrate(ctx))

	base := time.Unix(1_700_000_000, 0).UTC()
	first := audit.Event{
		ID:         uuid.NewString(),
		Category:   audit.CategoryCompliance,
		Timestamp:  base,
		Action:     string(audit.EventAttestationRecorded),
		Subject:    "ab01",
		Attributes: map[string]string{"proof_type": "whale_trading"},
	}
	second := audit.Event{ID: uuid.NewString(), Timestamp: base.Add(time.Minute), Action: string(audit.EventProtocolPaused)}

	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, second))
	require.NoError(t, s.Append(ctx, first), "duplicate delivery is ignored")

	events, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, second.Action, events[0].Action)
	assert.Equal(t, "whale_trading", events[1].Attributes["proof_type"])
}
