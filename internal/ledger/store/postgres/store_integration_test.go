//go:build integration

package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"vouch/internal/ledger"
	"vouch/internal/ledger/storetest"
	"vouch/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	base, err := New(pg.DB)
	require.NoError(t, err)
	require.NoError(t, base.Migrate(ctx))

	suite.Run(t, &storetest.Suite{
		NewStore: func() ledger.Store {
			require.NoError(t, pg.TruncateTables(ctx, DefaultTable))
			return base
		},
	})
}
