package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"vouch/internal/ledger"
	"vouch/internal/ledger/storetest"
)

func TestInMemoryStore(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		NewStore: func() ledger.Store { return New() },
	})
}
