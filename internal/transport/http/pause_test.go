package httptransport

import (
	"net/http"
	"testing"

	"vouch/pkg/domain"
	"vouch/pkg/testutil"
)

func TestPauseBlocksCredentialWrites(t *testing.T) {
	s := new(RouterSuite)
	s.SetT(t)
	s.SetupTest()

	testutil.Given(t, "an initialized protocol with a registered verifier", func(t *testing.T) {
		s.SetT(t)
		s.bootstrap()
		nullifier := domain.Hash32{0x5A}
		testutil.AssertStatus(t, s.do(http.MethodPost, "/v1/nullifiers", &s.wallet,
			map[string]string{"nullifier": nullifier.String()}), http.StatusCreated)

		testutil.When(t, "the pause authority pauses the protocol", func(t *testing.T) {
			s.SetT(t)
			testutil.AssertStatusOK(t, s.do(http.MethodPost, "/v1/config/pause", &s.adminKey, nil))

			testutil.Then(t, "attestations are rejected as paused", func(t *testing.T) {
				s.SetT(t)
				testutil.AssertStatusAndError(t, s.attest(nullifier, 2), http.StatusConflict, "protocol_paused")
			})

			testutil.Then(t, "the nullifier stays unused", func(t *testing.T) {
				s.SetT(t)
				rr := s.do(http.MethodGet, "/v1/nullifiers/"+nullifier.String(), nil, nil)
				testutil.AssertJSONContains(t, rr, "is_used", false)
			})
		})
	})
}
