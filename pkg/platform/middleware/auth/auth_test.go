package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"vouch/internal/platform/logger"
	"vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) { return v.claims, v.err }

func TestRequireAuth(t *testing.T) {
	caller := domain.PublicKey{0xAA}
	var seen domain.PublicKey
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = requestcontext.Caller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		header     string
		validator  stubValidator
		wantStatus int
	}{
		{"missing header", "", stubValidator{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{}, http.StatusUnauthorized},
		{"invalid token", "Bearer abc", stubValidator{err: errors.New("bad")}, http.StatusUnauthorized},
		{"zero subject", "Bearer abc", stubValidator{claims: &JWTClaims{}}, http.StatusUnauthorized},
		{"valid token", "Bearer abc", stubValidator{claims: &JWTClaims{Caller: caller}}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = domain.PublicKey{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			RequireAuth(tt.validator, logger.Discard())(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, caller, seen)
			} else {
				assert.True(t, seen.IsZero(), "handler must not run")
				assert.Contains(t, rr.Body.String(), `"error":"unauthorized"`)
			}
		})
	}
}
