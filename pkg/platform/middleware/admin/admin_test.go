package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"vouch/internal/platform/logger"
)

func TestRequireAdminToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name     string
		expected string
		sent     string
		want     int
	}{
		{"match", "s3cret", "s3cret", http.StatusOK},
		{"mismatch", "s3cret", "guess", http.StatusUnauthorized},
		{"missing", "s3cret", "", http.StatusUnauthorized},
		{"unconfigured rejects all", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.sent != "" {
				req.Header.Set(HeaderAdminToken, tt.sent)
			}
			rr := httptest.NewRecorder()
			RequireAdminToken(tt.expected, logger.Discard())(ok).ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}
