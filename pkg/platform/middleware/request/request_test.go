package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vouch/internal/platform/logger"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	t.Run("mints when absent", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, rr.Header().Get(HeaderRequestID))
	})

	t.Run("propagates inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "trace-123")
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "trace-123", seen)
	})

	t.Run("replaces oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("x", 200))
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Len(t, seen, 36)
	})
}

type observation struct {
	route, method, status string
}

type recordingObserver struct {
	got []observation
}

func (o *recordingObserver) ObserveRequest(route, method, status string, _ float64) {
	o.got = append(o.got, observation{route, method, status})
}

func TestLatencyUsesRoutePattern(t *testing.T) {
	obs := &recordingObserver{}
	r := chi.NewRouter()
	r.Use(Latency(obs))
	r.Use(Logger(logger.Discard()))
	r.Get("/v1/campaigns/{campaign}", func(w http.ResponseWriter, r *http.Request) {})
	r.Post("/v1/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/campaigns/7", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/fail", nil))

	require.Len(t, obs.got, 2)
	assert.Equal(t, observation{"/v1/campaigns/{campaign}", http.MethodGet, "200"}, obs.got[0])
	assert.Equal(t, observation{"/v1/fail", http.MethodPost, "409"}, obs.got[1])
}
