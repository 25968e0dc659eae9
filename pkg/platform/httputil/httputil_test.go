package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "vouch/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("reason replaces code in error field", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.NewReason(dErrors.CodeRateLimited, "rate_limit_cooldown", "cooldown active"))

		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "rate_limit_cooldown" {
			t.Fatalf("expected error rate_limit_cooldown, got %q", body["error"])
		}
	})

	t.Run("non domain error becomes internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("driver exploded"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("rejects unknown fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
		var dst struct {
			Name string `json:"name"`
		}
		err := DecodeJSON(r, &dst)
		if !dErrors.HasCode(err, dErrors.CodeBadRequest) {
			t.Fatalf("expected bad request, got %v", err)
		}
	})

	t.Run("decodes valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
		var dst struct {
			Name string `json:"name"`
		}
		if err := DecodeJSON(r, &dst); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dst.Name != "x" {
			t.Fatalf("expected name x, got %q", dst.Name)
		}
	})
}
