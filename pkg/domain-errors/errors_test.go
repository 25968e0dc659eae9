package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonMatching(t *testing.T) {
	errUsed := NewReason(CodeConflict, "nullifier_already_used", "nullifier already used")
	errOther := NewReason(CodeConflict, "already_claimed", "already claimed")

	t.Run("matches wrapped error by reason", func(t *testing.T) {
		err := fmt.Errorf("record attestation: %w", errUsed.WithMessage("nullifier 01 already used"))
		assert.True(t, errors.Is(err, errUsed))
		assert.False(t, errors.Is(err, errOther))
	})

	t.Run("code-only target matches any error with that code", func(t *testing.T) {
		assert.True(t, errors.Is(errUsed, New(CodeConflict, "")))
		assert.False(t, errors.Is(errUsed, New(CodeNotFound, "")))
	})

	t.Run("reason survives wrapping by an outer domain error", func(t *testing.T) {
		outer := Wrap(errUsed, CodeInternal, "failed to commit")
		assert.Equal(t, "nullifier_already_used", ReasonOf(outer))
		assert.Equal(t, CodeInternal, CodeOf(outer))
	})
}

func TestCodeHelpers(t *testing.T) {
	err := Wrap(errors.New("boom"), CodeNotFound, "verifier not found")
	require.True(t, HasCode(err, CodeNotFound))
	assert.False(t, Is(err, CodeConflict))
	assert.Equal(t, "verifier not found: boom", err.Error())
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, "", ReasonOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:        http.StatusBadRequest,
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeForbidden:         http.StatusForbidden,
		CodeNotFound:          http.StatusNotFound,
		CodeConflict:          http.StatusConflict,
		CodeRateLimited:       http.StatusTooManyRequests,
		CodeInsufficientFunds: http.StatusUnprocessableEntity,
		CodeInternal:          http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, HTTPStatus(code), string(code))
	}
}
