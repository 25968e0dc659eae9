// Package httputil writes JSON responses and error envelopes.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "vouch/pkg/domain-errors"
)

// MaxBodyBytes caps request bodies read by DecodeJSON.
const MaxBodyBytes = 64 << 10

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error onto a status code and JSON envelope. The
// error field carries the protocol reason when one exists, otherwise the code.
// Descriptions of internal errors are never exposed.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		de = dErrors.New(dErrors.CodeInternal, "internal error")
	}

	resp := errorResponse{Error: string(de.Code)}
	if reason := dErrors.ReasonOf(de); reason != "" {
		resp.Error = reason
	}
	status := dErrors.HTTPStatus(de.Code)
	if status != http.StatusInternalServerError {
		resp.ErrorDescription = de.Message
	}
	WriteJSON(w, status, resp)
}

// DecodeJSON reads a bounded JSON body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
