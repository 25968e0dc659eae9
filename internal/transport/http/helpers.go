package httptransport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vouch/pkg/domain"
	dErrors "vouch/pkg/domain-errors"
	"vouch/pkg/platform/httputil"
	"vouch/pkg/requestcontext"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// respond writes v with status, or the error envelope when err is set.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, status, v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}

func pathKey(r *http.Request, name string) (domain.PublicKey, error) {
	return domain.ParsePublicKey(chi.URLParam(r, name))
}

func pathHash(r *http.Request, name string) (domain.Hash32, error) {
	return domain.ParseHash32(chi.URLParam(r, name))
}

func pathCampaign(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "campaign"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "campaign id must be an unsigned integer")
	}
	return id, nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultEventLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > maxEventLimit {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "limit must be between 1 and 500")
	}
	return n, nil
}
