package httptransport

import (
	"context"
	"net/http"

	"vouch/internal/protocol/attestation"
	"vouch/pkg/platform/httputil"
)

func (h *Handler) handleInitializeConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Config.Initialize(r.Context())
	h.respond(w, r, http.StatusCreated, cfg, err)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Config.Get(r.Context())
	h.respond(w, r, http.StatusOK, cfg, err)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Config.Pause(r.Context())
	h.respond(w, r, http.StatusOK, cfg, err)
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.Config.Unpause(r.Context())
	h.respond(w, r, http.StatusOK, cfg, err)
}

func (h *Handler) handleUpdateRateLimits(w http.ResponseWriter, r *http.Request) {
	var req updateRateLimitsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	cfg, err := h.svc.Config.UpdateRateLimits(r.Context(), req.MaxProofsPerDay, req.CooldownSeconds)
	h.respond(w, r, http.StatusOK, cfg, err)
}

func (h *Handler) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	var req transferAdminRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	cfg, err := h.svc.Config.TransferAdmin(r.Context(), req.NewAdmin)
	h.respond(w, r, http.StatusOK, cfg, err)
}

func (h *Handler) handleAddVerifier(w http.ResponseWriter, r *http.Request) {
	var req addVerifierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.svc.Verifiers.Add(r.Context(), req.Verifier)
	h.respond(w, r, http.StatusCreated, v, err)
}

func (h *Handler) handleRemoveVerifier(w http.ResponseWriter, r *http.Request) {
	id, err := pathKey(r, "verifier")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.svc.Verifiers.Remove(r.Context(), id)
	h.respond(w, r, http.StatusOK, v, err)
}

func (h *Handler) handleGetVerifier(w http.ResponseWriter, r *http.Request) {
	id, err := pathKey(r, "verifier")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	v, err := h.svc.Verifiers.Get(r.Context(), id)
	h.respond(w, r, http.StatusOK, v, err)
}

func (h *Handler) handleInitRateLimit(w http.ResponseWriter, r *http.Request) {
	wallet, err := pathKey(r, "wallet")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.svc.RateLimits.Init(r.Context(), wallet)
	h.respond(w, r, http.StatusCreated, rec, err)
}

func (h *Handler) handleGetRateLimit(w http.ResponseWriter, r *http.Request) {
	wallet, err := pathKey(r, "wallet")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.svc.RateLimits.Get(r.Context(), wallet)
	h.respond(w, r, http.StatusOK, rec, err)
}

func (h *Handler) handleCreateCommitment(w http.ResponseWriter, r *http.Request) {
	var req commitmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Commitments.Create(r.Context(), req.Commitment)
	h.respond(w, r, http.StatusCreated, c, err)
}

func (h *Handler) handleGetCommitment(w http.ResponseWriter, r *http.Request) {
	value, err := pathHash(r, "commitment")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Commitments.Get(r.Context(), value)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handler) handleInitNullifier(w http.ResponseWriter, r *http.Request) {
	var req nullifierRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.svc.Attestations.InitNullifier(r.Context(), req.Nullifier)
	h.respond(w, r, http.StatusCreated, n, err)
}

func (h *Handler) handleGetNullifier(w http.ResponseWriter, r *http.Request) {
	value, err := pathHash(r, "nullifier")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.svc.Attestations.GetNullifier(r.Context(), value)
	h.respond(w, r, http.StatusOK, n, err)
}

func (h *Handler) handleRecordAttestation(w http.ResponseWriter, r *http.Request) {
	var req recordAttestationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	receipt, err := h.svc.Attestations.RecordAttestation(r.Context(), attestation.RecordRequest{
		AttestationHash: req.AttestationHash,
		ProofTypeCode:   req.ProofType,
		Nullifier:       req.Nullifier,
		Signature:       req.Signature,
		Verifier:        req.Verifier,
		Recipient:       req.Recipient,
		Proof:           req.Proof,
	})
	h.respond(w, r, http.StatusCreated, receipt, err)
}

func (h *Handler) handleVerifyDeveloperReputation(w http.ResponseWriter, r *http.Request) {
	h.handleDirectProof(w, r, h.svc.Attestations.VerifyDeveloperReputation)
}

func (h *Handler) handleVerifyWhaleTrading(w http.ResponseWriter, r *http.Request) {
	h.handleDirectProof(w, r, h.svc.Attestations.VerifyWhaleTrading)
}

type directVerifyFunc func(ctx context.Context, req attestation.DirectRequest) (*attestation.Receipt, error)

func (h *Handler) handleDirectProof(w http.ResponseWriter, r *http.Request, verify directVerifyFunc) {
	var req directProofRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	receipt, err := verify(r.Context(), attestation.DirectRequest{
		Nullifier:    req.Nullifier,
		Recipient:    req.Recipient,
		Proof:        req.Proof,
		PublicInputs: req.PublicInputs,
		MinThreshold: req.MinThreshold,
	})
	h.respond(w, r, http.StatusCreated, receipt, err)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	events, err := h.svc.Events.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := eventsResponse{Events: make([]eventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, eventResponse{
			ID:         e.ID,
			Category:   string(e.Category),
			Timestamp:  e.Timestamp.Unix(),
			Action:     e.Action,
			Subject:    e.Subject,
			RequestID:  e.RequestID,
			Attributes: e.Attributes,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
