package httptransport

import (
	"net/http"

	airdrop "vouch/internal/airdrop/service"
	"vouch/pkg/platform/httputil"
)

func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Airdrops.CreateCampaign(r.Context(), airdrop.CreateCampaignRequest{
		ID:                   req.ID,
		Name:                 req.Name,
		Asset:                req.Asset,
		BaseAmount:           req.BaseAmount,
		DevBonus:             req.DevBonus,
		WhaleBonus:           req.WhaleBonus,
		RegistrationDeadline: req.RegistrationDeadline,
	})
	h.respond(w, r, http.StatusCreated, c, err)
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathCampaign(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Airdrops.GetCampaign(r.Context(), id)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handler) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathCampaign(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	key, err := pathHash(r, "key")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	reg, err := h.svc.Airdrops.GetRegistration(r.Context(), id, key)
	h.respond(w, r, http.StatusOK, reg, err)
}

func (h *Handler) handleRegisterVerified(w http.ResponseWriter, r *http.Request) {
	id, err := pathCampaign(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req registerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	reg, err := h.svc.Airdrops.RegisterVerified(r.Context(), id, req.Nullifier, req.PayoutAddress)
	h.respond(w, r, http.StatusCreated, reg, err)
}

func (h *Handler) handleRegisterOpen(w http.ResponseWriter, r *http.Request) {
	id, err := pathCampaign(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req registerOpenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	reg, err := h.svc.Airdrops.RegisterOpen(r.Context(), id, req.PayoutAddress)
	h.respond(w, r, http.StatusCreated, reg, err)
}

func (h *Handler) handleCloseRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := pathCampaign(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Airdrops.CloseRegistration(r.Context(), id)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handler) handleCompleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathCampaign(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Airdrops.CompleteCampaign(r.Context(), id)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handler) handleFundCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := pathCampaign(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req amountRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Airdrops.FundCampaign(r.Context(), id, req.Amount)
	h.respond(w, r, http.StatusOK, c, err)
}

func (h *Handler) handleMarkDistributed(w http.ResponseWriter, r *http.Request) {
	id, err := pathCampaign(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	key, err := pathHash(r, "key")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req distributedRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	reg, err := h.svc.Airdrops.MarkDistributed(r.Context(), id, key, req.TxRef)
	h.respond(w, r, http.StatusOK, reg, err)
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, err := pathCampaign(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	key, err := pathHash(r, "key")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	receipt, err := h.svc.Airdrops.Claim(r.Context(), id, key)
	h.respond(w, r, http.StatusOK, receipt, err)
}

func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	asset, err := pathKey(r, "asset")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	owner, err := pathKey(r, "owner")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	acct, err := h.svc.Assets.Balance(r.Context(), asset, owner)
	h.respond(w, r, http.StatusOK, acct, err)
}

func (h *Handler) handleDeposit(w http.ResponseWriter, r *http.Request) {
	asset, err := pathKey(r, "asset")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req depositRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	acct, err := h.svc.Assets.Deposit(r.Context(), asset, req.Owner, req.Amount)
	h.respond(w, r, http.StatusOK, acct, err)
}
