package httptransport

import (
	"encoding/json"
	"net/http"

	"lifeledger/internal/domain"
	"lifeledger/internal/engine"
	"lifeledger/internal/platform/middleware"
	"lifeledger/internal/transport/http/shared"
	dErrors "lifeledger/pkg/domain-errors"
)

type sellRequest struct {
	Attestation string `json:"attestation"`
	Price       int64  `json:"price"`
}

type buyUsedRequest struct {
	Payment parcelRequest `json:"payment"`
}

type closeRequest struct {
	ReceiptClaim string `json:"receipt_claim"`
}

func (h *Handler) handleSellObject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	receipt, claim, err := h.engine.SellObject(ctx, req.Attestation, req.Price)
	if err != nil {
		h.logger.WarnContext(ctx, "object listing failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"receipt":       receipt,
		"receipt_claim": claim,
	})
}

func (h *Handler) handleBuyUsedObject(w http.ResponseWriter, r *http.Request) {
	h.handleBuyUsed(w, r, domain.KindObject)
}

func (h *Handler) handleBuyUsedPerson(w http.ResponseWriter, r *http.Request) {
	h.handleBuyUsed(w, r, domain.KindPerson)
}

func (h *Handler) handleBuyUsed(w http.ResponseWriter, r *http.Request, kind domain.RegistryKind) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req buyUsedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var purchase *engine.Purchase
	if kind == domain.KindObject {
		purchase, err = h.engine.BuyUsedObject(ctx, id, req.Payment.parcel())
	} else {
		purchase, err = h.engine.BuyUsedPerson(ctx, id, req.Payment.parcel())
	}
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, purchase)
}

func (h *Handler) handleCloseObjectSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.engine.CloseObjectSale(ctx, req.ReceiptClaim)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSellPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	receipt, claim, err := h.engine.SellPerson(ctx, req.Attestation, req.Price)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"receipt":       receipt,
		"receipt_claim": claim,
	})
}

func (h *Handler) handleClosePersonSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.engine.ClosePersonSale(ctx, req.ReceiptClaim)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleMakeChoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Attestation string         `json:"attestation"`
		Choice      string         `json:"choice"`
		Selector    string         `json:"selector"`
		Payment     *parcelRequest `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var payment *domain.CoinParcel
	if req.Payment != nil {
		p := req.Payment.parcel()
		payment = &p
	}
	change, err := h.engine.MakeChoice(ctx, req.Attestation, req.Choice, req.Selector, payment)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"change": change})
}
