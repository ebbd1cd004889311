package httptransport

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lifeledger/internal/catalog"
	"lifeledger/internal/platform/middleware"
	"lifeledger/internal/transport/http/shared"
	dErrors "lifeledger/pkg/domain-errors"
)

type objectTypeRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Price        int64  `json:"price"`
	PriceBand    string `json:"price_band"`
	ImageRef     string `json:"image_ref"`
	Purchasable  bool   `json:"purchasable"`
	Mortgageable bool   `json:"mortgageable"`
	Rentable     bool   `json:"rentable"`
}

func (h *Handler) handleAddObjectType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req objectTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	entry, err := h.engine.AddObjectType(ctx, catalog.AddParams{
		Name:         req.Name,
		Category:     req.Category,
		Price:        req.Price,
		PriceBand:    req.PriceBand,
		ImageRef:     req.ImageRef,
		Purchasable:  req.Purchasable,
		Mortgageable: req.Mortgageable,
		Rentable:     req.Rentable,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add object type failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleUpdateObjectType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req objectTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	entry, err := h.engine.UpdateObjectType(ctx, catalog.UpdateParams{
		Name:         chi.URLParam(r, "name"),
		Price:        req.Price,
		Purchasable:  req.Purchasable,
		Mortgageable: req.Mortgageable,
		Rentable:     req.Rentable,
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.ListObjectTypes(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleGetCatalogEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.engine.GetObjectType(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) handleSetRate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Rate int64 `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.engine.SetCoinRate(ctx, req.Rate); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWithdrawPool(w http.ResponseWriter, r *http.Request) {
	parcel, err := h.engine.WithdrawPool(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, parcel)
}

func (h *Handler) handleAddChoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Name  string `json:"name"`
		Price *int64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.engine.AddChoice(ctx, req.Name, req.Price); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid limit"))
			return
		}
		limit = parsed
	}
	events, err := h.engine.AuditTrail(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, events)
}
