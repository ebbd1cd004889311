package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"lifeledger/internal/domain"
	"lifeledger/internal/platform/middleware"
	"lifeledger/internal/registry"
	"lifeledger/internal/transport/http/shared"
	dErrors "lifeledger/pkg/domain-errors"
)

type parcelRequest struct {
	Denom  string `json:"denom"`
	Amount int64  `json:"amount"`
}

func (p parcelRequest) parcel() domain.CoinParcel {
	return domain.CoinParcel{Denom: p.Denom, Amount: p.Amount}
}

func (h *Handler) handleBuyEgg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Payment parcelRequest `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	person, change, err := h.engine.BuyEgg(ctx, req.Payment.parcel())
	if err != nil {
		h.logger.WarnContext(ctx, "egg purchase failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"person": person,
		"change": change,
	})
}

func (h *Handler) handleBuyObjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		TypeName  string        `json:"type_name"`
		Count     int           `json:"count"`
		Mortgaged bool          `json:"mortgaged"`
		Payment   parcelRequest `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	objects, change, err := h.engine.BuyObjects(ctx, req.TypeName, req.Count, req.Mortgaged, req.Payment.parcel())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"objects": objects,
		"change":  change,
	})
}

func (h *Handler) handleBuyCoins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Payment parcelRequest `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	coins, err := h.engine.BuyCoins(ctx, req.Payment.parcel())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, coins)
}

func (h *Handler) handleClaimName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Attestation string `json:"attestation"`
		Name        string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.engine.ClaimName(ctx, req.Attestation, req.Name); err != nil {
		h.logger.WarnContext(ctx, "claim name failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBankDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Attestation string        `json:"attestation"`
		Payment     parcelRequest `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.engine.BankDeposit(ctx, req.Attestation, req.Payment.parcel()); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBankWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Attestation string `json:"attestation"`
		Amount      int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.engine.BankWithdraw(ctx, req.Attestation, req.Amount); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMortgage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Attestation   string  `json:"attestation"`
		PayoutAccount *uint64 `json:"payout_account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	payout, err := h.engine.Mortgage(ctx, req.Attestation, req.PayoutAccount)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"payout": payout})
}

func (h *Handler) handleAllowRent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Attestation   string  `json:"attestation"`
		Allow         bool    `json:"allow"`
		DailyPrice    *int64  `json:"daily_price"`
		NotifyAccount *uint64 `json:"notify_account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.engine.AllowRent(ctx, req.Attestation, req.Allow, req.DailyPrice, req.NotifyAccount); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Attestation string `json:"attestation"`
		TypeName    string `json:"type_name"`
		ObjectID    uint64 `json:"object_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.engine.Rent(ctx, req.Attestation, req.TypeName, req.ObjectID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleTerminateRent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Attestation string `json:"attestation"`
		ObjectID    uint64 `json:"object_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.engine.TerminateRent(ctx, req.Attestation, req.ObjectID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	person, err := h.engine.GetPerson(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, person)
}

func (h *Handler) handleGetObject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	object, err := h.engine.GetObject(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, object)
}

func (h *Handler) handleMintPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		FatherID      uint64 `json:"father_id"`
		MotherID      uint64 `json:"mother_id"`
		HolderAccount string `json:"holder_account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	person, err := h.engine.MintPerson(ctx, req.FatherID, req.MotherID, req.HolderAccount)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, person)
}

func (h *Handler) handleMintObject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		TypeName      string `json:"type_name"`
		Mortgaged     bool   `json:"mortgaged"`
		HolderAccount string `json:"holder_account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	object, err := h.engine.MintObject(ctx, req.TypeName, req.Mortgaged, req.HolderAccount)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, object)
}

func (h *Handler) handleUpdatePersonFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		Fields    map[string]string `json:"fields"`
		PartnerID *uint64           `json:"partner_id"`
		ImageRef  *string           `json:"image_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	update := registry.PersonFieldUpdate{
		Fields:    req.Fields,
		PartnerID: req.PartnerID,
		ImageRef:  req.ImageRef,
	}
	if err := h.engine.UpdatePersonFields(ctx, id, update); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateObjectFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		Mortgaged      *bool   `json:"mortgaged"`
		RentOccupantID *uint64 `json:"rent_occupant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.engine.UpdateObjectFields(ctx, id, req.Mortgaged, req.RentOccupantID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleIssueAttestation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Registry   string `json:"registry"`
		RecordID   uint64 `json:"record_id"`
		TTLSeconds int64  `json:"ttl_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	token, err := h.engine.IssueOwnership(ctx, domain.RegistryKind(req.Registry), req.RecordID, ttl)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]string{"attestation": token})
}
