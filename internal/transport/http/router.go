// Package httptransport is the thin HTTP layer over the engine. Handlers
// decode requests, delegate and translate coded errors; no business logic
// lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lifeledger/internal/engine"
	"lifeledger/internal/platform/metrics"
	"lifeledger/internal/platform/middleware"
	"lifeledger/internal/transport/http/shared"
	dErrors "lifeledger/pkg/domain-errors"
)

type Handler struct {
	engine  *engine.Engine
	logger  *slog.Logger
	metrics *metrics.Metrics
	roles   middleware.RoleValidator
}

func NewHandler(eng *engine.Engine, logger *slog.Logger, m *metrics.Metrics, roles middleware.RoleValidator) *Handler {
	return &Handler{engine: eng, logger: logger, metrics: m, roles: roles}
}

// NewRouter wires the full public operation surface plus the owner and
// operator tiers.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger))
	if h.metrics != nil {
		r.Use(middleware.Latency(h.metrics))
	}
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// public surface
	r.Get("/catalog", h.handleListCatalog)
	r.Get("/catalog/{name}", h.handleGetCatalogEntry)
	r.Get("/people/{id}", h.handleGetPerson)
	r.Get("/objects/{id}", h.handleGetObject)

	r.Post("/eggs/buy", h.handleBuyEgg)
	r.Post("/objects/buy", h.handleBuyObjects)
	r.Post("/coins/buy", h.handleBuyCoins)

	r.Post("/people/claim-name", h.handleClaimName)
	r.Post("/bank/deposit", h.handleBankDeposit)
	r.Post("/bank/withdraw", h.handleBankWithdraw)

	r.Post("/objects/mortgage", h.handleMortgage)
	r.Post("/objects/rent/allow", h.handleAllowRent)
	r.Post("/objects/rent", h.handleRent)
	r.Post("/objects/rent/terminate", h.handleTerminateRent)

	r.Post("/market/objects/sell", h.handleSellObject)
	r.Post("/market/objects/{id}/buy", h.handleBuyUsedObject)
	r.Post("/market/objects/close", h.handleCloseObjectSale)
	r.Post("/market/people/sell", h.handleSellPerson)
	r.Post("/market/people/{id}/buy", h.handleBuyUsedPerson)
	r.Post("/market/people/close", h.handleClosePersonSale)

	r.Post("/choices/make", h.handleMakeChoice)

	// operator tier
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(h.roles, middleware.RoleOperator, h.logger))
		r.Post("/ops/people", h.handleMintPerson)
		r.Post("/ops/objects", h.handleMintObject)
		r.Patch("/ops/people/{id}", h.handleUpdatePersonFields)
		r.Patch("/ops/objects/{id}", h.handleUpdateObjectFields)
		r.Post("/ops/attestations", h.handleIssueAttestation)
	})

	// owner tier
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(h.roles, middleware.RoleOwner, h.logger))
		r.Post("/admin/catalog", h.handleAddObjectType)
		r.Put("/admin/catalog/{name}", h.handleUpdateObjectType)
		r.Put("/admin/rate", h.handleSetRate)
		r.Post("/admin/pool/withdraw", h.handleWithdrawPool)
		r.Put("/admin/choices", h.handleAddChoice)
		r.Get("/admin/audit", h.handleAuditTrail)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid id")
	}
	return id, nil
}
