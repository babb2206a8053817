package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tiendapos/tiendapos/internal/platform/httpx"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Handler wires HTTP endpoints for the movement log and stock reads.
type Handler struct {
	logger *slog.Logger
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/movements", h.handleListMovements)
	r.Get("/stock", h.handleQuantityOnHand)
}

func (h *Handler) service(r *http.Request) *Service {
	store := tenant.StoreFromContext(r.Context())
	return NewService(NewRepository(store))
}

func (h *Handler) handleListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := MovementFilter{BranchCode: strings.TrimSpace(q.Get("branch"))}
	switch kind := strings.ToUpper(strings.TrimSpace(q.Get("kind"))); kind {
	case "":
	case string(KindEntry), string(KindExit):
		filter.Kind = Kind(kind)
	default:
		httpx.Problem(w, http.StatusBadRequest, "invalid filter", "kind must be ENTRY or EXIT")
		return
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "invalid filter", "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	movements, err := h.service(r).ListMovements(r.Context(), filter)
	if err != nil {
		h.logger.Error("list movements", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	if movements == nil {
		movements = []Movement{}
	}
	httpx.JSON(w, http.StatusOK, movements)
}

func (h *Handler) handleQuantityOnHand(w http.ResponseWriter, r *http.Request) {
	product := strings.TrimSpace(r.URL.Query().Get("product"))
	branch := strings.TrimSpace(r.URL.Query().Get("branch"))
	if product == "" || branch == "" {
		httpx.Problem(w, http.StatusBadRequest, "invalid filter", "product and branch are required")
		return
	}
	qty, err := h.service(r).QuantityOnHand(r.Context(), product, branch)
	if err != nil {
		h.logger.Error("quantity on hand", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"product_code": product,
		"branch_code":  branch,
		"quantity":     qty,
	})
}
