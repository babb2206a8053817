package purchases

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tiendapos/tiendapos/internal/catalog"
	"github.com/tiendapos/tiendapos/internal/money"
	"github.com/tiendapos/tiendapos/internal/observability"
	"github.com/tiendapos/tiendapos/internal/platform/httpx"
	"github.com/tiendapos/tiendapos/internal/shared"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Handler wires HTTP endpoints for goods receipts.
type Handler struct {
	logger   *slog.Logger
	validate *validator.Validate
	metrics  *observability.Metrics
}

// NewHandler constructs the purchases handler.
func NewHandler(logger *slog.Logger, validate *validator.Validate, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, validate: validate, metrics: metrics}
}

// MountRoutes registers purchase routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCommit)
	r.Get("/{id}", h.handleFind)
}

func (h *Handler) service(r *http.Request) *Service {
	store := tenant.StoreFromContext(r.Context())
	cat := catalog.NewService(catalog.NewRepository(store))
	return NewService(NewRepository(store), cat)
}

type commitRequest struct {
	SupplierCode string        `json:"supplier_code" validate:"required"`
	BranchCode   string        `json:"branch_code" validate:"required"`
	Lines        []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

type lineRequest struct {
	ProductCode string      `json:"product_code" validate:"required"`
	Quantity    int64       `json:"quantity" validate:"required,gt=0"`
	UnitCost    money.Cents `json:"unit_cost" validate:"gte=0"`
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}

	input := CommitInput{
		SupplierCode: req.SupplierCode,
		BranchCode:   req.BranchCode,
		RecordedBy:   shared.SessionFromContext(r.Context()).Username(),
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, LineInput{
			ProductCode: line.ProductCode,
			Quantity:    line.Quantity,
			UnitCost:    line.UnitCost,
		})
	}

	purchase, err := h.service(r).Commit(r.Context(), input)
	if err != nil {
		h.respondCommitError(w, err)
		return
	}
	h.metrics.RecordCommit("purchase")
	h.logger.Info("purchase committed",
		slog.String("purchase_id", purchase.ID),
		slog.String("supplier", purchase.SupplierCode),
		slog.Int("lines", len(purchase.Lines)))
	httpx.JSON(w, http.StatusCreated, purchase)
}

func (h *Handler) respondCommitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrBranchNotFound),
		errors.Is(err, catalog.ErrSupplierNotFound):
		httpx.Problem(w, http.StatusUnprocessableEntity, "unknown reference", err.Error())
	case errors.Is(err, ErrEmptyPurchase),
		errors.Is(err, ErrMissingSupplier),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPrice):
		httpx.Problem(w, http.StatusBadRequest, "invalid purchase", err.Error())
	default:
		h.logger.Error("commit purchase", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.service(r).ListPurchases(r.Context(), 0)
	if err != nil {
		h.logger.Error("list purchases", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	if purchases == nil {
		purchases = []Purchase{}
	}
	httpx.JSON(w, http.StatusOK, purchases)
}

func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	purchase, err := h.service(r).FindPurchase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrPurchaseNotFound) {
			httpx.Problem(w, http.StatusNotFound, "purchase not found", "")
			return
		}
		h.logger.Error("find purchase", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, purchase)
}
