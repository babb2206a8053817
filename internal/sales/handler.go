package sales

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tiendapos/tiendapos/internal/catalog"
	"github.com/tiendapos/tiendapos/internal/ledger"
	"github.com/tiendapos/tiendapos/internal/observability"
	"github.com/tiendapos/tiendapos/internal/platform/httpx"
	"github.com/tiendapos/tiendapos/internal/shared"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Handler wires HTTP endpoints for checkout.
type Handler struct {
	logger   *slog.Logger
	validate *validator.Validate
	metrics  *observability.Metrics
}

// NewHandler constructs the sales handler.
func NewHandler(logger *slog.Logger, validate *validator.Validate, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, validate: validate, metrics: metrics}
}

// MountRoutes registers sales routes.
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
	BranchCode   string        `json:"branch_code" validate:"required"`
	EmployeeCode string        `json:"employee_code"`
	Lines        []lineRequest `json:"lines" validate:"required,min=1,dive"`
}

type lineRequest struct {
	ProductCode string `json:"product_code" validate:"required"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0"`
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
		BranchCode:   req.BranchCode,
		EmployeeCode: req.EmployeeCode,
		RecordedBy:   shared.SessionFromContext(r.Context()).Username(),
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, LineInput{ProductCode: line.ProductCode, Quantity: line.Quantity})
	}

	sale, err := h.service(r).Commit(r.Context(), input)
	if err != nil {
		h.respondCommitError(w, err)
		return
	}
	h.metrics.RecordCommit("sale")
	h.logger.Info("sale committed",
		slog.String("sale_id", sale.ID),
		slog.String("branch", sale.BranchCode),
		slog.Int("lines", len(sale.Lines)))
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) respondCommitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "insufficient stock", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrBranchNotFound):
		httpx.Problem(w, http.StatusUnprocessableEntity, "unknown reference", err.Error())
	case errors.Is(err, ErrEmptyDraft), errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "invalid sale", err.Error())
	default:
		h.logger.Error("commit sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	salesList, err := h.service(r).ListSales(r.Context(), 0)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	if salesList == nil {
		salesList = []Sale{}
	}
	httpx.JSON(w, http.StatusOK, salesList)
}

func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service(r).FindSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrSaleNotFound) {
			httpx.Problem(w, http.StatusNotFound, "sale not found", "")
			return
		}
		h.logger.Error("find sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
