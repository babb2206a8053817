package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tiendapos/tiendapos/internal/money"
	"github.com/tiendapos/tiendapos/internal/platform/httpx"
	"github.com/tiendapos/tiendapos/internal/shared"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Handler wires HTTP endpoints for catalog maintenance.
type Handler struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, validate: validate}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleListProducts)
		r.Post("/", h.handleCreateProduct)
		r.Get("/{code}", h.handleFindProduct)
		r.Put("/{code}", h.handleUpdateProduct)
		r.Delete("/{code}", h.handleDeactivateProduct)
	})
	r.Route("/branches", func(r chi.Router) {
		r.Get("/", h.handleListBranches)
		r.Post("/", h.handleCreateBranch)
		r.Put("/{code}", h.handleUpdateBranch)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.handleListCategories)
		r.Post("/", h.handleCreateCategory)
	})
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.handleListSuppliers)
		r.Post("/", h.handleCreateSupplier)
		r.Delete("/{code}", h.handleDeactivateSupplier)
	})
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleListEmployees)
		r.Post("/", h.handleCreateEmployee)
		r.Put("/{code}", h.handleUpdateEmployee)
		r.Delete("/{code}", h.handleDeactivateEmployee)
	})
}

func (h *Handler) service(r *http.Request) *Service {
	return NewService(NewRepository(tenant.StoreFromContext(r.Context())))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrBranchNotFound),
		errors.Is(err, ErrSupplierNotFound),
		errors.Is(err, ErrEmployeeNotFound):
		httpx.Problem(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, ErrCodeTaken):
		httpx.Problem(w, http.StatusConflict, "code already in use", err.Error())
	case errors.Is(err, ErrNegativePrice), errors.Is(err, shared.ErrInvalidArgument):
		httpx.Problem(w, http.StatusBadRequest, "invalid request", err.Error())
	default:
		h.logger.Error("catalog request", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
	}
}

type productRequest struct {
	Code          string      `json:"code" validate:"required,max=30"`
	Name          string      `json:"name" validate:"required,max=120"`
	CategoryCode  string      `json:"category_code"`
	PurchasePrice money.Cents `json:"purchase_price" validate:"gte=0"`
	SalePrice     money.Cents `json:"sale_price" validate:"gte=0"`
	Unit          string      `json:"unit"`
	MinimumStock  int64       `json:"minimum_stock" validate:"gte=0"`
	InitialStock  int64       `json:"initial_stock" validate:"gte=0"`
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service(r).ListActiveProducts(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleFindProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service(r).FindProduct(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}
	product := Product{
		Code:          req.Code,
		Name:          req.Name,
		CategoryCode:  req.CategoryCode,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Unit:          req.Unit,
		MinimumStock:  req.MinimumStock,
		Active:        true,
	}
	if err := h.service(r).CreateProduct(r.Context(), product, req.InitialStock); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	product := Product{
		Name:          req.Name,
		CategoryCode:  req.CategoryCode,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Unit:          req.Unit,
		MinimumStock:  req.MinimumStock,
	}
	if err := h.service(r).UpdateProduct(r.Context(), chi.URLParam(r, "code"), product); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeactivateProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service(r).DeactivateProduct(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type branchRequest struct {
	Code    string `json:"code" validate:"required,max=30"`
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (h *Handler) handleListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.service(r).ListBranches(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if branches == nil {
		branches = []Branch{}
	}
	httpx.JSON(w, http.StatusOK, branches)
}

func (h *Handler) handleCreateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}
	branch := Branch{Code: req.Code, Name: req.Name, Address: req.Address, Phone: req.Phone, Active: true}
	if err := h.service(r).CreateBranch(r.Context(), branch); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, branch)
}

func (h *Handler) handleUpdateBranch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	branch := Branch{Name: req.Name, Address: req.Address, Phone: req.Phone, Active: true}
	if err := h.service(r).UpdateBranch(r.Context(), chi.URLParam(r, "code"), branch); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Code        string `json:"code" validate:"required,max=30"`
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description"`
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service(r).ListCategories(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if categories == nil {
		categories = []Category{}
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}
	category := Category{Code: req.Code, Name: req.Name, Description: req.Description}
	if err := h.service(r).CreateCategory(r.Context(), category); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, category)
}

type supplierRequest struct {
	Code    string `json:"code" validate:"required,max=30"`
	Name    string `json:"name" validate:"required,max=120"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
}

func (h *Handler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service(r).ListSuppliers(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if suppliers == nil {
		suppliers = []Supplier{}
	}
	httpx.JSON(w, http.StatusOK, suppliers)
}

func (h *Handler) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}
	supplier := Supplier{
		Code:    req.Code,
		Name:    req.Name,
		Contact: req.Contact,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Active:  true,
	}
	if err := h.service(r).CreateSupplier(r.Context(), supplier); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, supplier)
}

func (h *Handler) handleDeactivateSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.service(r).DeactivateSupplier(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type employeeRequest struct {
	Code       string      `json:"code" validate:"required,max=30"`
	Name       string      `json:"name" validate:"required,max=120"`
	Role       string      `json:"role"`
	BranchCode string      `json:"branch_code" validate:"required"`
	Phone      string      `json:"phone"`
	Email      string      `json:"email" validate:"omitempty,email"`
	Salary     money.Cents `json:"salary" validate:"gte=0"`
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service(r).ListEmployees(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if employees == nil {
		employees = []Employee{}
	}
	httpx.JSON(w, http.StatusOK, employees)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "validation failed", err.Error())
		return
	}
	employee := Employee{
		Code:       req.Code,
		Name:       req.Name,
		Role:       req.Role,
		BranchCode: req.BranchCode,
		Phone:      req.Phone,
		Email:      req.Email,
		Salary:     req.Salary,
		Active:     true,
	}
	if err := h.service(r).CreateEmployee(r.Context(), employee); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, employee)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	employee := Employee{
		Name:       req.Name,
		Role:       req.Role,
		BranchCode: req.BranchCode,
		Phone:      req.Phone,
		Email:      req.Email,
		Salary:     req.Salary,
	}
	if err := h.service(r).UpdateEmployee(r.Context(), chi.URLParam(r, "code"), employee); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.service(r).DeactivateEmployee(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
