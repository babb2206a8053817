package catalog

import (
	"context"
	"strings"

	"github.com/tiendapos/tiendapos/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	ListActiveProducts(ctx context.Context) ([]Product, error)
	FindProduct(ctx context.Context, code string) (Product, error)
	CreateProduct(ctx context.Context, p Product, initialStock map[string]int64) error
	UpdateProduct(ctx context.Context, code string, p Product) error
	DeactivateProduct(ctx context.Context, code string) error

	ListBranches(ctx context.Context) ([]Branch, error)
	FindBranch(ctx context.Context, code string) (Branch, error)
	CreateBranch(ctx context.Context, b Branch) error
	UpdateBranch(ctx context.Context, code string, b Branch) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, c Category) error

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	FindSupplier(ctx context.Context, code string) (Supplier, error)
	CreateSupplier(ctx context.Context, s Supplier) error
	DeactivateSupplier(ctx context.Context, code string) error

	ListEmployees(ctx context.Context) ([]Employee, error)
	CreateEmployee(ctx context.Context, e Employee) error
	UpdateEmployee(ctx context.Context, code string, e Employee) error
	DeactivateEmployee(ctx context.Context, code string) error
}

// Service coordinates catalog reads and writes for one tenant.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListActiveProducts lists sellable products with per-branch stock.
func (s *Service) ListActiveProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListActiveProducts(ctx)
}

// FindProduct resolves an active product by code. Inactive products
// are reported the same as missing ones so deactivated items cannot be
// sold or purchased.
func (s *Service) FindProduct(ctx context.Context, code string) (Product, error) {
	p, err := s.repo.FindProduct(ctx, strings.TrimSpace(code))
	if err != nil {
		return Product{}, err
	}
	if !p.Active {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

// CreateProduct registers a product and opens a stock row, starting at
// initialStock, for every active branch.
func (s *Service) CreateProduct(ctx context.Context, p Product, initialStock int64) error {
	if p.Code == "" || p.Name == "" {
		return shared.ErrInvalidArgument
	}
	if p.PurchasePrice < 0 || p.SalePrice < 0 {
		return ErrNegativePrice
	}
	if initialStock < 0 {
		return shared.ErrInvalidArgument
	}
	if p.MinimumStock <= 0 {
		p.MinimumStock = 10
	}
	if p.Unit == "" {
		p.Unit = "pz"
	}

	branches, err := s.repo.ListBranches(ctx)
	if err != nil {
		return err
	}
	stock := map[string]int64{}
	for _, b := range branches {
		if b.Active {
			stock[b.Code] = initialStock
		}
	}
	return s.repo.CreateProduct(ctx, p, stock)
}

// UpdateProduct edits a product's mutable fields; the code is immutable.
func (s *Service) UpdateProduct(ctx context.Context, code string, p Product) error {
	if p.PurchasePrice < 0 || p.SalePrice < 0 {
		return ErrNegativePrice
	}
	if p.MinimumStock <= 0 {
		p.MinimumStock = 10
	}
	return s.repo.UpdateProduct(ctx, code, p)
}

// DeactivateProduct soft-deletes a product.
func (s *Service) DeactivateProduct(ctx context.Context, code string) error {
	return s.repo.DeactivateProduct(ctx, code)
}

// ListBranches lists every branch.
func (s *Service) ListBranches(ctx context.Context) ([]Branch, error) {
	return s.repo.ListBranches(ctx)
}

// FindBranch resolves a branch by code.
func (s *Service) FindBranch(ctx context.Context, code string) (Branch, error) {
	return s.repo.FindBranch(ctx, strings.TrimSpace(code))
}

// CreateBranch registers a new branch.
func (s *Service) CreateBranch(ctx context.Context, b Branch) error {
	if b.Code == "" || b.Name == "" {
		return shared.ErrInvalidArgument
	}
	return s.repo.CreateBranch(ctx, b)
}

// UpdateBranch edits a branch's mutable fields.
func (s *Service) UpdateBranch(ctx context.Context, code string, b Branch) error {
	return s.repo.UpdateBranch(ctx, code, b)
}

// ListCategories lists every category.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory registers a new category.
func (s *Service) CreateCategory(ctx context.Context, c Category) error {
	if c.Code == "" || c.Name == "" {
		return shared.ErrInvalidArgument
	}
	return s.repo.CreateCategory(ctx, c)
}

// ListSuppliers lists every supplier.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// FindSupplier resolves an active supplier by code.
func (s *Service) FindSupplier(ctx context.Context, code string) (Supplier, error) {
	sup, err := s.repo.FindSupplier(ctx, strings.TrimSpace(code))
	if err != nil {
		return Supplier{}, err
	}
	if !sup.Active {
		return Supplier{}, ErrSupplierNotFound
	}
	return sup, nil
}

// CreateSupplier registers a new supplier.
func (s *Service) CreateSupplier(ctx context.Context, sup Supplier) error {
	if sup.Code == "" || sup.Name == "" {
		return shared.ErrInvalidArgument
	}
	return s.repo.CreateSupplier(ctx, sup)
}

// DeactivateSupplier soft-deletes a supplier.
func (s *Service) DeactivateSupplier(ctx context.Context, code string) error {
	return s.repo.DeactivateSupplier(ctx, code)
}

// ListEmployees lists every employee.
func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.repo.ListEmployees(ctx)
}

// CreateEmployee registers a new employee.
func (s *Service) CreateEmployee(ctx context.Context, e Employee) error {
	if e.Code == "" || e.Name == "" {
		return shared.ErrInvalidArgument
	}
	if _, err := s.repo.FindBranch(ctx, e.BranchCode); err != nil {
		return err
	}
	return s.repo.CreateEmployee(ctx, e)
}

// UpdateEmployee edits an employee's mutable fields.
func (s *Service) UpdateEmployee(ctx context.Context, code string, e Employee) error {
	return s.repo.UpdateEmployee(ctx, code, e)
}

// DeactivateEmployee soft-deletes an employee.
func (s *Service) DeactivateEmployee(ctx context.Context, code string) error {
	return s.repo.DeactivateEmployee(ctx, code)
}
