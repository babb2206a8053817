package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiendapos/tiendapos/internal/shared"
)

type fakeRepo struct {
	products     map[string]Product
	productStock map[string]map[string]int64
	branches     []Branch
	categories   []Category
	suppliers    map[string]Supplier
	employees    map[string]Employee
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products:     map[string]Product{},
		productStock: map[string]map[string]int64{},
		suppliers:    map[string]Supplier{},
		employees:    map[string]Employee{},
		branches: []Branch{
			{Code: "SUC001", Name: "Centro", Active: true},
			{Code: "SUC002", Name: "Norte", Active: true},
			{Code: "SUC099", Name: "Cerrada", Active: false},
		},
	}
}

func (f *fakeRepo) ListActiveProducts(context.Context) ([]Product, error) {
	var out []Product
	for _, p := range f.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindProduct(_ context.Context, code string) (Product, error) {
	p, ok := f.products[code]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

func (f *fakeRepo) CreateProduct(_ context.Context, p Product, initialStock map[string]int64) error {
	if _, ok := f.products[p.Code]; ok {
		return ErrCodeTaken
	}
	f.products[p.Code] = p
	f.productStock[p.Code] = initialStock
	return nil
}

func (f *fakeRepo) UpdateProduct(_ context.Context, code string, p Product) error {
	existing, ok := f.products[code]
	if !ok {
		return ErrProductNotFound
	}
	p.Code = existing.Code
	p.Active = existing.Active
	f.products[code] = p
	return nil
}

func (f *fakeRepo) DeactivateProduct(_ context.Context, code string) error {
	p, ok := f.products[code]
	if !ok {
		return ErrProductNotFound
	}
	p.Active = false
	f.products[code] = p
	return nil
}

func (f *fakeRepo) ListBranches(context.Context) ([]Branch, error) {
	return f.branches, nil
}

func (f *fakeRepo) FindBranch(_ context.Context, code string) (Branch, error) {
	for _, b := range f.branches {
		if b.Code == code {
			return b, nil
		}
	}
	return Branch{}, ErrBranchNotFound
}

func (f *fakeRepo) CreateBranch(_ context.Context, b Branch) error {
	f.branches = append(f.branches, b)
	return nil
}

func (f *fakeRepo) UpdateBranch(_ context.Context, code string, b Branch) error {
	for i := range f.branches {
		if f.branches[i].Code == code {
			b.Code = code
			f.branches[i] = b
			return nil
		}
	}
	return ErrBranchNotFound
}

func (f *fakeRepo) ListCategories(context.Context) ([]Category, error) {
	return f.categories, nil
}

func (f *fakeRepo) CreateCategory(_ context.Context, c Category) error {
	f.categories = append(f.categories, c)
	return nil
}

func (f *fakeRepo) ListSuppliers(context.Context) ([]Supplier, error) {
	var out []Supplier
	for _, s := range f.suppliers {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRepo) FindSupplier(_ context.Context, code string) (Supplier, error) {
	s, ok := f.suppliers[code]
	if !ok {
		return Supplier{}, ErrSupplierNotFound
	}
	return s, nil
}

func (f *fakeRepo) CreateSupplier(_ context.Context, s Supplier) error {
	f.suppliers[s.Code] = s
	return nil
}

func (f *fakeRepo) DeactivateSupplier(_ context.Context, code string) error {
	s, ok := f.suppliers[code]
	if !ok {
		return ErrSupplierNotFound
	}
	s.Active = false
	f.suppliers[code] = s
	return nil
}

func (f *fakeRepo) ListEmployees(context.Context) ([]Employee, error) {
	var out []Employee
	for _, e := range f.employees {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRepo) CreateEmployee(_ context.Context, e Employee) error {
	f.employees[e.Code] = e
	return nil
}

func (f *fakeRepo) UpdateEmployee(_ context.Context, code string, e Employee) error {
	if _, ok := f.employees[code]; !ok {
		return ErrEmployeeNotFound
	}
	e.Code = code
	f.employees[code] = e
	return nil
}

func (f *fakeRepo) DeactivateEmployee(_ context.Context, code string) error {
	e, ok := f.employees[code]
	if !ok {
		return ErrEmployeeNotFound
	}
	e.Active = false
	f.employees[code] = e
	return nil
}

func TestFindProductHidesInactive(t *testing.T) {
	repo := newFakeRepo()
	repo.products["PROD001"] = Product{Code: "PROD001", Name: "Arroz", Active: true}
	repo.products["PROD002"] = Product{Code: "PROD002", Name: "Viejo", Active: false}
	svc := NewService(repo)

	_, err := svc.FindProduct(context.Background(), "PROD001")
	require.NoError(t, err)

	_, err = svc.FindProduct(context.Background(), "PROD002")
	require.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.FindProduct(context.Background(), "PROD999")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateProductSeedsStockForActiveBranchesOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	err := svc.CreateProduct(context.Background(), Product{
		Code: "PROD010", Name: "Cafe 250g", SalePrice: 5500, PurchasePrice: 3000, Active: true,
	}, 12)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"SUC001": 12, "SUC002": 12}, repo.productStock["PROD010"])
}

func TestCreateProductDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	err := svc.CreateProduct(context.Background(), Product{Code: "PROD010", Name: "Cafe", Active: true}, 0)
	require.NoError(t, err)
	created := repo.products["PROD010"]
	require.Equal(t, int64(10), created.MinimumStock)
	require.Equal(t, "pz", created.Unit)
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	svc := NewService(newFakeRepo())
	err := svc.CreateProduct(context.Background(), Product{Code: "PROD010", Name: "Cafe", SalePrice: -1}, 0)
	require.ErrorIs(t, err, ErrNegativePrice)
}

func TestCreateProductRejectsDuplicateCode(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	require.NoError(t, svc.CreateProduct(context.Background(), Product{Code: "PROD010", Name: "Cafe"}, 0))
	require.ErrorIs(t, svc.CreateProduct(context.Background(), Product{Code: "PROD010", Name: "Otro"}, 0), ErrCodeTaken)
}

func TestCreateProductRequiresCodeAndName(t *testing.T) {
	svc := NewService(newFakeRepo())
	require.ErrorIs(t, svc.CreateProduct(context.Background(), Product{Name: "Sin codigo"}, 0), shared.ErrInvalidArgument)
	require.ErrorIs(t, svc.CreateProduct(context.Background(), Product{Code: "PROD010"}, 0), shared.ErrInvalidArgument)
}

func TestCreateEmployeeValidatesBranch(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	err := svc.CreateEmployee(context.Background(), Employee{Code: "EMP010", Name: "Ana", BranchCode: "SUC404"})
	require.ErrorIs(t, err, ErrBranchNotFound)

	err = svc.CreateEmployee(context.Background(), Employee{Code: "EMP010", Name: "Ana", BranchCode: "SUC001"})
	require.NoError(t, err)
}

func TestFindSupplierHidesInactive(t *testing.T) {
	repo := newFakeRepo()
	repo.suppliers["PROV001"] = Supplier{Code: "PROV001", Name: "Norte", Active: true}
	repo.suppliers["PROV002"] = Supplier{Code: "PROV002", Name: "Cerrado", Active: false}
	svc := NewService(repo)

	_, err := svc.FindSupplier(context.Background(), "PROV001")
	require.NoError(t, err)

	_, err = svc.FindSupplier(context.Background(), "PROV002")
	require.ErrorIs(t, err, ErrSupplierNotFound)
}
