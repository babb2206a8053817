package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Repository persists catalog data in the tenant's schema.
type Repository struct {
	store *tenant.Store
}

// NewRepository constructs a Repository bound to one tenant.
func NewRepository(store *tenant.Store) *Repository {
	return &Repository{store: store}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// --- Products ---

// ListActiveProducts returns active products with their per-branch stock.
func (r *Repository) ListActiveProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT code, name, category_code, purchase_price_cents, sale_price_cents, unit, minimum_stock, active, registered_at
		 FROM %s WHERE active ORDER BY code`, r.store.Table("products")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	index := map[string]int{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Code, &p.Name, &p.CategoryCode, &p.PurchasePrice, &p.SalePrice, &p.Unit, &p.MinimumStock, &p.Active, &p.RegisteredAt); err != nil {
			return nil, err
		}
		p.StockByBranch = map[string]int64{}
		index[p.Code] = len(products)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stockRows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT product_code, branch_code, quantity FROM %s`, r.store.Table("stock_levels")))
	if err != nil {
		return nil, err
	}
	defer stockRows.Close()
	for stockRows.Next() {
		var productCode, branchCode string
		var qty int64
		if err := stockRows.Scan(&productCode, &branchCode, &qty); err != nil {
			return nil, err
		}
		if i, ok := index[productCode]; ok {
			products[i].StockByBranch[branchCode] = qty
		}
	}
	return products, stockRows.Err()
}

// FindProduct returns the product for code regardless of active flag.
func (r *Repository) FindProduct(ctx context.Context, code string) (Product, error) {
	var p Product
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT code, name, category_code, purchase_price_cents, sale_price_cents, unit, minimum_stock, active, registered_at
		 FROM %s WHERE code = $1`, r.store.Table("products")), code).
		Scan(&p.Code, &p.Name, &p.CategoryCode, &p.PurchasePrice, &p.SalePrice, &p.Unit, &p.MinimumStock, &p.Active, &p.RegisteredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// CreateProduct inserts a new product and its initial stock rows.
func (r *Repository) CreateProduct(ctx context.Context, p Product, initialStock map[string]int64) error {
	tx, err := r.store.Pool().Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (code, name, category_code, purchase_price_cents, sale_price_cents, unit, minimum_stock, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`, r.store.Table("products")),
		p.Code, p.Name, p.CategoryCode, p.PurchasePrice, p.SalePrice, p.Unit, p.MinimumStock)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeTaken
		}
		return err
	}
	for branch, qty := range initialStock {
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (product_code, branch_code, quantity) VALUES ($1, $2, $3)`, r.store.Table("stock_levels")),
			p.Code, branch, qty); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// UpdateProduct updates the mutable product fields. The code never changes.
func (r *Repository) UpdateProduct(ctx context.Context, code string, p Product) error {
	tag, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET name = $2, category_code = $3, purchase_price_cents = $4, sale_price_cents = $5, unit = $6, minimum_stock = $7
		 WHERE code = $1`, r.store.Table("products")),
		code, p.Name, p.CategoryCode, p.PurchasePrice, p.SalePrice, p.Unit, p.MinimumStock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeactivateProduct soft-deletes a product. Rows are never removed.
func (r *Repository) DeactivateProduct(ctx context.Context, code string) error {
	tag, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET active = FALSE WHERE code = $1`, r.store.Table("products")), code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// --- Branches ---

// ListBranches returns every branch; branches stay queryable for life.
func (r *Repository) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT code, name, address, phone, active FROM %s ORDER BY code`, r.store.Table("branches")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.Code, &b.Name, &b.Address, &b.Phone, &b.Active); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// FindBranch returns the branch for code.
func (r *Repository) FindBranch(ctx context.Context, code string) (Branch, error) {
	var b Branch
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT code, name, address, phone, active FROM %s WHERE code = $1`, r.store.Table("branches")), code).
		Scan(&b.Code, &b.Name, &b.Address, &b.Phone, &b.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Branch{}, ErrBranchNotFound
		}
		return Branch{}, err
	}
	return b, nil
}

// CreateBranch inserts a new branch.
func (r *Repository) CreateBranch(ctx context.Context, b Branch) error {
	_, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (code, name, address, phone, active) VALUES ($1, $2, $3, $4, TRUE)`, r.store.Table("branches")),
		b.Code, b.Name, b.Address, b.Phone)
	if isUniqueViolation(err) {
		return ErrCodeTaken
	}
	return err
}

// UpdateBranch updates the mutable branch fields.
func (r *Repository) UpdateBranch(ctx context.Context, code string, b Branch) error {
	tag, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET name = $2, address = $3, phone = $4 WHERE code = $1`, r.store.Table("branches")),
		code, b.Name, b.Address, b.Phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBranchNotFound
	}
	return nil
}

// --- Categories ---

// ListCategories returns every category.
func (r *Repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT code, name, description FROM %s ORDER BY code`, r.store.Table("categories")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Code, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a new category.
func (r *Repository) CreateCategory(ctx context.Context, c Category) error {
	_, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (code, name, description) VALUES ($1, $2, $3)`, r.store.Table("categories")),
		c.Code, c.Name, c.Description)
	if isUniqueViolation(err) {
		return ErrCodeTaken
	}
	return err
}

// --- Suppliers ---

// ListSuppliers returns every supplier.
func (r *Repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT code, name, contact, phone, email, address, active FROM %s ORDER BY code`, r.store.Table("suppliers")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.Code, &s.Name, &s.Contact, &s.Phone, &s.Email, &s.Address, &s.Active); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// FindSupplier returns the supplier for code.
func (r *Repository) FindSupplier(ctx context.Context, code string) (Supplier, error) {
	var s Supplier
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT code, name, contact, phone, email, address, active FROM %s WHERE code = $1`, r.store.Table("suppliers")), code).
		Scan(&s.Code, &s.Name, &s.Contact, &s.Phone, &s.Email, &s.Address, &s.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, ErrSupplierNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

// CreateSupplier inserts a new supplier.
func (r *Repository) CreateSupplier(ctx context.Context, s Supplier) error {
	_, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (code, name, contact, phone, email, address, active) VALUES ($1, $2, $3, $4, $5, $6, TRUE)`,
		r.store.Table("suppliers")),
		s.Code, s.Name, s.Contact, s.Phone, s.Email, s.Address)
	if isUniqueViolation(err) {
		return ErrCodeTaken
	}
	return err
}

// DeactivateSupplier soft-deletes a supplier.
func (r *Repository) DeactivateSupplier(ctx context.Context, code string) error {
	tag, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET active = FALSE WHERE code = $1`, r.store.Table("suppliers")), code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSupplierNotFound
	}
	return nil
}

// --- Employees ---

// ListEmployees returns every employee.
func (r *Repository) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT code, name, role, branch_code, phone, email, salary_cents, hired_at, active FROM %s ORDER BY code`,
		r.store.Table("employees")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.Code, &e.Name, &e.Role, &e.BranchCode, &e.Phone, &e.Email, &e.Salary, &e.HiredAt, &e.Active); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// CreateEmployee inserts a new employee.
func (r *Repository) CreateEmployee(ctx context.Context, e Employee) error {
	_, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (code, name, role, branch_code, phone, email, salary_cents, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`, r.store.Table("employees")),
		e.Code, e.Name, e.Role, e.BranchCode, e.Phone, e.Email, e.Salary)
	if isUniqueViolation(err) {
		return ErrCodeTaken
	}
	return err
}

// UpdateEmployee updates the mutable employee fields.
func (r *Repository) UpdateEmployee(ctx context.Context, code string, e Employee) error {
	tag, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET name = $2, role = $3, branch_code = $4, phone = $5, email = $6, salary_cents = $7 WHERE code = $1`,
		r.store.Table("employees")),
		code, e.Name, e.Role, e.BranchCode, e.Phone, e.Email, e.Salary)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// DeactivateEmployee soft-deletes an employee.
func (r *Repository) DeactivateEmployee(ctx context.Context, code string) error {
	tag, err := r.store.Pool().Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET active = FALSE WHERE code = $1`, r.store.Table("employees")), code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
