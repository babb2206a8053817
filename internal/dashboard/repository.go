package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/tiendapos/tiendapos/internal/money"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Repository runs the aggregate queries behind the dashboard.
type Repository struct {
	store *tenant.Store
}

// NewRepository constructs Repository.
func NewRepository(store *tenant.Store) *Repository {
	return &Repository{store: store}
}

// CountActiveProducts counts sellable products.
func (r *Repository) CountActiveProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE active`, r.store.Table("products"))).Scan(&n)
	return n, err
}

// CountActiveEmployees counts employees on the payroll.
func (r *Repository) CountActiveEmployees(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE active`, r.store.Table("employees"))).Scan(&n)
	return n, err
}

// TotalStockUnits sums on-hand quantity across all products and branches.
func (r *Repository) TotalStockUnits(ctx context.Context) (int64, error) {
	var n int64
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT COALESCE(SUM(quantity), 0) FROM %s`, r.store.Table("stock_levels"))).Scan(&n)
	return n, err
}

// LowStockProducts lists active products whose summed stock across
// branches is at or below their minimum.
func (r *Repository) LowStockProducts(ctx context.Context) ([]LowStockProduct, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT p.code, p.name, p.minimum_stock, COALESCE(SUM(s.quantity), 0) AS on_hand
		 FROM %s p
		 LEFT JOIN %s s ON s.product_code = p.code
		 WHERE p.active
		 GROUP BY p.code, p.name, p.minimum_stock
		 HAVING COALESCE(SUM(s.quantity), 0) <= p.minimum_stock
		 ORDER BY on_hand ASC, p.code`,
		r.store.Table("products"), r.store.Table("stock_levels")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []LowStockProduct
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.Code, &p.Name, &p.MinimumStock, &p.OnHand); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SalesSince reports how many sales happened since the cutoff and
// their combined revenue.
func (r *Repository) SalesSince(ctx context.Context, since time.Time) (int64, money.Cents, error) {
	var count int64
	var revenue money.Cents
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT COUNT(*), COALESCE(SUM(total_cents), 0) FROM %s WHERE occurred_at >= $1`,
		r.store.Table("sales")), since).Scan(&count, &revenue)
	return count, revenue, err
}

// RecentSales lists the latest sale headers.
func (r *Repository) RecentSales(ctx context.Context, limit int) ([]RecentSale, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT id, branch_code, total_cents, occurred_at
		 FROM %s ORDER BY occurred_at DESC, id DESC LIMIT $1`, r.store.Table("sales")), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []RecentSale
	for rows.Next() {
		var s RecentSale
		if err := rows.Scan(&s.ID, &s.BranchCode, &s.Total, &s.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
