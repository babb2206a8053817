package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tiendapos/tiendapos/internal/ledger"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Repository persists sales in the tenant schema.
type Repository struct {
	store  *tenant.Store
	ledger *ledger.Repository
}

// NewRepository constructs Repository.
func NewRepository(store *tenant.Store) *Repository {
	return &Repository{store: store, ledger: ledger.NewRepository(store)}
}

// TxRepository exposes the transactional operations a commit needs:
// the sale header and lines, plus the stock and movement writes that
// must land in the same transaction.
type TxRepository interface {
	InsertSale(ctx context.Context, sale Sale) error
	InsertSaleLines(ctx context.Context, saleID string, lines []SaleLine) error
	AdjustStock(ctx context.Context, productCode, branchCode string, delta int64) (int64, error)
	RecordMovement(ctx context.Context, m ledger.Movement) error
}

type txRepo struct {
	tx     pgx.Tx
	store  *tenant.Store
	ledger *ledger.TxLedger
}

// WithTx executes the callback inside a read committed transaction.
// Read committed is load-bearing here: stock adjustments lock the
// (product, branch) row FOR UPDATE, and a commit that waited out a
// concurrent one must then see the committed quantity so the
// insufficiency check decides. A snapshot isolation level would abort
// the waiter with a serialization error instead.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.store.Pool().BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	wrapper := &txRepo{tx: tx, store: r.store, ledger: r.ledger.Tx(tx)}
	if err := fn(ctx, wrapper); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListSales returns the most recent sales, newest first, with lines.
func (r *Repository) ListSales(ctx context.Context, limit int) ([]Sale, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT id, branch_code, employee_code, total_cents, occurred_at
		 FROM %s ORDER BY occurred_at DESC, id DESC LIMIT $1`, r.store.Table("sales")), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.BranchCode, &s.EmployeeCode, &s.Total, &s.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		lines, err := r.loadLines(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Lines = lines
	}
	return sales, nil
}

// FindSale resolves one sale with its lines.
func (r *Repository) FindSale(ctx context.Context, id string) (Sale, error) {
	var s Sale
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT id, branch_code, employee_code, total_cents, occurred_at
		 FROM %s WHERE id = $1`, r.store.Table("sales")), id).
		Scan(&s.ID, &s.BranchCode, &s.EmployeeCode, &s.Total, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrSaleNotFound
		}
		return Sale{}, err
	}
	s.Lines, err = r.loadLines(ctx, s.ID)
	if err != nil {
		return Sale{}, err
	}
	return s, nil
}

func (r *Repository) loadLines(ctx context.Context, saleID string) ([]SaleLine, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT product_code, product_name, quantity, unit_price_cents, subtotal_cents
		 FROM %s WHERE sale_id = $1 ORDER BY position`, r.store.Table("sale_lines")), saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.ProductCode, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *txRepo) InsertSale(ctx context.Context, sale Sale) error {
	_, err := r.tx.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, branch_code, employee_code, total_cents, line_count, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`, r.store.Table("sales")),
		sale.ID, sale.BranchCode, sale.EmployeeCode, sale.Total, len(sale.Lines), sale.CreatedAt)
	return err
}

func (r *txRepo) InsertSaleLines(ctx context.Context, saleID string, lines []SaleLine) error {
	for i, line := range lines {
		_, err := r.tx.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (sale_id, position, product_code, product_name, quantity, unit_price_cents, subtotal_cents)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`, r.store.Table("sale_lines")),
			saleID, i+1, line.ProductCode, line.ProductName, line.Quantity, line.UnitPrice, line.LineTotal)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepo) AdjustStock(ctx context.Context, productCode, branchCode string, delta int64) (int64, error) {
	return r.ledger.AdjustStock(ctx, productCode, branchCode, delta)
}

func (r *txRepo) RecordMovement(ctx context.Context, m ledger.Movement) error {
	return r.ledger.RecordMovement(ctx, m)
}
