package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tiendapos/tiendapos/internal/ledger"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Repository persists purchases in the tenant schema.
type Repository struct {
	store  *tenant.Store
	ledger *ledger.Repository
}

// NewRepository constructs Repository.
func NewRepository(store *tenant.Store) *Repository {
	return &Repository{store: store, ledger: ledger.NewRepository(store)}
}

// TxRepository exposes the transactional operations a receipt needs.
type TxRepository interface {
	InsertPurchase(ctx context.Context, p Purchase) error
	InsertPurchaseLines(ctx context.Context, purchaseID string, lines []PurchaseLine) error
	AdjustStock(ctx context.Context, productCode, branchCode string, delta int64) (int64, error)
	RecordMovement(ctx context.Context, m ledger.Movement) error
}

type txRepo struct {
	tx     pgx.Tx
	store  *tenant.Store
	ledger *ledger.TxLedger
}

// WithTx executes the callback inside a read committed transaction.
// Same reasoning as the sales repository: AdjustStock's FOR UPDATE
// lock orders concurrent commits per (product, branch), and the waiter
// must re-read the committed quantity rather than abort on a stale
// snapshot.
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

// ListPurchases returns the most recent purchases, newest first, with lines.
func (r *Repository) ListPurchases(ctx context.Context, limit int) ([]Purchase, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT id, supplier_code, supplier_name, branch_code, total_cents, occurred_at
		 FROM %s ORDER BY occurred_at DESC, id DESC LIMIT $1`, r.store.Table("purchases")), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.SupplierCode, &p.SupplierName, &p.BranchCode, &p.Total, &p.CreatedAt); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range purchases {
		lines, err := r.loadLines(ctx, purchases[i].ID)
		if err != nil {
			return nil, err
		}
		purchases[i].Lines = lines
	}
	return purchases, nil
}

// FindPurchase resolves one purchase with its lines.
func (r *Repository) FindPurchase(ctx context.Context, id string) (Purchase, error) {
	var p Purchase
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT id, supplier_code, supplier_name, branch_code, total_cents, occurred_at
		 FROM %s WHERE id = $1`, r.store.Table("purchases")), id).
		Scan(&p.ID, &p.SupplierCode, &p.SupplierName, &p.BranchCode, &p.Total, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Purchase{}, ErrPurchaseNotFound
		}
		return Purchase{}, err
	}
	p.Lines, err = r.loadLines(ctx, p.ID)
	if err != nil {
		return Purchase{}, err
	}
	return p, nil
}

func (r *Repository) loadLines(ctx context.Context, purchaseID string) ([]PurchaseLine, error) {
	rows, err := r.store.Pool().Query(ctx, fmt.Sprintf(
		`SELECT product_code, product_name, quantity, unit_price_cents, subtotal_cents
		 FROM %s WHERE purchase_id = $1 ORDER BY position`, r.store.Table("purchase_lines")), purchaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []PurchaseLine
	for rows.Next() {
		var l PurchaseLine
		if err := rows.Scan(&l.ProductCode, &l.ProductName, &l.Quantity, &l.UnitCost, &l.LineTotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *txRepo) InsertPurchase(ctx context.Context, p Purchase) error {
	_, err := r.tx.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, supplier_code, supplier_name, branch_code, total_cents, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`, r.store.Table("purchases")),
		p.ID, p.SupplierCode, p.SupplierName, p.BranchCode, p.Total, p.CreatedAt)
	return err
}

func (r *txRepo) InsertPurchaseLines(ctx context.Context, purchaseID string, lines []PurchaseLine) error {
	for i, line := range lines {
		_, err := r.tx.Exec(ctx, fmt.Sprintf(
			`INSERT INTO %s (purchase_id, position, product_code, product_name, quantity, unit_price_cents, subtotal_cents)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`, r.store.Table("purchase_lines")),
			purchaseID, i+1, line.ProductCode, line.ProductName, line.Quantity, line.UnitCost, line.LineTotal)
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
