package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Repository persists stock levels and movements in the tenant schema.
type Repository struct {
	store *tenant.Store
}

// NewRepository constructs a Repository bound to one tenant.
func NewRepository(store *tenant.Store) *Repository {
	return &Repository{store: store}
}

// QuantityOnHand reads the current stock for a (product, branch) pair.
// A missing row means zero.
func (r *Repository) QuantityOnHand(ctx context.Context, productCode, branchCode string) (int64, error) {
	var qty int64
	err := r.store.Pool().QueryRow(ctx, fmt.Sprintf(
		`SELECT quantity FROM %s WHERE product_code = $1 AND branch_code = $2`, r.store.Table("stock_levels")),
		productCode, branchCode).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return qty, nil
}

// ListMovements returns movements newest first, optionally filtered by
// branch and kind.
func (r *Repository) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	query := fmt.Sprintf(
		`SELECT id, product_code, product_name, branch_code, kind, reason, quantity, reference_id, recorded_by, occurred_at
		 FROM %s WHERE 1=1`, r.store.Table("movements"))
	args := []any{}
	if filter.BranchCode != "" {
		args = append(args, filter.BranchCode)
		query += fmt.Sprintf(` AND branch_code = $%d`, len(args))
	}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		query += fmt.Sprintf(` AND kind = $%d`, len(args))
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(` ORDER BY occurred_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := r.store.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ProductCode, &m.ProductName, &m.BranchCode, &m.Kind, &m.Reason, &m.Quantity, &m.ReferenceID, &m.RecordedBy, &m.OccurredAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// TxLedger applies stock adjustments and movement records inside an
// enclosing transaction, so a commit's header, lines, stock writes and
// audit trail land or roll back together.
type TxLedger struct {
	tx    pgx.Tx
	store *tenant.Store
}

// Tx wraps an open transaction with the ledger operations.
func (r *Repository) Tx(tx pgx.Tx) *TxLedger {
	return &TxLedger{tx: tx, store: r.store}
}

// AdjustStock applies delta to the (product, branch) stock row and
// returns the new quantity. The row is locked FOR UPDATE first, which
// serializes concurrent adjustments per pair: the non-negativity check
// and the write cannot interleave with another transaction's. The
// enclosing transaction must run at read committed so that a locker
// which blocked on a concurrent commit re-reads the committed
// quantity, including rows that commit inserted.
func (l *TxLedger) AdjustStock(ctx context.Context, productCode, branchCode string, delta int64) (int64, error) {
	// Materialize the row first so FOR UPDATE always has something to
	// lock, even for a product that has never moved at this branch.
	_, err := l.tx.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (product_code, branch_code, quantity) VALUES ($1, $2, 0)
		 ON CONFLICT (product_code, branch_code) DO NOTHING`, l.store.Table("stock_levels")),
		productCode, branchCode)
	if err != nil {
		return 0, err
	}

	var current int64
	err = l.tx.QueryRow(ctx, fmt.Sprintf(
		`SELECT quantity FROM %s WHERE product_code = $1 AND branch_code = $2 FOR UPDATE`, l.store.Table("stock_levels")),
		productCode, branchCode).Scan(&current)
	if err != nil {
		return 0, err
	}

	next := current + delta
	if next < 0 {
		return 0, ErrInsufficientStock
	}

	_, err = l.tx.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET quantity = $3, updated_at = NOW() WHERE product_code = $1 AND branch_code = $2`,
		l.store.Table("stock_levels")),
		productCode, branchCode, next)
	if err != nil {
		return 0, err
	}
	return next, nil
}

// RecordMovement appends one audit-trail row.
func (l *TxLedger) RecordMovement(ctx context.Context, m Movement) error {
	if m.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	_, err := l.tx.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (product_code, product_name, branch_code, kind, reason, quantity, reference_id, recorded_by, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, l.store.Table("movements")),
		m.ProductCode, m.ProductName, m.BranchCode, string(m.Kind), string(m.Reason), m.Quantity, m.ReferenceID, m.RecordedBy, m.OccurredAt)
	return err
}
