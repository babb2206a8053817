package tenant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Execer is the slice of pgxpool.Pool the provisioner needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Execer = (*pgxpool.Pool)(nil)

// Provisioner creates and seeds per-tenant schemas. Every step is
// idempotent: DDL uses IF NOT EXISTS and each seed set is only
// inserted while its table is empty, so re-running Provision never
// duplicates or overwrites data.
type Provisioner struct {
	db     Execer
	logger *slog.Logger
}

// NewProvisioner constructs a Provisioner.
func NewProvisioner(db Execer, logger *slog.Logger) *Provisioner {
	return &Provisioner{db: db, logger: logger}
}

// Provision ensures the tenant schema, its tables, its indexes and the
// starter catalog exist, and returns the tenant key for the caller to
// persist alongside the user record.
func (p *Provisioner) Provision(ctx context.Context, key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	schema := pgx.Identifier{key}.Sanitize()

	if _, err := p.db.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return "", fmt.Errorf("tenant: create schema: %w", err)
	}

	for _, stmt := range schemaStatements(key) {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return "", fmt.Errorf("tenant: apply schema statement: %w", err)
		}
	}

	if err := p.seed(ctx, key); err != nil {
		return "", err
	}

	if p.logger != nil {
		p.logger.Info("tenant provisioned", slog.String("tenant", key))
	}
	return key, nil
}

func schemaStatements(key string) []string {
	t := func(name string) string { return pgx.Identifier{key, name}.Sanitize() }
	idx := func(name string) string { return pgx.Identifier{key + "_" + name}.Sanitize() }

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			code    TEXT PRIMARY KEY,
			name    TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			phone   TEXT NOT NULL DEFAULT '',
			active  BOOLEAN NOT NULL DEFAULT TRUE
		)`, t("branches")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			code        TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`, t("categories")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			code                 TEXT PRIMARY KEY,
			name                 TEXT NOT NULL,
			category_code        TEXT NOT NULL,
			purchase_price_cents BIGINT NOT NULL CHECK (purchase_price_cents >= 0),
			sale_price_cents     BIGINT NOT NULL CHECK (sale_price_cents >= 0),
			unit                 TEXT NOT NULL DEFAULT 'pz',
			minimum_stock        BIGINT NOT NULL DEFAULT 10,
			active               BOOLEAN NOT NULL DEFAULT TRUE,
			registered_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t("products")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			product_code TEXT NOT NULL,
			branch_code  TEXT NOT NULL,
			quantity     BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (product_code, branch_code)
		)`, t("stock_levels")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			code         TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			role         TEXT NOT NULL,
			branch_code  TEXT NOT NULL,
			phone        TEXT NOT NULL DEFAULT '',
			email        TEXT NOT NULL DEFAULT '',
			salary_cents BIGINT NOT NULL DEFAULT 0,
			hired_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			active       BOOLEAN NOT NULL DEFAULT TRUE
		)`, t("employees")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			code    TEXT PRIMARY KEY,
			name    TEXT NOT NULL,
			contact TEXT NOT NULL DEFAULT '',
			phone   TEXT NOT NULL DEFAULT '',
			email   TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			active  BOOLEAN NOT NULL DEFAULT TRUE
		)`, t("suppliers")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id            UUID PRIMARY KEY,
			branch_code   TEXT NOT NULL,
			employee_code TEXT NOT NULL DEFAULT '',
			occurred_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			total_cents   BIGINT NOT NULL,
			line_count    INT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'COMMITTED'
		)`, t("sales")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id               BIGSERIAL PRIMARY KEY,
			sale_id          UUID NOT NULL,
			position         INT NOT NULL,
			product_code     TEXT NOT NULL,
			product_name     TEXT NOT NULL,
			quantity         BIGINT NOT NULL CHECK (quantity > 0),
			unit_price_cents BIGINT NOT NULL,
			subtotal_cents   BIGINT NOT NULL
		)`, t("sale_lines")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id            UUID PRIMARY KEY,
			supplier_code TEXT NOT NULL,
			supplier_name TEXT NOT NULL,
			branch_code   TEXT NOT NULL,
			occurred_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			total_cents   BIGINT NOT NULL,
			status        TEXT NOT NULL DEFAULT 'COMMITTED'
		)`, t("purchases")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id               BIGSERIAL PRIMARY KEY,
			purchase_id      UUID NOT NULL,
			position         INT NOT NULL,
			product_code     TEXT NOT NULL,
			product_name     TEXT NOT NULL,
			quantity         BIGINT NOT NULL CHECK (quantity > 0),
			unit_price_cents BIGINT NOT NULL,
			subtotal_cents   BIGINT NOT NULL
		)`, t("purchase_lines")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id           BIGSERIAL PRIMARY KEY,
			product_code TEXT NOT NULL,
			product_name TEXT NOT NULL,
			branch_code  TEXT NOT NULL,
			kind         TEXT NOT NULL CHECK (kind IN ('ENTRY', 'EXIT')),
			reason       TEXT NOT NULL CHECK (reason IN ('SALE', 'PURCHASE')),
			quantity     BIGINT NOT NULL CHECK (quantity > 0),
			reference_id TEXT NOT NULL,
			recorded_by  TEXT NOT NULL DEFAULT '',
			occurred_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, t("movements")),

		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (occurred_at DESC)`, idx("sales_occurred_at"), t("sales")),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (branch_code)`, idx("sales_branch"), t("sales")),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (occurred_at DESC)`, idx("purchases_occurred_at"), t("purchases")),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (branch_code)`, idx("purchases_branch"), t("purchases")),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (sale_id)`, idx("sale_lines_sale"), t("sale_lines")),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (purchase_id)`, idx("purchase_lines_purchase"), t("purchase_lines")),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (occurred_at DESC)`, idx("movements_occurred_at"), t("movements")),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (product_code)`, idx("movements_product"), t("movements")),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (branch_code)`, idx("movements_branch"), t("movements")),
	}
}
