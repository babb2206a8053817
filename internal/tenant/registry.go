package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is a registered store owner in the control schema.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	Phone        string
	TenantKey    string
	Active       bool
	CreatedAt    time.Time
}

var (
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("tenant: username already registered")
	// ErrCodeInvalid indicates an unknown or already used activation code.
	ErrCodeInvalid = errors.New("tenant: activation code invalid or already used")
	// ErrUserNotFound indicates no user for the given username.
	ErrUserNotFound = errors.New("tenant: user not found")
)

// defaultActivationCodes mirrors the codes handed out with new installs.
var defaultActivationCodes = []string{"ACT001", "ACT002", "ACT003", "DEMO2024", "TIENDA001"}

// Registry manages the control-schema records: users, activation codes
// and the tenant directory.
type Registry struct {
	pool *pgxpool.Pool
}

// NewRegistry constructs a Registry.
func NewRegistry(pool *pgxpool.Pool) *Registry {
	return &Registry{pool: pool}
}

// EnsureActivationCodes seeds the default activation codes once.
func (r *Registry) EnsureActivationCodes(ctx context.Context) error {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pos_control.activation_codes`).Scan(&count); err != nil {
		return fmt.Errorf("tenant: count activation codes: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, code := range defaultActivationCodes {
		if _, err := r.pool.Exec(ctx,
			`INSERT INTO pos_control.activation_codes (code, used) VALUES ($1, FALSE) ON CONFLICT (code) DO NOTHING`,
			code); err != nil {
			return fmt.Errorf("tenant: seed activation code: %w", err)
		}
	}
	return nil
}

// ClaimActivationCode atomically marks an unused code as consumed by
// username. Codes are matched case-insensitively.
func (r *Registry) ClaimActivationCode(ctx context.Context, code, username string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pos_control.activation_codes SET used = TRUE, used_by = $2, used_at = NOW()
		 WHERE UPPER(code) = $1 AND used = FALSE`,
		strings.ToUpper(strings.TrimSpace(code)), username)
	if err != nil {
		return fmt.Errorf("tenant: claim activation code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCodeInvalid
	}
	return nil
}

// CreateUser inserts a new user row bound to its tenant key.
func (r *Registry) CreateUser(ctx context.Context, user User) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO pos_control.users (username, password, email, phone, tenant_key, active)
		 VALUES ($1, $2, $3, $4, $5, TRUE) RETURNING id`,
		user.Username, user.PasswordHash, user.Email, user.Phone, user.TenantKey).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("tenant: create user: %w", err)
	}
	return id, nil
}

// FindUser looks a user up by username, case-insensitively.
func (r *Registry) FindUser(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password, email, phone, tenant_key, active, created_at
		 FROM pos_control.users WHERE LOWER(username) = LOWER($1)`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.Phone, &u.TenantKey, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("tenant: find user: %w", err)
	}
	return &u, nil
}

// RecordTenant registers the tenant key in the directory so jobs can
// enumerate provisioned tenants.
func (r *Registry) RecordTenant(ctx context.Context, key, owner string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pos_control.tenants (tenant_key, owner_username)
		 VALUES ($1, $2) ON CONFLICT (tenant_key) DO NOTHING`,
		key, owner)
	if err != nil {
		return fmt.Errorf("tenant: record tenant: %w", err)
	}
	return nil
}

// ListTenantKeys returns every provisioned tenant key.
func (r *Registry) ListTenantKeys(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT tenant_key FROM pos_control.tenants ORDER BY tenant_key`)
	if err != nil {
		return nil, fmt.Errorf("tenant: list tenants: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
