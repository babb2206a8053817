package tenant

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store scopes database access to one tenant schema. Repositories are
// constructed around a Store so every query is qualified with the
// tenant's schema.
type Store struct {
	pool *pgxpool.Pool
	key  string
}

// NewStore wraps the shared pool for the given tenant key.
func NewStore(pool *pgxpool.Pool, key string) (*Store, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return &Store{pool: pool, key: key}, nil
}

// Pool exposes the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Key returns the tenant key, which doubles as the schema name.
func (s *Store) Key() string {
	return s.key
}

// Table returns the schema-qualified, quoted identifier for name.
func (s *Store) Table(name string) string {
	return pgx.Identifier{s.key, name}.Sanitize()
}

type storeContextKey struct{}

// ContextWithStore stores the tenant store in context.
func ContextWithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey{}, store)
}

// StoreFromContext extracts the tenant store from context, nil when absent.
func StoreFromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(storeContextKey{}).(*Store)
	return store
}
