package sales

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/tiendapos/tiendapos/internal/catalog"
	"github.com/tiendapos/tiendapos/internal/ledger"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

const testDSNEnv = "TIENDAPOS_TEST_PG_DSN"

// newPGService provisions a throwaway tenant schema on the Postgres
// named by TIENDAPOS_TEST_PG_DSN and wires the real repositories over
// it. Skipped when the variable is unset.
func newPGService(t *testing.T) (*Service, *tenant.Store) {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("set %s to run Postgres-backed tests", testDSNEnv)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	key := fmt.Sprintf("tienda_checkout_%d", time.Now().UnixNano())
	_, err = tenant.NewProvisioner(pool, nil).Provision(ctx, key)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), fmt.Sprintf(
			`DROP SCHEMA %s CASCADE`, pgx.Identifier{key}.Sanitize()))
	})

	store, err := tenant.NewStore(pool, key)
	require.NoError(t, err)
	cat := catalog.NewService(catalog.NewRepository(store))
	return NewService(NewRepository(store), cat), store
}

func setStock(t *testing.T, store *tenant.Store, product, branch string, qty int64) {
	t.Helper()
	_, err := store.Pool().Exec(context.Background(), fmt.Sprintf(
		`UPDATE %s SET quantity = $3 WHERE product_code = $1 AND branch_code = $2`,
		store.Table("stock_levels")), product, branch, qty)
	require.NoError(t, err)
}

// Races several checkouts of one product at one branch. Exactly as
// many as the stock covers may commit; every other attempt must fail
// the insufficiency check, never with a storage error.
func TestConcurrentCommitsSellExactlyAvailableStock(t *testing.T) {
	svc, store := newPGService(t)
	setStock(t, store, "PROD001", "SUC001", 3)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Commit(context.Background(), CommitInput{
				BranchCode: "SUC001",
				Lines:      []LineInput{{ProductCode: "PROD001", Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	var committed, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, ledger.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected commit error: %v", err)
		}
	}
	require.Equal(t, 3, committed)
	require.Equal(t, attempts-3, rejected)

	var remaining int64
	err := store.Pool().QueryRow(context.Background(), fmt.Sprintf(
		`SELECT quantity FROM %s WHERE product_code = $1 AND branch_code = $2`,
		store.Table("stock_levels")), "PROD001", "SUC001").Scan(&remaining)
	require.NoError(t, err)
	require.Zero(t, remaining)

	salesList, err := svc.ListSales(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, salesList, 3)
}

// Both commits race to create the stock row for a product that has
// never moved at the branch; the second must settle on the committed
// row instead of failing to see it.
func TestConcurrentCommitsMaterializeMissingStockRow(t *testing.T) {
	svc, store := newPGService(t)
	_, err := store.Pool().Exec(context.Background(), fmt.Sprintf(
		`DELETE FROM %s WHERE product_code = $1 AND branch_code = $2`,
		store.Table("stock_levels")), "PROD002", "SUC002")
	require.NoError(t, err)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Commit(context.Background(), CommitInput{
				BranchCode: "SUC002",
				Lines:      []LineInput{{ProductCode: "PROD002", Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	}
}
