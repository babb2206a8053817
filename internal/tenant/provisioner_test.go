package tenant

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// fakeExecer records executed statements and reports whether tenant
// tables already hold rows.
type fakeExecer struct {
	statements []string
	populated  bool
}

type fakeRow struct {
	count int
}

func (r fakeRow) Scan(dest ...any) error {
	switch n := dest[0].(type) {
	case *int:
		*n = r.count
	case *int64:
		*n = int64(r.count)
	}
	return nil
}

func (f *fakeExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.statements = append(f.statements, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeExecer) QueryRow(context.Context, string, ...any) pgx.Row {
	if f.populated {
		return fakeRow{count: 1}
	}
	return fakeRow{count: 0}
}

func countMatching(statements []string, substr string) int {
	n := 0
	for _, s := range statements {
		if strings.Contains(s, substr) {
			n++
		}
	}
	return n
}

func TestProvisionCreatesSchemaTablesAndSeed(t *testing.T) {
	db := &fakeExecer{}
	p := NewProvisioner(db, nil)

	key, err := p.Provision(context.Background(), "tienda_maria")
	require.NoError(t, err)
	require.Equal(t, "tienda_maria", key)

	require.Equal(t, 1, countMatching(db.statements, "CREATE SCHEMA IF NOT EXISTS"))
	require.NotZero(t, countMatching(db.statements, "CREATE TABLE IF NOT EXISTS"))
	require.NotZero(t, countMatching(db.statements, "CREATE INDEX IF NOT EXISTS"))

	// Every statement targets the quoted tenant schema.
	for _, s := range db.statements {
		if strings.HasPrefix(s, "CREATE TABLE") || strings.HasPrefix(s, "INSERT") {
			require.Contains(t, s, `"tienda_maria".`)
		}
	}

	// Starter data: 2 branches, 5 categories, 8 products, 3 employees,
	// 2 suppliers, plus one stock row per (product, branch).
	require.Equal(t, 2, countMatching(db.statements, `INSERT INTO "tienda_maria"."branches"`))
	require.Equal(t, 5, countMatching(db.statements, `INSERT INTO "tienda_maria"."categories"`))
	require.Equal(t, 8, countMatching(db.statements, `INSERT INTO "tienda_maria"."products"`))
	require.Equal(t, 16, countMatching(db.statements, `INSERT INTO "tienda_maria"."stock_levels"`))
	require.Equal(t, 3, countMatching(db.statements, `INSERT INTO "tienda_maria"."employees"`))
	require.Equal(t, 2, countMatching(db.statements, `INSERT INTO "tienda_maria"."suppliers"`))
}

func TestProvisionSkipsSeedWhenDataExists(t *testing.T) {
	db := &fakeExecer{populated: true}
	p := NewProvisioner(db, nil)

	_, err := p.Provision(context.Background(), "tienda_maria")
	require.NoError(t, err)

	require.Zero(t, countMatching(db.statements, "INSERT INTO"))
	// The DDL still runs; it is IF NOT EXISTS all the way down.
	require.NotZero(t, countMatching(db.statements, "CREATE TABLE IF NOT EXISTS"))
}

func TestProvisionRejectsInvalidKey(t *testing.T) {
	db := &fakeExecer{}
	p := NewProvisioner(db, nil)

	_, err := p.Provision(context.Background(), `tienda_x"; DROP SCHEMA public; --`)
	require.ErrorIs(t, err, ErrInvalidKey)
	require.Empty(t, db.statements)
}
