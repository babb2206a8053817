package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tiendapos/tiendapos/internal/money"
)

type fakeRepo struct {
	products  int64
	employees int64
	stock     int64
	lowStock  []LowStockProduct
	saleCount int64
	revenue   money.Cents
	recent    []RecentSale
	calls     int

	lastSince time.Time
}

func (f *fakeRepo) CountActiveProducts(context.Context) (int64, error) {
	f.calls++
	return f.products, nil
}

func (f *fakeRepo) CountActiveEmployees(context.Context) (int64, error) {
	return f.employees, nil
}

func (f *fakeRepo) TotalStockUnits(context.Context) (int64, error) {
	return f.stock, nil
}

func (f *fakeRepo) LowStockProducts(context.Context) ([]LowStockProduct, error) {
	return f.lowStock, nil
}

func (f *fakeRepo) SalesSince(_ context.Context, since time.Time) (int64, money.Cents, error) {
	f.lastSince = since
	return f.saleCount, f.revenue, nil
}

func (f *fakeRepo) RecentSales(context.Context, int) ([]RecentSale, error) {
	return f.recent, nil
}

func TestSummaryAggregates(t *testing.T) {
	repo := &fakeRepo{
		products:  8,
		employees: 3,
		stock:     420,
		lowStock:  []LowStockProduct{{Code: "PROD004", Name: "Azucar 1kg", MinimumStock: 10, OnHand: 4}},
		saleCount: 2,
		revenue:   16900,
		recent:    []RecentSale{{ID: "abc", BranchCode: "SUC001", Total: 4550}},
	}
	svc := NewService(repo, nil, "tienda_demo", time.Minute)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(8), summary.ProductCount)
	require.Equal(t, int64(3), summary.EmployeeCount)
	require.Equal(t, int64(420), summary.StockUnits)
	require.Len(t, summary.LowStock, 1)
	require.Equal(t, int64(2), summary.TodaySaleCount)
	require.Equal(t, money.Cents(16900), summary.TodayRevenue)
	require.Len(t, summary.RecentSales, 1)
	require.False(t, summary.GeneratedAt.IsZero())
}

func TestSummaryUsesMidnightCutoff(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, "tienda_demo", time.Minute)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 15, 18, 42, 0, 0, time.UTC)
	}

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), repo.lastSince)
}

func TestSummaryReturnsEmptySlicesNotNil(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, "tienda_demo", time.Minute)
	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary.LowStock)
	require.NotNil(t, summary.RecentSales)
}

func TestSummaryServedFromCache(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &fakeRepo{products: 8}
	svc := NewService(repo, rdb, "tienda_demo", time.Minute)

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)

	repo.products = 99
	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, repo.calls)
	require.Equal(t, first.ProductCount, second.ProductCount)

	srv.FastForward(2 * time.Minute)
	third, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
	require.Equal(t, int64(99), third.ProductCount)
}
