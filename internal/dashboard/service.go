package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tiendapos/tiendapos/internal/money"
)

const recentSaleCount = 5

// LowStockProduct is a product whose total stock is at or below its
// minimum.
type LowStockProduct struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	MinimumStock int64  `json:"minimum_stock"`
	OnHand       int64  `json:"on_hand"`
}

// RecentSale is a sale header on the dashboard.
type RecentSale struct {
	ID         string      `json:"id"`
	BranchCode string      `json:"branch_code"`
	Total      money.Cents `json:"total"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Summary is the full dashboard payload.
type Summary struct {
	ProductCount   int64             `json:"product_count"`
	EmployeeCount  int64             `json:"employee_count"`
	StockUnits     int64             `json:"stock_units"`
	LowStock       []LowStockProduct `json:"low_stock"`
	TodaySaleCount int64             `json:"today_sale_count"`
	TodayRevenue   money.Cents       `json:"today_revenue"`
	RecentSales    []RecentSale      `json:"recent_sales"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// RepositoryPort abstracts the aggregate queries for the service.
type RepositoryPort interface {
	CountActiveProducts(ctx context.Context) (int64, error)
	CountActiveEmployees(ctx context.Context) (int64, error)
	TotalStockUnits(ctx context.Context) (int64, error)
	LowStockProducts(ctx context.Context) ([]LowStockProduct, error)
	SalesSince(ctx context.Context, since time.Time) (int64, money.Cents, error)
	RecentSales(ctx context.Context, limit int) ([]RecentSale, error)
}

// Service assembles the dashboard, caching the result per tenant for
// a short TTL so a busy register does not hammer the aggregates.
type Service struct {
	repo     RepositoryPort
	redis    *redis.Client
	cacheKey string
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService builds Service. redis may be nil, which disables caching.
func NewService(repo RepositoryPort, rdb *redis.Client, tenantKey string, ttl time.Duration) *Service {
	return &Service{
		repo:     repo,
		redis:    rdb,
		cacheKey: "dashboard:" + tenantKey,
		cacheTTL: ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Summary returns the dashboard, served from cache when fresh.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	// Cache misses and cache trouble both fall through to a rebuild.
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, s.cacheKey).Bytes()
		if err == nil {
			var cached Summary
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	summary, err := s.build(ctx)
	if err != nil {
		return Summary{}, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(summary); err == nil {
			_ = s.redis.Set(ctx, s.cacheKey, raw, s.cacheTTL).Err()
		}
	}
	return summary, nil
}

func (s *Service) build(ctx context.Context) (Summary, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var summary Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountActiveProducts(gctx)
		summary.ProductCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountActiveEmployees(gctx)
		summary.EmployeeCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.TotalStockUnits(gctx)
		summary.StockUnits = n
		return err
	})
	g.Go(func() error {
		low, err := s.repo.LowStockProducts(gctx)
		summary.LowStock = low
		return err
	})
	g.Go(func() error {
		count, revenue, err := s.repo.SalesSince(gctx, midnight)
		summary.TodaySaleCount = count
		summary.TodayRevenue = revenue
		return err
	})
	g.Go(func() error {
		recent, err := s.repo.RecentSales(gctx, recentSaleCount)
		summary.RecentSales = recent
		return err
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if summary.LowStock == nil {
		summary.LowStock = []LowStockProduct{}
	}
	if summary.RecentSales == nil {
		summary.RecentSales = []RecentSale{}
	}
	summary.GeneratedAt = now
	return summary, nil
}
