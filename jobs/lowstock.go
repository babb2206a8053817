package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tiendapos/tiendapos/internal/dashboard"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// LowStockScanner runs the nightly low-stock sweep across tenants.
type LowStockScanner struct {
	pool     *pgxpool.Pool
	registry *tenant.Registry
	enqueuer *Client
	logger   *slog.Logger
}

// NewLowStockScanner constructs the scanner.
func NewLowStockScanner(pool *pgxpool.Pool, registry *tenant.Registry, enqueuer *Client, logger *slog.Logger) *LowStockScanner {
	return &LowStockScanner{pool: pool, registry: registry, enqueuer: enqueuer, logger: logger}
}

// HandleScanAll enqueues one per-tenant scan task for every
// provisioned tenant.
func (s *LowStockScanner) HandleScanAll(ctx context.Context, _ *asynq.Task) error {
	keys, err := s.registry.ListTenantKeys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := s.enqueuer.EnqueueLowStockScan(ctx, LowStockScanPayload{TenantKey: key}); err != nil {
			s.logger.Error("enqueue low-stock scan",
				slog.String("tenant_key", key),
				slog.Any("error", err))
		}
	}
	s.logger.Info("low-stock fan-out", slog.Int("tenants", len(keys)))
	return nil
}

// HandleScan reports every product in the tenant at or below its
// minimum stock.
func (s *LowStockScanner) HandleScan(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	store, err := tenant.NewStore(s.pool, payload.TenantKey)
	if err != nil {
		// A malformed key will never become valid; drop the task.
		s.logger.Error("low-stock scan rejected key", slog.String("tenant_key", payload.TenantKey))
		return asynq.SkipRetry
	}

	low, err := dashboard.NewRepository(store).LowStockProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range low {
		s.logger.Warn("low stock",
			slog.String("tenant_key", payload.TenantKey),
			slog.String("product", p.Code),
			slog.Int64("on_hand", p.OnHand),
			slog.Int64("minimum", p.MinimumStock))
	}
	s.logger.Info("low-stock scan done",
		slog.String("tenant_key", payload.TenantKey),
		slog.Int("flagged", len(low)))
	return nil
}
