package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/tiendapos/tiendapos/internal/platform/httpx"
	"github.com/tiendapos/tiendapos/internal/tenant"
)

// Handler wires the dashboard endpoint.
type Handler struct {
	logger   *slog.Logger
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, rdb *redis.Client, cacheTTL time.Duration) *Handler {
	return &Handler{logger: logger, redis: rdb, cacheTTL: cacheTTL}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleSummary)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	store := tenant.StoreFromContext(r.Context())
	svc := NewService(NewRepository(store), h.redis, store.Key(), h.cacheTTL)

	summary, err := svc.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
