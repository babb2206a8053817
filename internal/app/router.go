package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tiendapos/tiendapos/internal/auth"
	"github.com/tiendapos/tiendapos/internal/catalog"
	"github.com/tiendapos/tiendapos/internal/dashboard"
	"github.com/tiendapos/tiendapos/internal/ledger"
	"github.com/tiendapos/tiendapos/internal/observability"
	"github.com/tiendapos/tiendapos/internal/purchases"
	"github.com/tiendapos/tiendapos/internal/sales"
	"github.com/tiendapos/tiendapos/internal/shared"
	"github.com/tiendapos/tiendapos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	Pool             *pgxpool.Pool
	AuthHandler      *auth.Handler
	CatalogHandler   *catalog.Handler
	SalesHandler     *sales.Handler
	PurchasesHandler *purchases.Handler
	LedgerHandler    *ledger.Handler
	DashboardHandler *dashboard.Handler
	JobsHandler      *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireTenant(params.Logger, params.Pool))
		r.Route("/catalog", params.CatalogHandler.MountRoutes)
		r.Route("/sales", params.SalesHandler.MountRoutes)
		r.Route("/purchases", params.PurchasesHandler.MountRoutes)
		r.Route("/inventory", params.LedgerHandler.MountRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
	})

	return r
}
