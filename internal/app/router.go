package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/salonos/salonos/internal/checkout"
	"github.com/salonos/salonos/internal/observability"
	"github.com/salonos/salonos/internal/payroll"
	"github.com/salonos/salonos/internal/platform/httpx"
	"github.com/salonos/salonos/internal/reports"
)

// RouterConfig aggregates the handlers mounted on the API router.
type RouterConfig struct {
	Middleware []func(http.Handler) http.Handler
	Checkout   *checkout.Handler
	Payroll    *payroll.Handler
	Reports    *reports.Handler
	Metrics    *observability.Metrics
}

// NewRouter assembles the HTTP routing tree.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(cfg.Middleware...)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Checkout != nil {
			cfg.Checkout.MountRoutes(r)
		}
		if cfg.Payroll != nil {
			cfg.Payroll.MountRoutes(r)
		}
		if cfg.Reports != nil {
			cfg.Reports.MountRoutes(r)
		}
	})
	return r
}
