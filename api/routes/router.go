package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turboairmx/quotesync/api/controllers"
	"github.com/turboairmx/quotesync/api/middleware"
	"github.com/turboairmx/quotesync/internal/notifications"
	"github.com/turboairmx/quotesync/internal/quotes"
	"github.com/turboairmx/quotesync/internal/roles"
	"github.com/turboairmx/quotesync/internal/tracking"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/logger"
)

// Dependencies are the services behind the HTTP surface. Mailer and Roles may
// be nil when their providers are not configured; their routes are then not
// mounted.
type Dependencies struct {
	Pricer   *quotes.Pricer
	Mailer   *notifications.Service
	Tracking *tracking.Importer
	Roles    *roles.Service
	Gatherer prometheus.Gatherer
	Ready    map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Ready))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Post("/quotes/price", controllers.QuotePrice(deps.Pricer, logg))
		if deps.Mailer != nil {
			r.Post("/quotes/email", controllers.QuoteEmail(deps.Mailer, logg))
			r.Post("/email/test", controllers.EmailTest(deps.Mailer, logg))
		}

		r.Route("/imports", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))
			r.Post("/tracking", controllers.ImportTracking(deps.Tracking, logg))
			r.Get("/logs", controllers.ImportLogs(deps.Tracking, logg))
		})

		if deps.Roles != nil {
			r.Route("/claims", func(r chi.Router) {
				r.With(middleware.RequireSuperAdmin(logg)).Post("/", controllers.ClaimsSet(deps.Roles, logg))
				r.With(middleware.RequireSuperAdmin(logg)).Post("/sync", controllers.ClaimsSync(deps.Roles, logg))
				r.Post("/init", controllers.ClaimsInitSuperAdmin(deps.Roles, logg))
				r.Post("/default", controllers.ClaimsAssignDefault(deps.Roles, logg))
				r.Get("/role", controllers.ClaimsRole(deps.Roles, logg))
				r.Get("/role/{uid}", controllers.ClaimsRole(deps.Roles, logg))
				r.Get("/", controllers.ClaimsVerify(deps.Roles, logg))
				r.Get("/{uid}", controllers.ClaimsVerify(deps.Roles, logg))
			})
		}
	})

	return r
}
