package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/renewalhq/subtrackr-backend/api/controllers"
	"github.com/renewalhq/subtrackr-backend/api/middleware"
	"github.com/renewalhq/subtrackr-backend/internal/alerts"
	"github.com/renewalhq/subtrackr-backend/internal/exporting"
	"github.com/renewalhq/subtrackr-backend/internal/savings"
	"github.com/renewalhq/subtrackr-backend/internal/settings"
	"github.com/renewalhq/subtrackr-backend/internal/subscriptions"
	"github.com/renewalhq/subtrackr-backend/pkg/config"
	"github.com/renewalhq/subtrackr-backend/pkg/db"
	"github.com/renewalhq/subtrackr-backend/pkg/logger"
	"github.com/renewalhq/subtrackr-backend/pkg/metrics"
	pkgredis "github.com/renewalhq/subtrackr-backend/pkg/redis"
)

// Deps collects everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *pkgredis.Client
	Metrics       *metrics.HTTPMetrics
	MetricsHTTP   http.Handler
	Subscriptions subscriptions.Service
	Alerts        alerts.Service
	Savings       savings.Service
	Settings      settings.Service
	Exporting     exporting.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(deps.Config.CORS),
		middleware.Metrics(deps.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(deps.DB, readyCache(deps.Redis), deps.Logger))
	})

	if deps.MetricsHTTP != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHTTP)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Logger))
		r.Use(middleware.Idempotency(idempotencyStore(deps.Redis), deps.Logger))

		r.Get("/app-state", controllers.AppState(deps.Settings, deps.Logger))
		r.Post("/onboarding/complete", controllers.CompleteOnboarding(deps.Settings, deps.Logger))

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", controllers.SubscriptionsList(deps.Subscriptions, deps.Logger))
			r.Post("/", controllers.SubscriptionsCreate(deps.Subscriptions, deps.Logger))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.SubscriptionsGet(deps.Subscriptions, deps.Logger))
				r.Patch("/", controllers.SubscriptionsUpdate(deps.Subscriptions, deps.Logger))
				r.Delete("/", controllers.SubscriptionsDelete(deps.Subscriptions, deps.Logger))
				r.Post("/cancel", controllers.SubscriptionsCancel(deps.Subscriptions, deps.Logger))
				r.Patch("/toggle-cancellation", controllers.SubscriptionsToggleCancellation(deps.Subscriptions, deps.Logger))
				r.Post("/usage", controllers.SubscriptionsAddUsage(deps.Subscriptions, deps.Logger))
				r.Get("/usage", controllers.SubscriptionsListUsage(deps.Subscriptions, deps.Logger))
				r.Get("/price-history", controllers.SubscriptionsPriceHistory(deps.Subscriptions, deps.Logger))
			})
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", controllers.AlertsList(deps.Alerts, deps.Logger))
			r.Patch("/{id}/dismiss", controllers.AlertsDismiss(deps.Alerts, deps.Logger))
		})

		r.Get("/savings", controllers.SavingsSummary(deps.Savings, deps.Logger))
		r.Get("/spending", controllers.SpendingSummary(deps.Savings, deps.Logger))

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsGet(deps.Settings, deps.Logger))
			r.Patch("/", controllers.SettingsUpdate(deps.Settings, deps.Logger))
		})

		r.Get("/export/{format}", controllers.Export(deps.Exporting, deps.Logger))
		r.Post("/import/csv", controllers.ImportCSV(deps.Exporting, deps.Logger))
	})

	return r
}

// readyCache and idempotencyStore keep typed-nil pointers out of the
// interface values handed to middleware and handlers.
func readyCache(client *pkgredis.Client) pkgredis.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
