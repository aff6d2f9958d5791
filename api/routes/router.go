package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/configurator-backend/api/controllers"
	"github.com/angelmondragon/configurator-backend/api/middleware"
	"github.com/angelmondragon/configurator-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/configurator-backend/internal/checkout"
	"github.com/angelmondragon/configurator-backend/internal/configurator"
	"github.com/angelmondragon/configurator-backend/internal/customers"
	"github.com/angelmondragon/configurator-backend/internal/drafts"
	"github.com/angelmondragon/configurator-backend/internal/orders"
	"github.com/angelmondragon/configurator-backend/pkg/config"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/angelmondragon/configurator-backend/pkg/redis"
)

// RedisStore is the redis surface used by idempotency, throttling and readiness.
type RedisStore interface {
	redis.IdempotencyStore
	middleware.WindowLimiter
	controllers.Pinger
}

// Dependencies are the services exposed over HTTP. Redis, DB and Gatherer may be nil;
// the matching middleware, readiness checks and /metrics are then skipped.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    RedisStore
	Gatherer prometheus.Gatherer

	Catalog   catalog.Service
	Sessions  *configurator.Manager
	Drafts    drafts.Service
	Customers customers.Service
	Poller    *customers.Poller
	Orders    orders.Service
	Checkout  checkoutsvc.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.ClientID(logg),
	)

	var (
		idempotencyStore redis.IdempotencyStore
		limiter          middleware.WindowLimiter
		redisPinger      controllers.Pinger
		watcher          controllers.VerificationWatcher
	)
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		limiter = deps.Redis
		redisPinger = deps.Redis
	}
	if deps.Poller != nil {
		watcher = deps.Poller
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": redisPinger,
		}, logg))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	customerPolicy := middleware.NewRateLimitPolicy(
		"customers",
		cfg.RateLimit.Window,
		cfg.RateLimit.IPLimit,
		cfg.RateLimit.EmailLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/catalog/models", func(r chi.Router) {
			r.Get("/", controllers.CatalogModels(deps.Catalog, logg))
			r.Get("/{modelId}", controllers.CatalogModel(deps.Catalog, logg))
		})

		r.Get("/leasing/options", controllers.LeasingOptions())
		r.Get("/leasing/quote", controllers.LeasingQuote(cfg.Leasing, logg))
		r.Get("/loan/quote", controllers.LoanQuote(cfg.Leasing, logg))

		r.Route("/configurations", func(r chi.Router) {
			r.Post("/", controllers.ConfigurationCreate(deps.Sessions, logg))
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", controllers.ConfigurationGet(deps.Sessions, logg))
				r.Delete("/", controllers.ConfigurationDelete(deps.Sessions, logg))
				r.Put("/model", controllers.ConfigurationLoadModel(deps.Sessions, logg))
				r.Put("/selections/{category}", controllers.ConfigurationSelect(deps.Sessions, logg))
				r.Post("/features/{category}", controllers.ConfigurationToggleFeature(deps.Sessions, logg))
				r.Post("/navigation", controllers.ConfigurationNavigate(deps.Sessions, logg))
				r.Put("/term", controllers.ConfigurationSelectTerm(deps.Sessions, logg))
				r.Post("/reset", controllers.ConfigurationReset(deps.Sessions, logg))
				r.Post("/drafts", controllers.ConfigurationSaveDraft(deps.Sessions, logg))
				r.Post("/checkout", controllers.ConfigurationCheckout(deps.Sessions, deps.Checkout, logg))
			})
		})

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", controllers.DraftList(deps.Drafts, logg))
			r.Get("/{draftId}", controllers.DraftGet(deps.Drafts, logg))
			r.Delete("/{draftId}", controllers.DraftDelete(deps.Drafts, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Use(middleware.RateLimit(customerPolicy, limiter, logg))
			r.Post("/", controllers.CustomerResolve(deps.Customers, logg))
			r.Route("/{customerId}", func(r chi.Router) {
				r.Get("/", controllers.CustomerGet(deps.Customers, logg))
				r.Get("/orders", controllers.CustomerOrders(deps.Orders, logg))
				r.Post("/verification", controllers.CustomerIssueVerification(deps.Customers, logg))
				r.Get("/verification", controllers.CustomerVerificationStatus(deps.Customers, watcher, logg))
				r.Post("/verification/confirm", controllers.CustomerConfirmVerification(deps.Customers, logg))
			})
		})

		r.Get("/orders/{orderId}", controllers.OrderGet(deps.Orders, logg))
	})

	return r
}
