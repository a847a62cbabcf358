package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tdbstore/tdb-backend/api/controllers"
	"github.com/tdbstore/tdb-backend/api/middleware"
	"github.com/tdbstore/tdb-backend/internal/payments"
	"github.com/tdbstore/tdb-backend/pkg/config"
	"github.com/tdbstore/tdb-backend/pkg/logger"
	"github.com/tdbstore/tdb-backend/pkg/redis"
)

type pinger interface {
	Ping(context.Context) error
}

// Dependencies carries everything the HTTP surface needs. RedisClient and
// Registry are optional; the routes that need them are skipped or pass
// through when absent.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    pinger
	RedisClient *redis.Client
	Payments    payments.Service
	Registry    prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(deps.Config.Checkout.ClientURL),
	)

	var redisPinger pinger
	rateLimit := passthrough
	if deps.RedisClient != nil {
		redisPinger = deps.RedisClient
		policy := middleware.NewPaymentRateLimitPolicy(
			deps.Config.RateLimit.Window,
			deps.Config.RateLimit.IPLimit,
		)
		rateLimit = middleware.PaymentRateLimit(policy, deps.RedisClient, deps.Logger)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DBPinger, redisPinger))
	})

	r.Route("/api/payments", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(deps.Config.JWT, deps.Logger))
		r.Use(rateLimit)
		r.Post("/create-order", controllers.CreateOrder(deps.Payments, deps.Logger))
		r.Post("/capture-order", controllers.CaptureOrder(deps.Payments, deps.Logger))
		r.Get("/orders/{orderID}", controllers.GetOrder(deps.Payments, deps.Logger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	return r
}

func passthrough(next http.Handler) http.Handler {
	return next
}
