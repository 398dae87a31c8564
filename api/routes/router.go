package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NghaReformer/eventune-backend/api/controllers"
	webhookcontrollers "github.com/NghaReformer/eventune-backend/api/controllers/webhooks"
	"github.com/NghaReformer/eventune-backend/api/middleware"
	"github.com/NghaReformer/eventune-backend/internal/orders"
	"github.com/NghaReformer/eventune-backend/internal/payments"
	"github.com/NghaReformer/eventune-backend/internal/refunds"
	"github.com/NghaReformer/eventune-backend/internal/webhooks"
	"github.com/NghaReformer/eventune-backend/pkg/config"
	"github.com/NghaReformer/eventune-backend/pkg/db"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
	"github.com/NghaReformer/eventune-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Nil optional members
// (metrics gatherer) disable their routes.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               db.Pinger
	Redis            redis.Pinger
	Orders           orders.Service
	Refunds          *refunds.Service
	Webhooks         *webhooks.Service
	StripeVerifier   payments.Verifier
	NotchPayVerifier payments.Verifier
	Gatherer         prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeVerifier, deps.Webhooks, logg))
		r.Post("/notchpay", webhookcontrollers.NotchPayWebhook(deps.NotchPayVerifier, deps.Webhooks, logg))
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", controllers.CreateOrder(deps.Orders, logg))
		r.Get("/{orderNumber}", controllers.PublicOrderStatus(deps.Orders, logg))
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireStaff(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(deps.Orders, logg))
			r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(deps.Orders, logg))
			r.Post("/{orderID}/deliver", controllers.DeliverOrder(deps.Orders, logg))
			r.Post("/{orderID}/refund", controllers.RefundOrder(deps.Refunds, logg))
		})
	})

	return r
}
