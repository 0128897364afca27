package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mohansky/ecom-backend/api/controllers"
	"github.com/mohansky/ecom-backend/api/middleware"
	"github.com/mohansky/ecom-backend/internal/orders"
	"github.com/mohansky/ecom-backend/internal/payments"
	"github.com/mohansky/ecom-backend/internal/products"
	"github.com/mohansky/ecom-backend/pkg/config"
	"github.com/mohansky/ecom-backend/pkg/db"
	"github.com/mohansky/ecom-backend/pkg/logger"
	"github.com/mohansky/ecom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	paymentsService payments.Service,
	ordersService orders.Service,
	productsService products.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Idempotency(redisClient, logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/payment", func(r chi.Router) {
			r.Post("/create-order", controllers.PaymentCreateOrder(paymentsService, logg))
			r.Post("/verify", controllers.PaymentVerify(paymentsService, logg))
		})

		r.Route("/orders/{id}", func(r chi.Router) {
			r.Get("/", controllers.OrderGet(ordersService, logg))
			r.Patch("/status", controllers.OrderUpdateStatus(ordersService, logg))
		})

		r.Post("/products/update-stock", controllers.ProductUpdateStock(productsService, logg))
	})

	return r
}
