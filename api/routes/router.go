package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuskart/campuskart-backend/api/controllers"
	ordercontrollers "github.com/campuskart/campuskart-backend/api/controllers/orders"
	"github.com/campuskart/campuskart-backend/api/middleware"
	checkoutsvc "github.com/campuskart/campuskart-backend/internal/checkout"
	"github.com/campuskart/campuskart-backend/internal/deliveryrules"
	"github.com/campuskart/campuskart-backend/internal/groups"
	"github.com/campuskart/campuskart-backend/internal/notifications"
	"github.com/campuskart/campuskart-backend/internal/orders"
	"github.com/campuskart/campuskart-backend/pkg/config"
	"github.com/campuskart/campuskart-backend/pkg/db"
	"github.com/campuskart/campuskart-backend/pkg/logger"
	"github.com/campuskart/campuskart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	groupsService groups.Service,
	rulesService deliveryrules.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.RateLimit.CheckoutWindow,
		cfg.RateLimit.CheckoutIPLimit,
		cfg.RateLimit.CheckoutUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/v1", func(r chi.Router) {
			r.With(middleware.RateLimit(checkoutPolicy, redisClient, logg)).
				Post("/checkout", controllers.Checkout(checkoutService, logg))
			r.Post("/delivery-charge/quote", controllers.QuoteDeliveryCharge(rulesService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/{orderId}/cancel", ordercontrollers.Cancel(ordersService, logg))
				r.Post("/{orderId}/return", ordercontrollers.RequestReturn(ordersService, logg))
				r.Post("/{orderId}/confirm-receipt", ordercontrollers.ConfirmReceipt(ordersService, logg))
			})

			r.Route("/order-groups", func(r chi.Router) {
				r.Get("/", controllers.ListMyGroups(groupsService, logg))
				r.Get("/{groupId}", controllers.GroupDetail(groupsService, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(notificationsService, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			})

			r.Route("/seller", func(r chi.Router) {
				r.Use(middleware.RequireRole("seller", logg))
				r.Route("/orders", func(r chi.Router) {
					r.Post("/{orderId}/confirm", ordercontrollers.Confirm(ordersService, logg))
					r.Post("/{orderId}/reject", ordercontrollers.Reject(ordersService, logg))
					r.Post("/{orderId}/advance", ordercontrollers.Advance(ordersService, logg))
					r.Post("/{orderId}/return/approve", ordercontrollers.ApproveReturn(ordersService, logg))
					r.Post("/{orderId}/return/reject", ordercontrollers.RejectReturn(ordersService, logg))
					r.Post("/{orderId}/replacement/approve", ordercontrollers.ApproveReplacement(ordersService, logg))
				})
				r.Route("/order-groups", func(r chi.Router) {
					r.Get("/", controllers.ListSellerGroups(groupsService, logg))
					r.Get("/{groupId}", controllers.GroupDetail(groupsService, logg))
				})
			})

			r.Route("/staff", func(r chi.Router) {
				r.Use(middleware.RequireOperator(logg))
				r.Post("/orders/{orderId}/advance", ordercontrollers.Advance(ordersService, logg))
				r.Route("/order-groups", func(r chi.Router) {
					r.Get("/", controllers.ListAllGroups(groupsService, logg))
					r.Get("/{groupId}", controllers.GroupDetail(groupsService, logg))
					r.Post("/{groupId}/delivery-fee/paid", ordercontrollers.SettleGroupFee(ordersService, logg))
				})
			})
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Route("/v1/delivery-rules", func(r chi.Router) {
			r.Get("/{kind}", controllers.AdminDeliveryRulesList(rulesService, logg))
			r.Put("/{kind}", controllers.AdminDeliveryRulesReplace(rulesService, logg))
		})
	})

	return r
}
