package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/shopdesk-backend/api/controllers"
	"github.com/angelmondragon/shopdesk-backend/api/middleware"
	"github.com/angelmondragon/shopdesk-backend/internal/auth"
	"github.com/angelmondragon/shopdesk-backend/internal/catalog"
	"github.com/angelmondragon/shopdesk-backend/internal/contacts"
	"github.com/angelmondragon/shopdesk-backend/internal/notifications"
	"github.com/angelmondragon/shopdesk-backend/internal/orders"
	"github.com/angelmondragon/shopdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/shopdesk-backend/pkg/config"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
	"github.com/angelmondragon/shopdesk-backend/pkg/metrics"
	"github.com/angelmondragon/shopdesk-backend/pkg/redis"
)

// redisStore is the slice of the redis client the middleware chain needs.
type redisStore interface {
	redis.IdempotencyStore
	controllers.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	dbP controllers.Pinger,
	redisClient redisStore,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	registerService auth.RegisterService,
	contactsService contacts.Service,
	catalogService catalog.Service,
	ordersService orders.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var idempotencyStore redis.IdempotencyStore
	if cfg.FeatureFlags.Idempotency && redisClient != nil {
		idempotencyStore = redisClient
	}
	idempotency := middleware.Idempotency(idempotencyStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.With(
				middleware.AuthRateLimit(registerPolicy, redisClient, logg),
				idempotency,
			).Post("/register", controllers.AuthRegister(registerService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.Post("/refresh", controllers.AuthRefresh(authService, logg))
			r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
				r.Use(idempotency)
				r.Get("/contact", controllers.ContactList(contactsService, logg))
				r.Post("/contact", controllers.ContactCreate(contactsService, logg))
				r.Put("/contact", controllers.ContactUpdate(contactsService, logg))
				r.Delete("/contact", controllers.ContactDelete(contactsService, logg))
			})
		})

		r.Get("/products", controllers.ProductsQuery(catalogService, logg))
		r.Get("/shops", controllers.ShopsList(catalogService, logg))
		r.Get("/categories", controllers.CategoriesList(catalogService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Use(idempotency)

			r.Get("/basket", controllers.BasketFetch(ordersService, logg))
			r.Post("/basket", controllers.BasketAdd(ordersService, logg))
			r.Put("/basket", controllers.BasketUpdate(ordersService, logg))
			r.Delete("/basket", controllers.BasketRemove(ordersService, logg))

			r.Get("/order", controllers.OrderList(ordersService, logg))
			r.Post("/order", controllers.OrderSubmit(ordersService, logg))
			r.With(middleware.RequireStaff(logg)).Post("/order/confirm", controllers.OrderConfirm(ordersService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireShop(logg))
				r.Get("/partner/orders", controllers.PartnerOrders(ordersService, logg))
				r.Post("/partner/update", controllers.PartnerUpdate(catalogService, cfg.Catalog.MaxFeedBytes, logg))
				r.Get("/partner/state", controllers.PartnerState(catalogService, logg))
				r.Post("/partner/state", controllers.PartnerState(catalogService, logg))
			})

			r.Get("/notifications", controllers.ListNotifications(notificationsService, logg))
			r.Post("/notifications/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/notifications/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
