package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/dronemart-backend/api/controllers"
	"github.com/angelmondragon/dronemart-backend/api/middleware"
	"github.com/angelmondragon/dronemart-backend/internal/auth"
	product "github.com/angelmondragon/dronemart-backend/internal/products"
	"github.com/angelmondragon/dronemart-backend/pkg/auth/session"
	"github.com/angelmondragon/dronemart-backend/pkg/config"
	"github.com/angelmondragon/dronemart-backend/pkg/enums"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
	"github.com/angelmondragon/dronemart-backend/pkg/redis"
)

// KeyValueStore is the Redis surface shared by idempotency and rate limiting.
type KeyValueStore interface {
	redis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// Deps carries everything the router hands to controllers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions session.AccessSessionChecker
	Store    KeyValueStore

	HTTPMetrics    interface{ Observe(string, string, int, time.Duration) }
	MetricsHandler http.Handler
	Ready          map[string]controllers.Pinger

	Auth     auth.Service
	Register auth.RegisterService
	Catalog  controllers.CatalogReader
	Media    controllers.MediaResolver
	Products product.Service
	Carts    controllers.CartStores
	Checkout controllers.CheckoutService
	Users    controllers.UserFinder
	Orders   controllers.OrderLister
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := baseRouter(d)

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

	passthrough := func(next http.Handler) http.Handler { return next }
	var (
		idempotency         = passthrough
		checkoutIdempotency = passthrough
		loginLimit          = passthrough
		signupLimit         = passthrough
	)
	if d.Store != nil {
		idempotency = middleware.Idempotency(d.Store, middleware.DefaultIdempotencyTTL, logg)
		checkoutIdempotency = middleware.Idempotency(d.Store, middleware.CheckoutIdempotencyTTL, logg)
		loginLimit = middleware.AuthRateLimit(loginPolicy, d.Store, logg)
		signupLimit = middleware.AuthRateLimit(registerPolicy, d.Store, logg)
	}

	requireAuth := middleware.Auth(cfg.JWT, d.Sessions, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, d.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.Ready, logg))
	})
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	mountCatalog(r, d)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(signupLimit, idempotency).Post("/register", controllers.AuthRegister(d.Register, d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(d.Auth, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(optionalAuth, middleware.CartID(logg))
		r.Get("/", controllers.CartGet(d.Carts, logg))
		r.Delete("/", controllers.CartClear(d.Carts, logg))
		r.Post("/items", controllers.CartAddItem(d.Carts, d.Products, logg))
		r.Patch("/items/{productId}/quantity", controllers.CartSetQuantity(d.Carts, logg))
		r.Patch("/items/{productId}/mode", controllers.CartSetMode(d.Carts, d.Products, logg))
		r.Delete("/items/{productId}", controllers.CartRemoveItem(d.Carts, logg))
	})

	r.With(optionalAuth, middleware.OptionalCartID(logg), checkoutIdempotency).
		Post("/api/v1/checkout", controllers.Checkout(d.Checkout, d.Carts, logg))

	r.Route("/api/v1/account", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", controllers.Account(d.Users, logg))
		r.Get("/orders", controllers.AccountOrders(d.Orders, logg))
	})

	r.Route("/api/admin/v1/products", func(r chi.Router) {
		r.Use(requireAuth, middleware.RequireRole(logg, enums.UserRoleAdmin))
		r.Get("/", controllers.AdminProductsList(d.Products, logg))
		r.With(idempotency).Post("/", controllers.AdminProductCreate(d.Products, logg))
		r.Get("/export", controllers.AdminProductsExport(d.Products, logg))
		r.With(idempotency).Post("/seed", controllers.AdminProductsSeed(d.Products, logg))
		r.Get("/{productId}", controllers.AdminProductGet(d.Products, logg))
		r.Patch("/{productId}", controllers.AdminProductUpdate(d.Products, logg))
		r.Delete("/{productId}", controllers.AdminProductDelete(d.Products, logg))
	})

	return r
}

// NewCatalogRouter serves only the public storefront reads. The serverless
// entrypoint uses it so it never needs sessions or Redis.
func NewCatalogRouter(d Deps) http.Handler {
	r := baseRouter(d)
	r.Get("/health/live", controllers.HealthLive(d.Config))
	mountCatalog(r, d)
	return r
}

func baseRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(d.Logger),
		middleware.RequestID(d.Logger),
		middleware.Logging(d.Logger),
		middleware.CORS(d.Config.App.CORSOrigins...),
	)
	if d.HTTPMetrics != nil {
		r.Use(middleware.Metrics(d.HTTPMetrics))
	}
	return r
}

// Storefront reads are public.
func mountCatalog(r chi.Router, d Deps) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", controllers.CatalogList(d.Catalog, d.Logger))
		r.Get("/products/types", controllers.CatalogTypes(d.Catalog, d.Logger))
		r.Get("/products/{productId}", controllers.CatalogProduct(d.Catalog, d.Logger))
		r.Get("/signed-url", controllers.SignedURL(d.Media, d.Logger))
	})
}
