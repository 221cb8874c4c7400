package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/dronemart-backend/api"
	"github.com/angelmondragon/dronemart-backend/api/controllers"
	"github.com/angelmondragon/dronemart-backend/api/routes"
	"github.com/angelmondragon/dronemart-backend/internal/auth"
	"github.com/angelmondragon/dronemart-backend/internal/cart"
	"github.com/angelmondragon/dronemart-backend/internal/catalog"
	"github.com/angelmondragon/dronemart-backend/internal/checkout"
	"github.com/angelmondragon/dronemart-backend/internal/media"
	"github.com/angelmondragon/dronemart-backend/internal/orderevents"
	"github.com/angelmondragon/dronemart-backend/internal/orders"
	product "github.com/angelmondragon/dronemart-backend/internal/products"
	"github.com/angelmondragon/dronemart-backend/internal/users"
	"github.com/angelmondragon/dronemart-backend/pkg/auth/session"
	"github.com/angelmondragon/dronemart-backend/pkg/config"
	"github.com/angelmondragon/dronemart-backend/pkg/db"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
	"github.com/angelmondragon/dronemart-backend/pkg/metrics"
	"github.com/angelmondragon/dronemart-backend/pkg/migrate"
	"github.com/angelmondragon/dronemart-backend/pkg/pubsub"
	"github.com/angelmondragon/dronemart-backend/pkg/redis"
	"github.com/angelmondragon/dronemart-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i]())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error releasing resources", closeErr)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	closers = append(closers, dbClient.Close)

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	closers = append(closers, redisClient.Close)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	ready := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	// Media signing is optional; without a bucket the resolver reports
	// CONFIGURATION_ERROR and products render without a video URL.
	var signer *gcs.Client
	if cfg.GCS.BucketName != "" {
		signer, err = gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		requireResource(ctx, logg, "gcs", err)
		closers = append(closers, signer.Close)
		ready["gcs"] = signer
	} else {
		logg.Warn(ctx, "gcs bucket not configured, media signing disabled")
	}

	var events checkout.EventEmitter
	if cfg.PubSub.OrdersTopic != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		requireResource(ctx, logg, "pubsub", err)
		closers = append(closers, psClient.Close)
		ready["pubsub"] = psClient
		events = orderevents.NewEmitter(psClient, logg)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	requireResource(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "register service", err)

	productRepo := product.NewRepository(dbClient.DB())
	snapshots := catalog.NewSnapshotCache(redisClient, cfg.Catalog.CacheTTL)
	productService, err := product.NewService(productRepo, snapshots, logg)
	requireResource(ctx, logg, "product service", err)

	resolver := media.NewResolver(signer)
	reader, err := catalog.NewReader(productRepo, resolver,
		catalog.WithCache(snapshots),
		catalog.WithLogger(logg),
		catalog.WithRecommendationLimit(cfg.Catalog.RecommendationLimit),
	)
	requireResource(ctx, logg, "catalog reader", err)

	orderRepo := orders.NewRepository(dbClient.DB())
	checkoutService, err := checkout.NewService(orderRepo, checkout.Options{
		Atomic:  cfg.Checkout.Atomic,
		Tx:      dbClient,
		Events:  events,
		Metrics: checkoutMetrics,
		Logger:  logg,
	})
	requireResource(ctx, logg, "checkout service", err)

	handler := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		Sessions:       sessionManager,
		Store:          redisClient,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Ready:          ready,
		Auth:           authService,
		Register:       registerService,
		Catalog:        reader,
		Media:          resolver,
		Products:       productService,
		Carts:          cart.NewStores(redisClient, cfg.Cart.TTL, logg),
		Checkout:       checkoutService,
		Users:          userRepo,
		Orders:         orderRepo,
	})

	server := api.NewServer(cfg, handler)
	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": server.Addr,
	}), "starting api server")

	if err := api.Serve(ctx, server, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		stop()
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server stopped")
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize resource", err)
	os.Exit(1)
}
