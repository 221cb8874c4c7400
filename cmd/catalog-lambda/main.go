package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/angelmondragon/dronemart-backend/api/routes"
	"github.com/angelmondragon/dronemart-backend/internal/catalog"
	"github.com/angelmondragon/dronemart-backend/internal/media"
	product "github.com/angelmondragon/dronemart-backend/internal/products"
	"github.com/angelmondragon/dronemart-backend/pkg/config"
	"github.com/angelmondragon/dronemart-backend/pkg/db"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
	"github.com/angelmondragon/dronemart-backend/pkg/redis"
	"github.com/angelmondragon/dronemart-backend/pkg/storage/gcs"
)

const serviceName = "catalog-lambda"

// Connections are opened once per cold start and reused across invocations.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	var signer *gcs.Client
	if cfg.GCS.BucketName != "" {
		signer, err = gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		requireResource(ctx, logg, "gcs", err)
	}

	opts := []catalog.ReaderOption{
		catalog.WithLogger(logg),
		catalog.WithRecommendationLimit(cfg.Catalog.RecommendationLimit),
	}
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		opts = append(opts, catalog.WithCache(catalog.NewSnapshotCache(redisClient, cfg.Catalog.CacheTTL)))
	}

	resolver := media.NewResolver(signer)
	reader, err := catalog.NewReader(product.NewRepository(dbClient.DB()), resolver, opts...)
	requireResource(ctx, logg, "catalog reader", err)

	handler := routes.NewCatalogRouter(routes.Deps{
		Config:  cfg,
		Logger:  logg,
		Catalog: reader,
		Media:   resolver,
	})

	logg.Info(logg.WithField(ctx, "env", cfg.App.Env), "catalog lambda ready")
	lambda.Start(proxyHandler(handler))
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
