// Command catalogctl manages the drone catalog from a terminal: seeding from
// YAML, listing with the storefront filter and exporting to a spreadsheet.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/dronemart-backend/internal/catalog"
	product "github.com/angelmondragon/dronemart-backend/internal/products"
	"github.com/angelmondragon/dronemart-backend/pkg/config"
	"github.com/angelmondragon/dronemart-backend/pkg/db"
	"github.com/angelmondragon/dronemart-backend/pkg/logger"
	"github.com/angelmondragon/dronemart-backend/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(openProducts)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// openProducts connects to the configured database. Redis is optional and only
// used to drop the storefront snapshot after writes.
func openProducts(ctx context.Context) (product.Service, func() error, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logg := logger.New(logger.Options{
		ServiceName: "catalogctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	closers := []func() error{dbClient.Close}
	closeAll := func() error {
		var err error
		for _, c := range closers {
			err = multierr.Append(err, c())
		}
		return err
	}

	var cache product.CacheInvalidator
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, nil, multierr.Append(fmt.Errorf("redis: %w", err), closeAll())
		}
		closers = append(closers, redisClient.Close)
		cache = catalog.NewSnapshotCache(redisClient, cfg.Catalog.CacheTTL)
	}

	svc, err := product.NewService(product.NewRepository(dbClient.DB()), cache, logg)
	if err != nil {
		return nil, nil, multierr.Append(err, closeAll())
	}
	return svc, closeAll, nil
}
