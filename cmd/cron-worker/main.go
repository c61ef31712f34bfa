// Command cron-worker runs the daily maintenance jobs. Replicas share a redis
// lock so each cycle executes on one instance only.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/dealtracker-backend/internal/cron"
	"github.com/angelmondragon/dealtracker-backend/internal/notifications"
	"github.com/angelmondragon/dealtracker-backend/pkg/config"
	"github.com/angelmondragon/dealtracker-backend/pkg/db"
	"github.com/angelmondragon/dealtracker-backend/pkg/instance"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/metrics"
	"github.com/angelmondragon/dealtracker-backend/pkg/migrate"
	"github.com/angelmondragon/dealtracker-backend/pkg/redis"
)

const serviceKind = "cron-worker"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg := logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shut down gracefully")
}

// run owns every connection it opens, so deferred closes execute before main exits.
func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer closeQuietly(ctx, logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer closeQuietly(ctx, logg, "redis", redisClient.Close)

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(cfg.App.Env, serviceKind), 0, instance.GetID())
	if err != nil {
		return err
	}
	cleanup, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:        logg,
		DB:            dbClient,
		Repository:    notifications.NewRepository(dbClient.DB()),
		RetentionDays: cfg.Cron.NotificationRetentionDays,
	})
	if err != nil {
		return err
	}
	svc, err := cron.NewService(cron.ServiceParams{
		Name:     serviceKind,
		Logger:   logg,
		Registry: cron.NewRegistry(cleanup),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return err
	}

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func closeQuietly(ctx context.Context, logg *logger.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(logg.WithField(ctx, "resource", what), "close failed", err)
	}
}
