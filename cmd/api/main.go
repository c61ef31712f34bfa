package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/dealtracker-backend/api/controllers"
	"github.com/angelmondragon/dealtracker-backend/api/routes"
	"github.com/angelmondragon/dealtracker-backend/internal/auth"
	"github.com/angelmondragon/dealtracker-backend/internal/cron"
	"github.com/angelmondragon/dealtracker-backend/internal/deals"
	"github.com/angelmondragon/dealtracker-backend/internal/notifications"
	"github.com/angelmondragon/dealtracker-backend/internal/pricealerts"
	"github.com/angelmondragon/dealtracker-backend/internal/users"
	"github.com/angelmondragon/dealtracker-backend/internal/wishlist"
	"github.com/angelmondragon/dealtracker-backend/pkg/auth/session"
	"github.com/angelmondragon/dealtracker-backend/pkg/config"
	"github.com/angelmondragon/dealtracker-backend/pkg/db"
	"github.com/angelmondragon/dealtracker-backend/pkg/instance"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
	"github.com/angelmondragon/dealtracker-backend/pkg/metrics"
	"github.com/angelmondragon/dealtracker-backend/pkg/migrate"
	"github.com/angelmondragon/dealtracker-backend/pkg/redis"
	"github.com/angelmondragon/dealtracker-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}
	hasher, err := security.NewHasher(cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create password hasher", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	dealRepo := deals.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Hasher:         hasher,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	dealsService, err := deals.NewService(dealRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create deals service", err)
		os.Exit(1)
	}
	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlist.NewRepository(dbClient.DB()),
		UserRepo:     userRepo,
		DealRepo:     dealRepo,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	registry := prometheus.DefaultRegisterer
	handler := routes.NewRouter(routes.Params{
		Config:    cfg,
		Logger:    logg,
		Sessions:  sessionManager,
		RateLimit: redisClient,
		Health: map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
		},
		Auth:          authService,
		Deals:         dealsService,
		Wishlist:      wishlistService,
		Notifications: notificationsService,
		HTTPMetrics:   metrics.NewHTTPMetrics(registry),
		Gatherer:      prometheus.DefaultGatherer,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	if cfg.PriceAlerts.Enabled {
		lock, err := scannerLock(cfg, redisClient)
		if err != nil {
			logg.Error(ctx, "failed to create price alert lock", err)
			os.Exit(1)
		}
		scanner, err := cron.StartPriceAlertScanner(groupCtx, cron.ScannerParams{
			Logger:       logg,
			DB:           dbClient,
			Store:        pricealerts.NewRepository(dbClient.DB()),
			Lock:         lock,
			Metrics:      metrics.NewPriceAlertMetrics(registry),
			CronMetrics:  metrics.NewCronJobMetrics(registry),
			Interval:     cfg.PriceAlerts.Interval,
			FetchTimeout: cfg.PriceAlerts.FetchTimeout,
			WriteTimeout: cfg.PriceAlerts.WriteTimeout,
		})
		if err != nil {
			logg.Error(ctx, "failed to start price alert scanner", err)
			os.Exit(1)
		}
		group.Go(scanner.Wait)
	} else {
		logg.Warn(ctx, "price alert scanner disabled")
	}

	group.Go(func() error {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logg.Error(ctx, "api stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api shut down gracefully")
}

// scannerLock serializes scans across replicas when configured, otherwise within this process only.
func scannerLock(cfg *config.Config, client *redis.Client) (cron.Lock, error) {
	if !cfg.PriceAlerts.DistributedLock {
		return cron.NewLocalLock(), nil
	}
	return cron.NewRedisLock(client, client.LockKey(cfg.App.Env, cron.PriceAlertJobName), cfg.PriceAlerts.LockTTL, instance.GetID())
}
