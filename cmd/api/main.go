package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/configurator-backend/api/routes"
	"github.com/angelmondragon/configurator-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/configurator-backend/internal/checkout"
	"github.com/angelmondragon/configurator-backend/internal/configurator"
	"github.com/angelmondragon/configurator-backend/internal/customers"
	"github.com/angelmondragon/configurator-backend/internal/drafts"
	"github.com/angelmondragon/configurator-backend/internal/orders"
	"github.com/angelmondragon/configurator-backend/internal/pricing"
	"github.com/angelmondragon/configurator-backend/pkg/config"
	"github.com/angelmondragon/configurator-backend/pkg/db"
	"github.com/angelmondragon/configurator-backend/pkg/instance"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/angelmondragon/configurator-backend/pkg/metrics"
	"github.com/angelmondragon/configurator-backend/pkg/migrate"
	"github.com/angelmondragon/configurator-backend/pkg/redis"
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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("run dev migrations: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewConfiguratorMetrics(registry)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), m, logg)
	if err != nil {
		return fmt.Errorf("catalog service: %w", err)
	}

	draftStore, err := newDraftStore(cfg.Drafts, dbClient, redisClient)
	if err != nil {
		return err
	}
	draftsSvc, err := drafts.NewService(draftStore, m, logg)
	if err != nil {
		return fmt.Errorf("drafts service: %w", err)
	}

	var termPrefs pricing.TermPreferences = pricing.NewMemoryTermPreferences()
	customerParams := customers.ServiceParams{
		Repo:         customers.NewRepository(dbClient.DB()),
		Mailer:       customers.NewLogMailer(logg),
		Verification: cfg.Verification,
		Password:     cfg.Password,
		Logger:       logg,
	}
	deps := routes.Dependencies{
		DB:       dbClient,
		Gatherer: registry,
		Catalog:  catalogSvc,
		Drafts:   draftsSvc,
	}
	if redisClient != nil {
		termPrefs = pricing.NewRedisTermPreferences(redisClient)
		customerParams.Limiter = redisClient
		deps.Redis = redisClient
	}

	customerSvc, err := customers.NewService(customerParams)
	if err != nil {
		return fmt.Errorf("customers service: %w", err)
	}
	orderSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()), m, logg)
	if err != nil {
		return fmt.Errorf("orders service: %w", err)
	}
	checkout, err := checkoutsvc.NewService(customerSvc, orderSvc, logg)
	if err != nil {
		return fmt.Errorf("checkout service: %w", err)
	}

	sessions, err := configurator.NewManager(configurator.ManagerParams{
		Catalog:           catalogSvc,
		Drafts:            draftsSvc,
		TermPreferences:   termPrefs,
		DefaultTermMonths: cfg.Leasing.DefaultTermMonths,
		Metrics:           m,
		Logger:            logg,
	})
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}
	go sessions.RunJanitor(ctx, cfg.Sessions.JanitorInterval, cfg.Sessions.IdleTimeout)

	deps.Sessions = sessions
	deps.Customers = customerSvc
	deps.Poller = customers.NewPoller(customerSvc, cfg.Verification, logg)
	deps.Orders = orderSvc
	deps.Checkout = checkout

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"instance":      instance.GetID(),
		"drafts_driver": cfg.Drafts.NormalizedDriver(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-serveErr
}

func newDraftStore(cfg config.DraftsConfig, dbClient *db.Client, redisClient *redis.Client) (drafts.Store, error) {
	switch cfg.NormalizedDriver() {
	case config.DraftsDriverRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("drafts driver %q requires %s", config.DraftsDriverRedis, config.EnvRedisURL)
		}
		return drafts.NewRedisStore(redisClient), nil
	case config.DraftsDriverPostgres:
		return drafts.NewDBStore(dbClient.DB()), nil
	default:
		return drafts.NewMemoryStore(), nil
	}
}
