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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/riderschoice/riderschoice-backend/api/controllers"
	"github.com/riderschoice/riderschoice-backend/api/routes"
	"github.com/riderschoice/riderschoice-backend/internal/auth"
	"github.com/riderschoice/riderschoice-backend/internal/cart"
	"github.com/riderschoice/riderschoice-backend/internal/catalog"
	"github.com/riderschoice/riderschoice-backend/internal/orders"
	"github.com/riderschoice/riderschoice-backend/internal/users"
	"github.com/riderschoice/riderschoice-backend/internal/wishlist"
	"github.com/riderschoice/riderschoice-backend/pkg/auth/session"
	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
	"github.com/riderschoice/riderschoice-backend/pkg/metrics"
	"github.com/riderschoice/riderschoice-backend/pkg/migrate"
	"github.com/riderschoice/riderschoice-backend/pkg/outbox"
	"github.com/riderschoice/riderschoice-backend/pkg/redis"
)

const shutdownTimeout = 20 * time.Second

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
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT.AccessTokenTTL())
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	shopMetrics := metrics.NewShopMetrics(registry)

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)
	outboxWriter := outbox.NewWriter(logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		return err
	}
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:     catalogRepo,
		Accounts: userRepo,
		Tx:       dbClient,
		Outbox:   outboxWriter,
		Metrics:  shopMetrics,
	})
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Accounts: userRepo,
		Catalog:  catalogRepo,
		Tx:       dbClient,
	})
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(conn),
		Catalog: catalogRepo,
		Tx:      dbClient,
		Outbox:  outboxWriter,
		Metrics: shopMetrics,
	})
	if err != nil {
		return err
	}
	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlist.NewRepository(conn),
		CatalogRepo:  catalogRepo,
		Tx:           dbClient,
	})
	if err != nil {
		return err
	}

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		Sessions:    sessionManager,
		Redis:       redisClient,
		Ready:       map[string]controllers.Pinger{"database": dbClient, "redis": redisClient},
		Gatherer:    registry,
		HTTPMetrics: httpMetrics,
		Auth:        authService,
		Users:       userService,
		Catalog:     catalogService,
		Cart:        cartService,
		Orders:      orderService,
		Wishlist:    wishlistService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"db_driver": cfg.DB.Driver,
	})
	logg.Info(logCtx, "starting api server")

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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
