package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/api"
	"github.com/harvesthub/marketplace/internal/auth"
	"github.com/harvesthub/marketplace/internal/cache"
	"github.com/harvesthub/marketplace/internal/config"
	"github.com/harvesthub/marketplace/internal/outbox"
	"github.com/harvesthub/marketplace/internal/paystack"
	"github.com/harvesthub/marketplace/internal/repository/postgres"
	"github.com/harvesthub/marketplace/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting marketplace server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)

	// Initialize database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db, cfg.Database, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	repos := postgres.NewRepositories(db, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Catalog, optionally behind Redis
	var catalog service.Catalog = service.NewCatalogService(repos, logger)
	var invalidator service.ProductCacheInvalidator
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, cache reads will fall through", zap.Error(err))
		}
		cached := cache.NewCachedCatalog(catalog, rdb, cfg.Redis.CacheTTL, logger)
		catalog = cached
		invalidator = cached
		logger.Info("Catalog cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// Order event relay
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := outbox.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Fatal("Failed to create Kafka publisher", zap.Error(err))
		}
		defer publisher.Close()
		relay := outbox.NewRelay(repos, publisher, cfg.Kafka.PollInterval, logger)
		go relay.Start(ctx)
	} else {
		logger.Info("KAFKA_BROKERS not set, order events stay in the database")
	}

	gateway := paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.Timeout, logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)

	router := api.NewRouter(cfg, api.Dependencies{
		Repos:   repos,
		Tokens:  tokens,
		Auth:    service.NewAuthService(repos, tokens, logger),
		Catalog: catalog,
		Checkout: service.NewCheckoutService(repos, service.CheckoutOptions{
			OrderNumberPrefix: cfg.Checkout.OrderNumberPrefix,
			EnforceLivePrice:  cfg.Checkout.EnforceLivePrice,
		}, logger),
		Payments: service.NewPaymentService(repos, cfg.Paystack.SecretKey, cfg.Checkout.CommissionRate, gateway, invalidator, logger),
		Orders:   service.NewOrderService(repos, logger),
		Reviews:  service.NewReviewService(repos, logger),
		Vendors:  service.NewVendorService(repos, logger),
		Admin:    service.NewAdminService(repos, logger),
	}, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started successfully", zap.String("address", srv.Addr))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
