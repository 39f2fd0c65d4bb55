package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"payments/internal/app"
	"payments/internal/config"
	"payments/internal/events"
	"payments/internal/handler"
	"payments/internal/logger"
	"payments/internal/provider"
	internalRedis "payments/internal/redis"
	"payments/internal/repository/postgres"
	"payments/internal/scheduler"
	"payments/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			zlog.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			zlog.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	zlog.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	zlog.Info("connected to Redis")

	if cfg.Webhook.Secret == "" {
		zlog.Warn("AUTHENTICATION_KEY is empty, provider webhooks will be rejected")
	}

	sched := scheduler.New()

	gateway, err := provider.NewGateway(cfg, sched, zlog)
	if err != nil {
		log.Fatalf("failed to configure payment provider: %v", err)
	}
	zlog.Info("payment provider selected", zap.String("provider", gateway.Name()))

	publisher := newPublisher(cfg.Kafka, zlog)

	server := wireServer(db, redisClient, nrApp, gateway, publisher, zlog, cfg)

	go func() {
		zlog.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	// Pending simulated confirmations are dropped; running deliveries finish.
	if err := sched.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("scheduler did not drain", zap.Error(err))
	}

	if err := publisher.Close(); err != nil {
		zlog.Warn("failed to close event publisher", zap.Error(err))
	}

	if nrApp != nil {
		nrApp.Shutdown(cfg.Server.ShutdownTimeout)
	}

	zlog.Info("server exited")
}

// newPublisher returns a Kafka publisher, or a no-op one when no brokers are configured.
func newPublisher(cfg config.KafkaConfig, zlog *zap.Logger) events.Publisher {
	if len(cfg.Brokers) == 0 {
		zlog.Info("status events disabled (no KAFKA_BROKERS)")
		return events.NoopPublisher{}
	}
	zlog.Info("publishing status events", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.StatusTopic))
	return events.NewKafkaPublisher(cfg.Brokers, cfg.StatusTopic)
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	gateway provider.Gateway,
	publisher events.Publisher,
	zlog *zap.Logger,
	cfg *config.Config,
) *http.Server {
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient, cfg.Payment.CacheTTL)

	paymentRepo := postgres.NewPaymentRepository(db)

	paymentService := service.NewPaymentService(paymentRepo, lockStore, gateway,
		service.WithCache(cacheStore),
		service.WithPublisher(publisher),
		service.WithLogger(zlog),
		service.WithLockTTL(cfg.Payment.LockTTL),
		service.WithTerminalGuard(cfg.Payment.GuardTerminal),
	)

	paymentHandler := handler.NewPaymentHandler(paymentService)

	router := app.NewRouter(app.RouterDeps{
		PaymentHandler: paymentHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		Logger:         zlog,
		WebhookHeader:  cfg.Webhook.Header,
		WebhookSecret:  cfg.Webhook.Secret,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
