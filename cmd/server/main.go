package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/adapters/card"
	"github.com/fundhive/donation-service/internal/adapters/fakepay"
	"github.com/fundhive/donation-service/internal/adapters/paypal"
	"github.com/fundhive/donation-service/internal/adapters/postgres"
	"github.com/fundhive/donation-service/internal/adapters/secrets"
	"github.com/fundhive/donation-service/internal/adapters/webhook"
	"github.com/fundhive/donation-service/internal/config"
	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
	"github.com/fundhive/donation-service/internal/handlers"
	donationHandler "github.com/fundhive/donation-service/internal/handlers/donation"
	paymentHandler "github.com/fundhive/donation-service/internal/handlers/payment"
	"github.com/fundhive/donation-service/internal/services/aggregation"
	"github.com/fundhive/donation-service/internal/services/notification"
	paymentService "github.com/fundhive/donation-service/internal/services/payment"
	"github.com/fundhive/donation-service/internal/workers"
	pkgmiddleware "github.com/fundhive/donation-service/pkg/middleware"
	"github.com/fundhive/donation-service/pkg/observability"
	"github.com/fundhive/donation-service/pkg/resilience"
	"github.com/fundhive/donation-service/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load configuration", zap.Error(err))
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("starting donation service",
		zap.String("environment", cfg.Environment),
	)

	ctx := context.Background()

	dbPool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	db := postgres.NewDBExecutor(dbPool)
	paymentRepo := postgres.NewPaymentRepository(db)
	donationRepo := postgres.NewDonationRepository(db)
	campaignRepo := postgres.NewCampaignRepository(db)
	taskRepo := postgres.NewTaskRepository(db)

	secretManager, err := initSecrets(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize secret backend", zap.Error(err))
	}

	registry := buildRegistry(cfg, secretManager, logger)
	guard := paymentService.NewGuard(donationRepo)
	queue := workers.NewQueue(db, taskRepo, cfg.TaskMaxAttempts, logger)

	processing := paymentService.NewProcessingService(
		db, paymentRepo, donationRepo, campaignRepo, registry, guard, queue, logger)
	callbacks := paymentService.NewCallbackService(
		db, paymentRepo, donationRepo, campaignRepo, registry, guard, queue, logger)

	aggregator := aggregation.NewService(db, donationRepo, campaignRepo, logger)

	notifier := webhook.NewNotifier(
		webhook.DefaultConfig(cfg.WebhookEndpoint, cfg.WebhookSecretPath),
		secretManager, logger)
	dispatcher := notification.NewDispatcher(notifier, logger)

	timeouts := resilience.DefaultTimeoutConfig()
	workerPool := workers.NewPool(db, taskRepo, workers.NewHandlers(aggregator, dispatcher),
		&workers.PoolConfig{
			PollInterval: cfg.WorkerPollInterval,
			BatchSize:    cfg.WorkerBatchSize,
			Concurrency:  cfg.WorkerConcurrency,
		}, timeouts, logger)
	workerPool.Start(ctx)

	rateLimiter := pkgmiddleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)

	router := handlers.NewRouter(handlers.RouterConfig{
		Payments:    paymentHandler.NewHandler(processing, callbacks, logger),
		Donations:   donationHandler.NewHandler(processing, logger),
		JWTSecret:   cfg.JWTSecret,
		RateLimiter: rateLimiter,
		Timeouts:    timeouts,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeouts.HTTPHandler,
		IdleTimeout:  60 * time.Second,
	}

	healthChecker := observability.NewHealthChecker(dbPool)
	metricsServer := observability.StartMetricsServer(cfg.MetricsPort, healthChecker)

	// Registered in reverse shutdown order: HTTP drains first, database
	// closes last.
	manager := shutdown.NewManager(logger, cfg.ShutdownTimeout)
	manager.Register("database", func(ctx context.Context) error {
		dbPool.Close()
		return nil
	})
	manager.Register("rate_limiter", func(ctx context.Context) error {
		rateLimiter.Shutdown()
		return nil
	})
	manager.Register("worker_pool", workerPool.Stop)
	manager.Register("metrics_server", func(ctx context.Context) error {
		return observability.ShutdownMetricsServer(metricsServer)
	})
	manager.Register("http_server", server.Shutdown)

	go func() {
		logger.Info("http server listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	manager.WaitForShutdown()
}

func initLogger(cfg *config.Config) *zap.Logger {
	var logger *zap.Logger
	var err error
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		os.Exit(1)
	}
	return logger
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = 20
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return nil, err
	}

	logger.Info("database connected",
		zap.Int32("max_conns", poolConfig.MaxConns),
	)
	return pool, nil
}

func initSecrets(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.SecretManager, error) {
	switch cfg.SecretsBackend {
	case "aws":
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.AWSRegion)
		awsCfg.Endpoint = cfg.AWSEndpoint
		return secrets.NewAWSSecretsManager(ctx, awsCfg, logger)
	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.VaultAddress)
		vaultCfg.Token = cfg.VaultToken
		return secrets.NewVaultSecretManager(ctx, vaultCfg, logger)
	default:
		return secrets.NewEnvSecretManager("SECRET_", logger), nil
	}
}

// buildRegistry registers every gateway whose credentials are configured.
// Which of them donors can actually use is controlled separately by the
// enabled-methods feature flag.
func buildRegistry(cfg *config.Config, secretManager ports.SecretManager, logger *zap.Logger) *paymentService.Registry {
	fakeCfg := fakepay.DefaultConfig()
	fakeCfg.Synchronous = cfg.FakePaySync

	entries := []paymentService.RegistryEntry{{
		Method:  domain.PaymentMethodFake,
		Gateway: fakepay.NewGateway(fakeCfg, logger),
		Handler: fakepay.NewCallbackHandler(logger),
	}}

	if cfg.PayPalClientID != "" {
		paypalCfg := paypal.DefaultConfig(cfg.PayPalClientID, cfg.PayPalSecretPath)
		paypalCfg.BaseURL = cfg.PayPalBaseURL
		entries = append(entries, paymentService.RegistryEntry{
			Method:  domain.PaymentMethodPayPal,
			Gateway: paypal.NewGateway(paypalCfg, secretManager, logger),
			Handler: paypal.NewCallbackHandler(logger),
		})
	}

	if cfg.CardMerchantID != "" {
		entries = append(entries, paymentService.RegistryEntry{
			Method:  domain.PaymentMethodCreditCard,
			Gateway: card.NewGateway(card.DefaultConfig(cfg.CardMerchantID, cfg.CardMACPath), secretManager, logger),
			Handler: card.NewCallbackHandler(logger),
		})
	}

	enabled := make([]domain.PaymentMethod, 0, len(cfg.EnabledPaymentMethods))
	for _, m := range cfg.EnabledPaymentMethods {
		enabled = append(enabled, domain.PaymentMethod(m))
	}

	return paymentService.NewRegistry(enabled, entries...)
}
