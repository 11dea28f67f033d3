package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"

	"github.com/witalo/prestoras/internal/application"
	"github.com/witalo/prestoras/internal/application/usecase"
	"github.com/witalo/prestoras/internal/domain/port"
	"github.com/witalo/prestoras/internal/domain/service"
	"github.com/witalo/prestoras/internal/infrastructure/config"
	"github.com/witalo/prestoras/internal/infrastructure/messaging"
	pgRepo "github.com/witalo/prestoras/internal/infrastructure/persistence/postgres"
	"github.com/witalo/prestoras/internal/presentation/rest"
	pkgkafka "github.com/witalo/prestoras/pkg/kafka"
	"github.com/witalo/prestoras/pkg/observability"
	pkgpostgres "github.com/witalo/prestoras/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()
	cfg.Validate()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Service: cfg.ServiceName,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	logger.Info("starting prestoras-ledger", "http_port", cfg.HTTPPort)

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	if migErr := pkgpostgres.RunMigrations(dbCfg.DSN(), cfg.MigrationsDir); migErr != nil {
		logger.Error("failed to run migrations", "error", migErr)
		os.Exit(1)
	}

	// Wire infrastructure adapters.
	loanRepo := pgRepo.NewLoanRepo(pool)
	paymentRepo := pgRepo.NewPaymentRepo(pool)
	clientRepo := pgRepo.NewClientRepo(pool)
	loanTypeRepo := pgRepo.NewLoanTypeRepo(pool)
	adjustmentRepo := pgRepo.NewPenaltyAdjustmentRepo(pool)

	kafkaProducer := pkgkafka.NewProducer(pkgkafka.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer kafkaProducer.Close()

	var publisher port.EventPublisher
	if cfg.Kafka.PublishMode == "direct" {
		publisher = messaging.NewKafkaEventPublisher(kafkaProducer, logger)
	} else {
		outboxRepo := pgRepo.NewOutboxRepo(pool)
		publisher = messaging.NewOutboxPublisher(outboxRepo)
		relay := messaging.NewOutboxRelay(
			outboxRepo, kafkaProducer,
			time.Duration(cfg.Kafka.RelayInterval)*time.Second, logger,
		)
		go relay.Run(ctx)
		logger.Info("outbox relay started", "interval_seconds", cfg.Kafka.RelayInterval)
	}

	// Wire use cases behind the ledger facade.
	ledger := application.NewLedger(
		usecase.NewCreateLoanUseCase(loanRepo, loanTypeRepo, clientRepo, publisher),
		usecase.NewRecordPaymentUseCase(loanRepo, paymentRepo, publisher),
		usecase.NewAnnotatePaymentUseCase(paymentRepo, loanRepo),
		usecase.NewAdjustPenaltyUseCase(loanRepo, publisher),
		usecase.NewListPenaltyAdjustmentsUseCase(loanRepo, adjustmentRepo),
		usecase.NewRefinanceLoanUseCase(loanRepo, loanTypeRepo, publisher),
		usecase.NewReclassifyClientUseCase(clientRepo, loanRepo, service.NewClassifier(), publisher),
		usecase.NewGetLoanUseCase(loanRepo),
		usecase.NewPenaltySweepUseCase(loanRepo, publisher, logger),
		logger,
	)

	// Nightly penalty sweep.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.SweepSchedule, func() {
		sweepCtx, sweepCancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer sweepCancel()

		if _, sweepErr := ledger.RunPenaltySweep(sweepCtx); sweepErr != nil {
			logger.Error("penalty sweep failed", "error", sweepErr)
		}
	})
	if err != nil {
		logger.Error("invalid sweep schedule", "schedule", cfg.SweepSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("penalty sweep scheduled", "schedule", cfg.SweepSchedule)

	// HTTP server.
	router := mux.NewRouter()
	rest.NewLedgerHandler(ledger, logger).RegisterRoutes(router)
	rest.NewHealthHandler(pool, cfg.ServiceName).RegisterRoutes(router)
	router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("prestoras-ledger stopped")
}
