package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-admin/internal/api"
	mw "loan-admin/internal/api/middleware"
	"loan-admin/internal/batch"
	"loan-admin/internal/config"
	"loan-admin/internal/domain/admin"
	"loan-admin/internal/domain/analytics"
	"loan-admin/internal/domain/customer"
	"loan-admin/internal/domain/loan"
	"loan-admin/internal/domain/payment"
	"loan-admin/internal/event"
	"loan-admin/internal/infrastructure/cache"
	"loan-admin/internal/infrastructure/database/postgres"
	"loan-admin/internal/infrastructure/logging"
	"loan-admin/internal/pkg/auth"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Loan Admin API
// @version 1.0
// @description Back-office API for managing borrowers, loans, repayments and portfolio reports.

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	redisClient := cache.NewRedisClient(context.Background(), cfg.Redis, logger)
	defer closeRedis(redisClient, logger)

	publisher, amqpConn := initializePublisher(cfg, logger)
	defer closeRabbitMQ(amqpConn, logger)

	issuer := initializeTokenIssuer(cfg, logger)
	services := initializeServices(dbPool, redisClient, publisher, issuer, cfg, logger)

	snapshotJob := batch.NewDashboardSnapshotJob(services.dashboard, logger)
	cronScheduler := startBatchJobs(cfg, logger, snapshotJob)

	limiter := mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, rateLimitStore(redisClient), logger)
	defer limiter.Stop()

	router := api.SetupRouter(api.Dependencies{
		AdminService:    services.admins,
		CustomerService: services.customers,
		LoanService:     services.loans,
		PaymentService:  services.payments,
		Dashboard:       services.dashboard,
		TokenValidator:  issuer,
		RateLimiter:     limiter,
	}, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func closeRedis(client *redis.Client, logger *slog.Logger) {
	if client == nil {
		return
	}
	logger.Info("Closing Redis client...")
	if err := client.Close(); err != nil {
		logger.Warn("Failed to close Redis client", "error", err)
	}
}

// rateLimitStore keeps a nil *redis.Client from becoming a non-nil interface.
func rateLimitStore(client *redis.Client) redis.Cmdable {
	if client == nil {
		return nil
	}
	return client
}

// initializePublisher connects to RabbitMQ when configured and falls back to
// logging events otherwise.
func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.EventPublisher, *amqp.Connection) {
	if cfg.RabbitMQ.URL == "" {
		logger.Warn("RabbitMQ URL not configured, domain events will only be logged")
		return event.NewLogEventPublisher(logger), nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Warn("Failed to connect to RabbitMQ, domain events will only be logged", "error", err)
		return event.NewLogEventPublisher(logger), nil
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Warn("Failed to set up RabbitMQ publisher, domain events will only be logged", "error", err)
		_ = conn.Close()
		return event.NewLogEventPublisher(logger), nil
	}

	logger.Info("RabbitMQ event publisher ready", "exchange", cfg.RabbitMQ.ExchangeName)
	return publisher, conn
}

func closeRabbitMQ(conn *amqp.Connection, logger *slog.Logger) {
	if conn == nil {
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		logger.Warn("Failed to close RabbitMQ connection", "error", err)
	}
}

// initializeTokenIssuer signs admin tokens. Without a configured secret (only
// allowed while auth is disabled) tokens are signed with a per-process key and
// stop validating after a restart.
func initializeTokenIssuer(cfg *config.Config, logger *slog.Logger) *auth.TokenIssuer {
	secret := cfg.Server.Auth.JWTSecret
	if secret == "" {
		logger.Warn("JWT secret not configured, using an ephemeral signing key")
		secret = uuid.NewString()
	}

	issuer, err := auth.NewTokenIssuer(secret, cfg.Server.Auth.TokenTTL)
	if err != nil {
		logger.Error("Failed to initialize token issuer", "error", err)
		os.Exit(1)
	}
	return issuer
}

type appServices struct {
	admins    admin.AdminService
	customers customer.CustomerService
	loans     loan.LoanService
	payments  payment.PaymentService
	dashboard *analytics.Service
}

func initializeServices(
	dbPool *pgxpool.Pool,
	redisClient *redis.Client,
	publisher event.EventPublisher,
	issuer *auth.TokenIssuer,
	cfg *config.Config,
	logger *slog.Logger,
) appServices {
	logger.Info("Initializing application components...")

	adminRepo := postgres.NewAdminRepository(dbPool, logger)
	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	loanRepo := postgres.NewLoanRepository(dbPool, logger)
	paymentRepo := postgres.NewPaymentRepository(dbPool, logger)

	var dashboardCache analytics.Cache
	if redisClient != nil {
		dashboardCache = cache.NewDashboardCache(redisClient, logger)
	}
	dashboard := analytics.NewService(loanRepo, paymentRepo, customerRepo, dashboardCache, cfg.Cache.DashboardTTL, logger)

	customerService := customer.NewCustomerService(customerRepo, dashboard, logger)

	return appServices{
		admins:    admin.NewAdminService(adminRepo, issuer, logger),
		customers: customerService,
		loans:     loan.NewLoanService(loanRepo, customerService, publisher, dashboard, logger),
		payments:  payment.NewPaymentService(paymentRepo, loanRepo, publisher, dashboard, logger),
		dashboard: dashboard,
	}
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil {
			logger.Error("Server exited unexpectedly before signal", "error", err)
		}
		triggerReason = "server exited"
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	if triggerReason != "server exited" {
		select {
		case err := <-serverErrors:
			if err != nil {
				logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
			} else {
				logger.Info("Server goroutine confirmed exit.")
			}
		case <-time.After(5 * time.Second):
			logger.Warn("Timed out waiting for server goroutine confirmation.")
		}
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, snapshotJob *batch.DashboardSnapshotJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.DashboardSnapshotSchedule
	if scheduleSpec == "" {
		scheduleSpec = "*/5 * * * *"
		logger.Warn("Dashboard snapshot schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.DashboardSnapshotTimeout
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "DashboardSnapshot")
		jobLogger.Info("Cron triggered: Running dashboard snapshot job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := snapshotJob.Run(ctx); runErr != nil {
			jobLogger.Error("Dashboard snapshot job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule dashboard snapshot job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled dashboard snapshot job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
