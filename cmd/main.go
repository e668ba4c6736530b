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

	_ "library-lending/docs"
	"library-lending/internal/api"
	"library-lending/internal/batch"
	"library-lending/internal/config"
	"library-lending/internal/domain/lending"
	"library-lending/internal/event"
	"library-lending/internal/infrastructure/cache"
	"library-lending/internal/infrastructure/database/postgres"
	"library-lending/internal/infrastructure/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Library Lending API
// @version 1.0
// @description This is the API documentation for the library lending service.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	publisher, amqpConn := initializePublisher(cfg, logger)
	if amqpConn != nil {
		defer amqpConn.Close()
	}

	store := postgres.NewLendingStore(dbPool, logger)
	gate := lending.NewAvailabilityGate(store, logger)
	ledger := lending.NewLedgerService(store, gate, publisher, logger, cfg.Lending.OperationTimeout)
	history := lending.NewHistoryService(store, initializeCache(cfg, logger), logger)

	auditJob := batch.NewConsistencyAuditJob(store, logger)

	cronScheduler := startBatchJobs(cfg, logger, auditJob)
	router := api.SetupRouter(ledger, history, cfg, logger)

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

	if err := postgres.RunMigrations(cfg.Database.URL, logger); err != nil {
		logger.Error("Failed to apply database migrations", "error", err)
		dbPool.Close()
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.Publisher, *amqp.Connection) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ disabled, lending events will not be published.")
		return event.NoopPublisher{}, nil
	}

	url := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		cfg.RabbitMQ.Username, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	conn, err := amqp.Dial(url)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ, continuing without event publishing", "error", err)
		return event.NoopPublisher{}, nil
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to initialize RabbitMQ publisher, continuing without event publishing", "error", err)
		conn.Close()
		return event.NoopPublisher{}, nil
	}
	return publisher, conn
}

func initializeCache(cfg *config.Config, logger *slog.Logger) lending.TransactionCache {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled, transaction lookups go straight to the database.")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Failed to ping Redis, continuing without cache", "error", err)
		return nil
	}

	logger.Info("Connected to Redis.", "addr", cfg.Redis.Addr)
	return cache.NewRedisTransactionCache(client, cfg.Redis.TTL, logger)
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
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
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
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server graceful shutdown failed", "error", err)
		} else {
			logger.Info("HTTP server shutdown initiated.")
		}
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}
	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, auditJob *batch.ConsistencyAuditJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	if !cfg.Audit.Enabled {
		logger.Info("Consistency audit job disabled.")
		c.Start()
		return c
	}

	scheduleSpec := cfg.Audit.Schedule
	if scheduleSpec == "" {
		scheduleSpec = "0 2 * * *"
		logger.Warn("Audit schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Audit.Timeout
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "ConsistencyAudit")
		jobLogger.Info("Cron triggered: Running availability consistency audit.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := auditJob.Run(ctx); runErr != nil {
			jobLogger.Error("Consistency audit finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Consistency audit finished successfully.")
		}
	}))

	if err != nil {
		logger.Error("Failed to schedule consistency audit job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled consistency audit job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
