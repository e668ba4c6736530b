package api

import (
	"log/slog"
	"net/http"
	"time"

	"library-lending/internal/api/handler"
	mw "library-lending/internal/api/middleware"
	"library-lending/internal/config"
	"library-lending/internal/domain/lending"

	_ "library-lending/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func SetupRouter(ledger lending.Ledger, history lending.History, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupTransactionRoutes(router, ledger, history, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupTransactionRoutes(router *chi.Mux, ledger lending.Ledger, history lending.History, cfg *config.Config, logger *slog.Logger) {
	transactionHandler := handler.NewTransactionHandler(ledger, history, logger)
	authHandler := handler.NewAuthHandler(*cfg, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})

	router.Route("/transactions", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", transactionHandler.CreateTransaction)
		r.Post("/borrowBook/{customerId}/{bookId}", transactionHandler.BorrowBook)
		r.Post("/borrowBook/{customerId}/{bookId}/backdated", transactionHandler.BorrowBookBackdated)
		r.Post("/returnBook/{bookId}", transactionHandler.ReturnBook)
		r.Post("/returnBook/{bookId}/withDate", transactionHandler.ReturnBookWithDate)
		r.Get("/history/{customerId}", transactionHandler.GetHistory)
		r.Get("/{transactionId}", transactionHandler.GetTransaction)
	})
}
