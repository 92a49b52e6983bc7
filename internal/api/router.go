package api

import (
	"log/slog"
	"net/http"
	"time"

	_ "loan-admin/docs"
	"loan-admin/internal/api/handler"
	mw "loan-admin/internal/api/middleware"
	"loan-admin/internal/config"
	"loan-admin/internal/domain/admin"
	"loan-admin/internal/domain/customer"
	"loan-admin/internal/domain/loan"
	"loan-admin/internal/domain/payment"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Dependencies are the services and shared middleware the HTTP layer is built from.
type Dependencies struct {
	AdminService    admin.AdminService
	CustomerService customer.CustomerService
	LoanService     loan.LoanService
	PaymentService  payment.PaymentService
	Dashboard       handler.DashboardProvider
	TokenValidator  mw.TokenValidator
	RateLimiter     *mw.RateLimiterMiddleware
}

func SetupRouter(deps Dependencies, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, deps.RateLimiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupSwaggerEndpoint(router, logger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		setupAuthRoutes(r, deps.AdminService, logger)

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg.Server.Auth, deps.TokenValidator, logger))
			setupCustomerRoutes(r, deps.CustomerService, logger)
			setupLoanRoutes(r, deps.LoanService, logger)
			setupPaymentRoutes(r, deps.PaymentService, logger)
			setupReportRoutes(r, deps, logger)
		})
	})

	return router
}

func setupMiddleware(router *chi.Mux, limiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	if limiter != nil {
		router.Use(limiter.Middleware)
	}
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

func setupAuthRoutes(r chi.Router, svc admin.AdminService, logger *slog.Logger) {
	h := handler.NewAuthHandler(svc, logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
}

func setupCustomerRoutes(r chi.Router, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)
		})
	})
}

func setupLoanRoutes(r chi.Router, svc loan.LoanService, logger *slog.Logger) {
	h := handler.NewLoanHandler(svc, logger)

	r.Route("/loans", func(r chi.Router) {
		r.Post("/", h.CreateLoan)
		r.Get("/", h.ListLoans)
		r.Post("/preview", h.CalculateLoan)
		r.Route("/{loanID}", func(r chi.Router) {
			r.Get("/", h.GetLoan)
			r.Delete("/", h.DeleteLoan)
			r.Get("/schedule", h.GetLoanSchedule)
			r.Put("/status", h.UpdateLoanStatus)
		})
	})
}

func setupPaymentRoutes(r chi.Router, svc payment.PaymentService, logger *slog.Logger) {
	h := handler.NewPaymentHandler(svc, logger)

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.RecordPayment)
		r.Get("/", h.ListPayments)
		r.Get("/loan/{loanID}", h.ListPaymentsByLoan)
	})
}

func setupReportRoutes(r chi.Router, deps Dependencies, logger *slog.Logger) {
	analyticsHandler := handler.NewAnalyticsHandler(deps.Dashboard, logger)
	reportHandler := handler.NewReportHandler(deps.LoanService, deps.PaymentService, logger)

	r.Get("/analytics/dashboard", analyticsHandler.GetDashboard)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/loans.csv", reportHandler.ExportLoans)
		r.Get("/payments.csv", reportHandler.ExportPayments)
	})
}
