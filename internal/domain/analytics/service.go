package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-admin/internal/domain/loan"
	"loan-admin/internal/domain/payment"
	"loan-admin/internal/infrastructure/monitoring"
)

var ErrCacheMiss = errors.New("dashboard cache miss")

type LoanLister interface {
	List(ctx context.Context) ([]*loan.Loan, error)
}

type PaymentLister interface {
	List(ctx context.Context) ([]*payment.Payment, error)
}

type CustomerCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Cache stores the latest dashboard. Get returns ErrCacheMiss when empty.
type Cache interface {
	Get(ctx context.Context) (*Dashboard, error)
	Set(ctx context.Context, d *Dashboard, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type Service struct {
	loans     LoanLister
	payments  PaymentLister
	customers CustomerCounter
	cache     Cache
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds the dashboard service. cache may be nil, in which case
// every request is computed from the database.
func NewService(loans LoanLister, payments PaymentLister, customers CustomerCounter, cache Cache, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		loans:     loans,
		payments:  payments,
		customers: customers,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.With("component", "AnalyticsService"),
		now:       time.Now,
	}
}

func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		switch {
		case err == nil:
			s.logger.DebugContext(ctx, "Dashboard served from cache", "generatedAt", cached.GeneratedAt)
			return cached, nil
		case errors.Is(err, ErrCacheMiss):
			s.logger.DebugContext(ctx, "Dashboard cache miss")
		default:
			s.logger.WarnContext(ctx, "Dashboard cache read failed, computing from database", "error", err)
		}
	}
	return s.Refresh(ctx)
}

// Invalidate drops the cached dashboard so the next read reflects committed
// writes. A failed delete is logged; the entry still expires after its TTL.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate dashboard cache", "error", err)
		return
	}
	s.logger.DebugContext(ctx, "Dashboard cache invalidated")
}

// Refresh recomputes the dashboard, overwrites the cache and updates the
// portfolio gauges.
func (s *Service) Refresh(ctx context.Context) (*Dashboard, error) {
	start := s.now()

	customers, err := s.customers.Count(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to count customers", "error", err)
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	loans, err := s.loans.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load loans", "error", err)
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}
	payments, err := s.payments.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load payments", "error", err)
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	d := Aggregate(loans, payments)
	d.TotalCustomers = customers
	d.GeneratedAt = s.now().UTC()

	if s.cache != nil {
		if err := s.cache.Set(ctx, &d, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "Failed to cache dashboard", "error", err)
		}
	}

	monitoring.SetPortfolio(monitoring.PortfolioSnapshot{
		TotalCustomers:     d.TotalCustomers,
		ActiveLoans:        d.ActiveLoans,
		OverdueLoans:       d.OverdueLoans,
		Disbursed:          d.TotalAmountDisbursed,
		RepaymentsReceived: d.TotalRepaymentsReceived,
		Outstanding:        d.TotalOutstandingAmount,
		TakenAt:            d.GeneratedAt,
	})

	s.logger.InfoContext(ctx, "Dashboard computed",
		"loans", len(loans),
		"payments", len(payments),
		"duration", s.now().Sub(start),
	)
	return &d, nil
}
