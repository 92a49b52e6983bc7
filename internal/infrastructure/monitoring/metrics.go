package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	LoansCreatedTotal    prometheus.Counter
	LoansClosedTotal     prometheus.Counter
	PaymentsTotal        *prometheus.CounterVec
	PaymentAmountTotal   prometheus.Counter
	EventsPublishedTotal *prometheus.CounterVec
}

// PortfolioMetrics mirror the latest dashboard snapshot.
type PortfolioMetrics struct {
	ActiveLoans        prometheus.Gauge
	OverdueLoans       prometheus.Gauge
	TotalCustomers     prometheus.Gauge
	OutstandingAmount  prometheus.Gauge
	DisbursedAmount    prometheus.Gauge
	RepaymentsReceived prometheus.Gauge
	LastSnapshot       prometheus.Gauge
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loan_admin_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		LoansCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loan_admin_loans_created_total",
			Help: "Total number of loans created.",
		}),
		LoansClosedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loan_admin_loans_closed_total",
			Help: "Total number of loans closed by a repayment.",
		}),
		PaymentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_admin_payments_total",
			Help: "Total number of payment attempts by outcome.",
		}, []string{"status"}),
		PaymentAmountTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loan_admin_payment_amount_total",
			Help: "Sum of successfully recorded payment amounts.",
		}),
		EventsPublishedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "loan_admin_events_published_total",
			Help: "Total number of domain events published by type and outcome.",
		}, []string{"event_type", "status"}),
	}

	Portfolio = PortfolioMetrics{
		ActiveLoans: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loan_admin_portfolio_active_loans",
			Help: "Number of loans currently Active.",
		}),
		OverdueLoans: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loan_admin_portfolio_overdue_loans",
			Help: "Number of loans currently Overdue.",
		}),
		TotalCustomers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loan_admin_portfolio_customers",
			Help: "Number of registered customers.",
		}),
		OutstandingAmount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loan_admin_portfolio_outstanding_amount",
			Help: "Sum of remaining balances across all loans.",
		}),
		DisbursedAmount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loan_admin_portfolio_disbursed_amount",
			Help: "Sum of principal across all loans.",
		}),
		RepaymentsReceived: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loan_admin_portfolio_repayments_received",
			Help: "Sum of all recorded payments.",
		}),
		LastSnapshot: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "loan_admin_portfolio_last_snapshot_timestamp_seconds",
			Help: "Unix time of the last successful dashboard snapshot.",
		}),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordLoanCreated() {
	Business.LoansCreatedTotal.Inc()
}

func RecordLoanClosed() {
	Business.LoansClosedTotal.Inc()
}

func RecordPayment(status string, amount decimal.Decimal) {
	Business.PaymentsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		Business.PaymentAmountTotal.Add(amount.InexactFloat64())
	}
}

func RecordEventPublished(eventType, status string) {
	Business.EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}

// PortfolioSnapshot is the subset of dashboard figures exported as gauges.
type PortfolioSnapshot struct {
	TotalCustomers     int64
	ActiveLoans        int64
	OverdueLoans       int64
	Disbursed          decimal.Decimal
	RepaymentsReceived decimal.Decimal
	Outstanding        decimal.Decimal
	TakenAt            time.Time
}

func SetPortfolio(s PortfolioSnapshot) {
	Portfolio.TotalCustomers.Set(float64(s.TotalCustomers))
	Portfolio.ActiveLoans.Set(float64(s.ActiveLoans))
	Portfolio.OverdueLoans.Set(float64(s.OverdueLoans))
	Portfolio.DisbursedAmount.Set(s.Disbursed.InexactFloat64())
	Portfolio.RepaymentsReceived.Set(s.RepaymentsReceived.InexactFloat64())
	Portfolio.OutstandingAmount.Set(s.Outstanding.InexactFloat64())
	Portfolio.LastSnapshot.Set(float64(s.TakenAt.Unix()))
}
