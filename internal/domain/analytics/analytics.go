package analytics

import (
	"time"

	"loan-admin/internal/domain/loan"
	"loan-admin/internal/domain/payment"

	"github.com/shopspring/decimal"
)

// Dashboard is the flat portfolio record served by the dashboard endpoint.
type Dashboard struct {
	TotalCustomers                int64           `json:"totalCustomers"`
	ActiveLoans                   int64           `json:"activeLoans"`
	ClosedLoans                   int64           `json:"closedLoans"`
	OverdueLoans                  int64           `json:"overdueLoans"`
	TotalAmountDisbursed          decimal.Decimal `json:"totalAmountDisbursed"`
	TotalRepaymentsReceived       decimal.Decimal `json:"totalRepaymentsReceived"`
	TotalOutstandingAmount        decimal.Decimal `json:"totalOutstandingAmount"`
	ExpectedTotalInterestEarnings decimal.Decimal `json:"expectedTotalInterestEarnings"`
	GeneratedAt                   time.Time       `json:"generatedAt"`
}

// Aggregate folds every loan and payment into portfolio totals.
// ExpectedTotalInterestEarnings is the interest the portfolio would earn if
// every loan were repaid in full, not the interest collected so far.
func Aggregate(loans []*loan.Loan, payments []*payment.Payment) Dashboard {
	out := Dashboard{
		TotalAmountDisbursed:          decimal.Zero,
		TotalRepaymentsReceived:       decimal.Zero,
		TotalOutstandingAmount:        decimal.Zero,
		ExpectedTotalInterestEarnings: decimal.Zero,
	}

	for _, l := range loans {
		switch l.Status {
		case loan.StatusActive:
			out.ActiveLoans++
		case loan.StatusClosed:
			out.ClosedLoans++
		case loan.StatusOverdue:
			out.OverdueLoans++
		}
		out.TotalAmountDisbursed = out.TotalAmountDisbursed.Add(l.LoanAmount)
		out.TotalOutstandingAmount = out.TotalOutstandingAmount.Add(l.OutstandingBalance)
		out.ExpectedTotalInterestEarnings = out.ExpectedTotalInterestEarnings.Add(l.ExpectedInterest())
	}

	for _, p := range payments {
		out.TotalRepaymentsReceived = out.TotalRepaymentsReceived.Add(p.AmountPaid)
	}

	return out
}
