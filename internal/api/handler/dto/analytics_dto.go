package dto

import (
	"time"

	"loan-admin/internal/domain/analytics"
)

type DashboardResponse struct {
	TotalCustomers                int64     `json:"totalCustomers"`
	ActiveLoans                   int64     `json:"activeLoans"`
	ClosedLoans                   int64     `json:"closedLoans"`
	OverdueLoans                  int64     `json:"overdueLoans"`
	TotalAmountDisbursed          string    `json:"totalAmountDisbursed"`
	TotalRepaymentsReceived       string    `json:"totalRepaymentsReceived"`
	TotalOutstandingAmount        string    `json:"totalOutstandingAmount"`
	ExpectedTotalInterestEarnings string    `json:"expectedTotalInterestEarnings"`
	GeneratedAt                   time.Time `json:"generatedAt"`
}

func NewDashboardResponse(d *analytics.Dashboard) DashboardResponse {
	return DashboardResponse{
		TotalCustomers:                d.TotalCustomers,
		ActiveLoans:                   d.ActiveLoans,
		ClosedLoans:                   d.ClosedLoans,
		OverdueLoans:                  d.OverdueLoans,
		TotalAmountDisbursed:          money(d.TotalAmountDisbursed),
		TotalRepaymentsReceived:       money(d.TotalRepaymentsReceived),
		TotalOutstandingAmount:        money(d.TotalOutstandingAmount),
		ExpectedTotalInterestEarnings: money(d.ExpectedTotalInterestEarnings),
		GeneratedAt:                   d.GeneratedAt,
	}
}
