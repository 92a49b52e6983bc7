package handler

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"loan-admin/internal/domain/loan"
	"loan-admin/internal/domain/payment"
)

var (
	loanReportHeader    = []string{"ID", "Customer Name", "Loan Amount", "Interest Rate", "Interest Type", "Outstanding Balance", "Status"}
	paymentReportHeader = []string{"Date", "Loan ID", "Amount Paid", "Method", "Remaining Balance"}
)

type ReportHandler struct {
	loans    loan.LoanService
	payments payment.PaymentService
	logger   *slog.Logger
}

func NewReportHandler(loans loan.LoanService, payments payment.PaymentService, l *slog.Logger) *ReportHandler {
	return &ReportHandler{
		loans:    loans,
		payments: payments,
		logger:   l.With("component", "ReportHandler"),
	}
}

// ExportLoans handles GET /reports/loans.csv
// @Summary Export loans as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/loans.csv [get]
// @Security BearerAuth
func (h *ReportHandler) ExportLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loans.ListLoans(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to load loans for export", slog.Any("error", err))
		respondError(w, err)
		return
	}

	rows := make([][]string, 0, len(loans))
	for _, l := range loans {
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			l.CustomerName,
			l.LoanAmount.StringFixed(2),
			l.InterestRate.String(),
			string(l.InterestType),
			l.OutstandingBalance.StringFixed(2),
			string(l.Status),
		})
	}

	h.writeCSV(w, r, "loan_report.csv", loanReportHeader, rows)
}

// ExportPayments handles GET /reports/payments.csv
// @Summary Export payments as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/payments.csv [get]
// @Security BearerAuth
func (h *ReportHandler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.ListPayments(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to load payments for export", slog.Any("error", err))
		respondError(w, err)
		return
	}

	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{
			p.PaymentDate.Format(time.DateOnly),
			strconv.FormatInt(p.LoanID, 10),
			p.AmountPaid.StringFixed(2),
			string(p.PaymentMethod),
			p.RemainingBalance.StringFixed(2),
		})
	}

	h.writeCSV(w, r, "payment_report.csv", paymentReportHeader, rows)
}

func (h *ReportHandler) writeCSV(w http.ResponseWriter, r *http.Request, fileName string, header []string, rows [][]string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write CSV header", slog.String("file", fileName), slog.Any("error", err))
		return
	}
	if err := cw.WriteAll(rows); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to write CSV rows", slog.String("file", fileName), slog.Any("error", err))
		return
	}
	h.logger.InfoContext(r.Context(), "CSV report exported", slog.String("file", fileName), slog.Int("rows", len(rows)))
}
