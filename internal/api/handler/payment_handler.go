package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"loan-admin/internal/api/handler/dto"
	"loan-admin/internal/domain/payment"
	"loan-admin/internal/pkg/apperrors"
)

type PaymentHandler struct {
	service payment.PaymentService
	logger  *slog.Logger
}

func NewPaymentHandler(s payment.PaymentService, l *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: s,
		logger:  l.With("component", "PaymentHandler"),
	}
}

// RecordPayment handles POST /payments
// @Summary Record a repayment
// @Description Records a payment against a loan and updates its outstanding balance. The loan is
// @Description closed when the balance reaches zero.
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid payment"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan closed or concurrent update, retry"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments [post]
// @Security BearerAuth
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid record payment request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	params, err := req.Params()
	if err != nil {
		respondError(w, apperrors.NewValidationError("paymentDate", "must be a date in YYYY-MM-DD format"))
		return
	}

	recorded, err := h.service.RecordPayment(r.Context(), params)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to record payment", slog.Int64("loanID", req.LoanID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Payment recorded", slog.Int64("paymentID", recorded.ID), slog.Int64("loanID", recorded.LoanID))
	respondJSON(w, http.StatusCreated, dto.NewPaymentResponse(recorded))
}

// ListPayments handles GET /payments
// @Summary List payments
// @Description Lists payments newest first with a summary of their loan. loanId narrows the list to one loan.
// @Tags Payments
// @Produce json
// @Param loanId query int false "Only payments of this loan"
// @Success 200 {array} dto.PaymentResponse "List of payments"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments [get]
// @Security BearerAuth
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	var (
		payments []*payment.Payment
		err      error
	)
	if raw := r.URL.Query().Get("loanId"); raw != "" {
		loanID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || loanID <= 0 {
			respondError(w, apperrors.NewValidationError("loanId", "must be a positive integer"))
			return
		}
		payments, err = h.service.ListPaymentsByLoan(r.Context(), loanID)
	} else {
		payments, err = h.service.ListPayments(r.Context())
	}
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list payments", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPaymentListResponse(payments))
}

// ListPaymentsByLoan handles GET /payments/loan/{loanID}
// @Summary List payments of a loan
// @Tags Payments
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {array} dto.PaymentResponse "Payments of the loan"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /payments/loan/{loanID} [get]
// @Security BearerAuth
func (h *PaymentHandler) ListPaymentsByLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	payments, err := h.service.ListPaymentsByLoan(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list loan payments", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewPaymentListResponse(payments))
}
