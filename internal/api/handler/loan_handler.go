package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"loan-admin/internal/api/handler/dto"
	"loan-admin/internal/domain/loan"
	"loan-admin/internal/pkg/apperrors"
)

type LoanHandler struct {
	service loan.LoanService
	logger  *slog.Logger
}

func NewLoanHandler(s loan.LoanService, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

// CreateLoan handles POST /loans
// @Summary Create a new loan
// @Description Creates a loan for an existing customer. EMI and total payable are computed from the
// @Description amount, annual rate, tenure and interest type and frozen onto the loan.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequest true "Loan creation request payload"
// @Success 201 {object} dto.LoanResponse "Loan successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload or validation error"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [post]
// @Security BearerAuth
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid create loan request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	params, err := req.Params()
	if err != nil {
		respondError(w, apperrors.NewValidationError("startDate", "must be a date in YYYY-MM-DD format"))
		return
	}

	created, err := h.service.CreateLoan(r.Context(), params)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to create loan", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(created))
}

// CalculateLoan handles POST /loans/preview
// @Summary Preview loan amortization
// @Description Computes EMI, total payable and total interest for the given terms without creating a loan.
// @Tags Loans
// @Accept json
// @Produce json
// @Param request body dto.CalculateLoanRequest true "Loan terms"
// @Success 200 {object} dto.AmortizationResponse "Amortization figures"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan terms"
// @Router /loans/preview [post]
// @Security BearerAuth
func (h *LoanHandler) CalculateLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CalculateLoanRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	a, err := loan.CalculateAmortization(req.LoanAmount, req.InterestRate, req.TenureMonths, loan.InterestType(req.InterestType))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewAmortizationResponse(a))
}

// ListLoans handles GET /loans
// @Summary List loans
// @Description Lists all loans newest first with the borrower's name and mobile number.
// @Tags Loans
// @Produce json
// @Success 200 {array} dto.LoanResponse "List of loans"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans [get]
// @Security BearerAuth
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list loans", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

// GetLoan handles GET /loans/{loanID}
// @Summary Retrieve loan details
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.LoanResponse "Loan details successfully retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid loan ID"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	l, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get loan", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(l))
}

// GetLoanSchedule handles GET /loans/{loanID}/schedule
// @Summary Projected repayment schedule
// @Description Lists the monthly installments of the loan. The last installment absorbs rounding.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {array} dto.InstallmentResponse "Repayment schedule"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/schedule [get]
// @Security BearerAuth
func (h *LoanHandler) GetLoanSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	schedule, err := h.service.GetLoanSchedule(r.Context(), loanID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to build loan schedule", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewScheduleResponse(schedule))
}

// UpdateLoanStatus handles PUT /loans/{loanID}/status
// @Summary Change loan status
// @Description Moves a loan between Active and Overdue. Loans close only through repayment.
// @Tags Loans
// @Accept json
// @Produce json
// @Param loanID path int true "Loan ID"
// @Param request body dto.UpdateLoanStatusRequest true "New status"
// @Success 200 {object} dto.LoanResponse "Loan updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 409 {object} dto.ErrorResponse "Loan is closed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID}/status [put]
// @Security BearerAuth
func (h *LoanHandler) UpdateLoanStatus(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.UpdateLoanStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.service.UpdateLoanStatus(r.Context(), loanID, loan.Status(req.Status))
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to update loan status",
			slog.Int64("loanID", loanID), slog.String("status", req.Status), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan status updated", slog.Int64("loanID", loanID), slog.String("status", req.Status))
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(updated))
}

// DeleteLoan handles DELETE /loans/{loanID}
// @Summary Delete a loan
// @Description Removes a loan and its payments. Intended for correcting data entry mistakes.
// @Tags Loans
// @Produce json
// @Param loanID path int true "Loan ID"
// @Success 200 {object} dto.MessageResponse "Loan deleted"
// @Failure 404 {object} dto.ErrorResponse "Loan not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /loans/{loanID} [delete]
// @Security BearerAuth
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := idFromURL(r, "loanID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeleteLoan(r.Context(), loanID); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to delete loan", slog.Int64("loanID", loanID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("Loan %d deleted", loanID)})
}
