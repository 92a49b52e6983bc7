package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-admin/internal/domain/loan"
	"loan-admin/internal/event"
	"loan-admin/internal/infrastructure/monitoring"
	"loan-admin/internal/pkg/apperrors"
	"loan-admin/internal/pkg/auth"

	"github.com/shopspring/decimal"
)

type RecordPaymentParams struct {
	LoanID          int64
	AmountPaid      decimal.Decimal
	PaymentMethod   Method
	PaymentDate     time.Time
	InterestApplied decimal.Decimal
	LateFee         decimal.Decimal
}

func (p RecordPaymentParams) validate() error {
	if p.LoanID <= 0 {
		return apperrors.NewValidationError("loanId", "must be a valid loan id")
	}
	if !p.AmountPaid.IsPositive() {
		return apperrors.NewValidationError("amountPaid", "must be greater than zero")
	}
	if !loan.WithinPlaces(p.AmountPaid, loan.MoneyPlaces) {
		return apperrors.NewValidationError("amountPaid", "must have at most 2 decimal places")
	}
	if !p.PaymentMethod.Valid() {
		return apperrors.NewValidationError("paymentMethod", fmt.Sprintf("unsupported payment method %q", p.PaymentMethod))
	}
	if p.LateFee.IsNegative() {
		return apperrors.NewValidationError("lateFee", "must not be negative")
	}
	if !loan.WithinPlaces(p.LateFee, loan.MoneyPlaces) {
		return apperrors.NewValidationError("lateFee", "must have at most 2 decimal places")
	}
	if p.InterestApplied.IsNegative() {
		return apperrors.NewValidationError("interestApplied", "must not be negative")
	}
	if !loan.WithinPlaces(p.InterestApplied, loan.MoneyPlaces) {
		return apperrors.NewValidationError("interestApplied", "must have at most 2 decimal places")
	}
	return nil
}

// CacheInvalidator drops derived data that a committed payment makes stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type PaymentService interface {
	RecordPayment(ctx context.Context, params RecordPaymentParams) (*Payment, error)

	ListPayments(ctx context.Context) ([]*Payment, error)

	ListPaymentsByLoan(ctx context.Context, loanID int64) ([]*Payment, error)
}

type paymentServiceImpl struct {
	repo      Repository
	loans     loan.Repository
	publisher event.EventPublisher
	dashboard CacheInvalidator
	logger    *slog.Logger
	now       func() time.Time
}

// NewPaymentService wires the payment service. dashboard may be nil.
func NewPaymentService(r Repository, loans loan.Repository, publisher event.EventPublisher, dashboard CacheInvalidator, logger *slog.Logger) PaymentService {
	return &paymentServiceImpl{
		repo:      r,
		loans:     loans,
		publisher: publisher,
		dashboard: dashboard,
		logger:    logger.With("component", "PaymentService"),
		now:       time.Now,
	}
}

// RecordPayment applies one payment to a loan. The loan row is locked for the
// duration of the transaction so concurrent payments on the same loan are
// applied one after another; the payment insert and the balance update
// commit or roll back together.
func (s *paymentServiceImpl) RecordPayment(ctx context.Context, params RecordPaymentParams) (recorded *Payment, err error) {
	logger := s.logger.With("loanID", params.LoanID, "amount", params.AmountPaid.String())
	logger.InfoContext(ctx, "Recording payment")

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		logger.WarnContext(ctx, "Rejected payment without authenticated admin")
		return nil, fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)
	}
	if err := params.validate(); err != nil {
		logger.WarnContext(ctx, "Invalid payment request", "error", err)
		monitoring.RecordPayment("failure_validation", params.AmountPaid)
		return nil, err
	}

	tx, err := s.loans.BeginTx(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		monitoring.RecordPayment("failure_internal", params.AmountPaid)
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			logger.ErrorContext(ctx, "Panic occurred during payment processing", "error", p)
			_ = s.loans.RollbackTx(ctx, tx)
			panic(p)
		}
		if err == nil {
			return
		}
		status := "failure_internal"
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			status = "failure_not_found"
		case errors.Is(err, apperrors.ErrLoanClosed):
			status = "failure_closed"
		case errors.Is(err, apperrors.ErrConcurrencyConflict):
			status = "failure_conflict"
		}
		monitoring.RecordPayment(status, params.AmountPaid)
		logger.ErrorContext(ctx, "Rolling back payment transaction", "error", err)
		_ = s.loans.RollbackTx(ctx, tx)
	}()

	current, err := s.loans.GetForUpdateInTx(ctx, tx, params.LoanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", loan.ErrNotFound, params.LoanID)
		}
		return nil, fmt.Errorf("could not lock loan %d: %w", params.LoanID, err)
	}

	if current.Status == loan.StatusClosed {
		return nil, fmt.Errorf("%w: loan %d no longer accepts payments", apperrors.ErrLoanClosed, params.LoanID)
	}

	amountPaid := params.AmountPaid.Round(2)
	lateFee := params.LateFee.Round(2)
	newBalance, newStatus := ApplyPayment(current.OutstandingBalance, amountPaid, lateFee, current.Status)

	paymentDate := params.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.now().UTC()
	}

	p := &Payment{
		LoanID:           params.LoanID,
		PaymentDate:      paymentDate,
		AmountPaid:       amountPaid,
		PaymentMethod:    params.PaymentMethod,
		RemainingBalance: newBalance,
		InterestApplied:  params.InterestApplied.Round(2),
		LateFee:          lateFee,
		RecordedBy:       principal.AdminID,
		CustomerID:       current.CustomerID,
		LoanAmount:       current.LoanAmount,
		LoanStatus:       newStatus,
	}

	if err = s.repo.CreateInTx(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("could not insert payment: %w", err)
	}
	if err = s.loans.UpdateBalanceInTx(ctx, tx, params.LoanID, newBalance, newStatus); err != nil {
		return nil, fmt.Errorf("could not update loan balance: %w", err)
	}
	if err = s.loans.CommitTx(ctx, tx); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
	monitoring.RecordPayment("success", p.AmountPaid)
	logger.InfoContext(ctx, "Payment recorded",
		"paymentID", p.ID,
		"remainingBalance", newBalance.StringFixed(2),
		"status", newStatus,
	)

	s.publishRecorded(ctx, p, principal.AdminID)
	if newStatus == loan.StatusClosed {
		monitoring.RecordLoanClosed()
		if pubErr := s.publisher.PublishLoanClosed(ctx, event.NewLoanClosedEvent(p.LoanID, current.CustomerID, p.ID)); pubErr != nil {
			logger.ErrorContext(ctx, "Loan closed, but FAILED to publish event", "error", pubErr)
		}
	}

	return p, nil
}

func (s *paymentServiceImpl) publishRecorded(ctx context.Context, p *Payment, adminID int64) {
	evt := event.NewPaymentRecordedEvent(event.PaymentRecordedParams{
		PaymentID:        p.ID,
		LoanID:           p.LoanID,
		AmountPaid:       p.AmountPaid,
		LateFee:          p.LateFee,
		PaymentMethod:    string(p.PaymentMethod),
		RemainingBalance: p.RemainingBalance,
		LoanStatus:       string(p.LoanStatus),
		RecordedBy:       adminID,
	})
	if err := s.publisher.PublishPaymentRecorded(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Payment recorded, but FAILED to publish event", "paymentID", p.ID, "error", err)
	}
}

func (s *paymentServiceImpl) ListPayments(ctx context.Context) ([]*Payment, error) {
	s.logger.InfoContext(ctx, "Listing payments")
	payments, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list payments", "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *paymentServiceImpl) ListPaymentsByLoan(ctx context.Context, loanID int64) ([]*Payment, error) {
	s.logger.InfoContext(ctx, "Listing payments for loan", "loanID", loanID)

	if _, err := s.loans.GetByID(ctx, loanID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: id %d", loan.ErrNotFound, loanID)
		}
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}

	payments, err := s.repo.ListByLoan(ctx, loanID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list payments for loan", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to list payments for loan %d: %w", loanID, err)
	}
	return payments, nil
}
