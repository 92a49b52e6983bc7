package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-admin/internal/domain/customer"
	"loan-admin/internal/event"
	"loan-admin/internal/infrastructure/monitoring"
	"loan-admin/internal/pkg/apperrors"
	"loan-admin/internal/pkg/auth"

	"github.com/shopspring/decimal"
)

type CreateLoanParams struct {
	CustomerID   int64
	LoanAmount   decimal.Decimal
	InterestRate decimal.Decimal
	InterestType InterestType
	TenureMonths int
	StartDate    time.Time
}

type LoanService interface {
	CreateLoan(ctx context.Context, params CreateLoanParams) (*Loan, error)

	ListLoans(ctx context.Context) ([]*Loan, error)

	GetLoan(ctx context.Context, loanID int64) (*Loan, error)

	GetLoanSchedule(ctx context.Context, loanID int64) ([]Installment, error)

	UpdateLoanStatus(ctx context.Context, loanID int64, status Status) (*Loan, error)

	DeleteLoan(ctx context.Context, loanID int64) error
}

type CustomerFinder interface {
	GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error)
}

// CacheInvalidator drops derived data that a committed loan change makes stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type loanServiceImpl struct {
	repo      Repository
	customers CustomerFinder
	publisher event.EventPublisher
	dashboard CacheInvalidator
	logger    *slog.Logger
}

// NewLoanService wires the loan service. dashboard may be nil.
func NewLoanService(r Repository, customers CustomerFinder, publisher event.EventPublisher, dashboard CacheInvalidator, logger *slog.Logger) LoanService {
	return &loanServiceImpl{
		repo:      r,
		customers: customers,
		publisher: publisher,
		dashboard: dashboard,
		logger:    logger.With("component", "LoanService"),
	}
}

func (s *loanServiceImpl) invalidateDashboard(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, params CreateLoanParams) (*Loan, error) {
	s.logger.InfoContext(ctx, "Creating new loan", "customerID", params.CustomerID)

	if _, ok := auth.PrincipalFromContext(ctx); !ok {
		s.logger.WarnContext(ctx, "Rejected loan creation without authenticated admin")
		return nil, fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)
	}

	loan, err := NewLoan(params.CustomerID, params.LoanAmount, params.InterestRate, params.InterestType, params.TenureMonths, params.StartDate)
	if err != nil {
		s.logger.WarnContext(ctx, "Invalid loan terms", "error", err)
		return nil, err
	}

	cust, err := s.customers.GetCustomer(ctx, params.CustomerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found", "customerID", params.CustomerID)
			return nil, fmt.Errorf("%w: customer %d", customer.ErrNotFound, params.CustomerID)
		}
		s.logger.ErrorContext(ctx, "Failed to verify customer", "error", err)
		return nil, fmt.Errorf("failed to verify customer: %w", err)
	}

	if err := s.repo.Create(ctx, loan); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save loan", "error", err)
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}
	loan.CustomerName = cust.FullName
	loan.CustomerMobile = cust.MobileNumber
	loan.CustomerAddress = cust.Address

	s.invalidateDashboard(ctx)
	monitoring.RecordLoanCreated()
	s.logger.InfoContext(ctx, "Loan created successfully",
		"loanID", loan.ID,
		"customerID", loan.CustomerID,
		"emi", loan.EMIAmount.StringFixed(2),
		"totalPayable", loan.TotalPayableAmount.StringFixed(2),
	)

	evt := event.NewLoanCreatedEvent(loan.ID, loan.CustomerID, loan.LoanAmount, string(loan.InterestType),
		loan.TenureMonths, loan.EMIAmount, loan.TotalPayableAmount)
	if pubErr := s.publisher.PublishLoanCreated(ctx, evt); pubErr != nil {
		s.logger.ErrorContext(ctx, "Loan created, but FAILED to publish creation event", "loanID", loan.ID, "error", pubErr)
	}

	return loan, nil
}

func (s *loanServiceImpl) ListLoans(ctx context.Context) ([]*Loan, error) {
	s.logger.InfoContext(ctx, "Listing loans")
	loans, err := s.repo.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list loans", "error", err)
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	return loans, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID int64) (*Loan, error) {
	s.logger.InfoContext(ctx, "Getting loan details", "loanID", loanID)
	loan, err := s.repo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("failed to get loan %d: %w", loanID, err)
	}
	return loan, nil
}

func (s *loanServiceImpl) GetLoanSchedule(ctx context.Context, loanID int64) ([]Installment, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	schedule, err := loan.Schedule()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build loan schedule", "loanID", loanID, "error", err)
		return nil, err
	}
	return schedule, nil
}

func (s *loanServiceImpl) UpdateLoanStatus(ctx context.Context, loanID int64, status Status) (updated *Loan, err error) {
	s.logger.InfoContext(ctx, "Updating loan status", "loanID", loanID, "status", status)

	if _, ok := auth.PrincipalFromContext(ctx); !ok {
		s.logger.WarnContext(ctx, "Rejected status change without authenticated admin")
		return nil, fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf("unknown loan status %q", status))
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	loan, err := s.repo.GetForUpdateInTx(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, loanID)
		}
		return nil, fmt.Errorf("could not lock loan %d: %w", loanID, err)
	}

	if err = loan.CanTransitionTo(status); err != nil {
		s.logger.WarnContext(ctx, "Rejected loan status change", "loanID", loanID, "from", loan.Status, "to", status, "error", err)
		return nil, err
	}

	old := loan.Status
	if old == status {
		err = s.repo.CommitTx(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("could not commit transaction: %w", err)
		}
		return loan, nil
	}

	if err = s.repo.UpdateStatusInTx(ctx, tx, loanID, status); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update loan status", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("could not update loan status: %w", err)
	}
	if err = s.repo.CommitTx(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "loanID", loanID, "error", err)
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}
	loan.Status = status
	s.invalidateDashboard(ctx)

	s.logger.InfoContext(ctx, "Loan status updated", "loanID", loanID, "from", old, "to", status)
	if pubErr := s.publisher.PublishLoanStatusChanged(ctx, event.NewLoanStatusChangedEvent(loanID, string(old), string(status))); pubErr != nil {
		s.logger.ErrorContext(ctx, "Status updated, but FAILED to publish event", "loanID", loanID, "error", pubErr)
	}
	return loan, nil
}

func (s *loanServiceImpl) DeleteLoan(ctx context.Context, loanID int64) (err error) {
	s.logger.InfoContext(ctx, "Deleting loan", "loanID", loanID)

	if _, ok := auth.PrincipalFromContext(ctx); !ok {
		s.logger.WarnContext(ctx, "Rejected loan deletion without authenticated admin")
		return fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	if _, err = s.repo.GetForUpdateInTx(ctx, tx, loanID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", "loanID", loanID)
			return fmt.Errorf("%w: id %d", ErrNotFound, loanID)
		}
		return fmt.Errorf("could not lock loan %d: %w", loanID, err)
	}

	if err = s.repo.DeleteInTx(ctx, tx, loanID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete loan", "loanID", loanID, "error", err)
		return fmt.Errorf("could not delete loan: %w", err)
	}
	if err = s.repo.CommitTx(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "loanID", loanID, "error", err)
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	s.invalidateDashboard(ctx)

	s.logger.InfoContext(ctx, "Loan deleted", "loanID", loanID)
	return nil
}
