package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"loan-admin/internal/pkg/apperrors"
	"loan-admin/internal/pkg/auth"
)

const (
	inputValidationPassed = "Input validation passed"
	customerNotFound      = "Customer not found by repository"
)

type CreateParams struct {
	FullName         string
	MobileNumber     string
	Address          string
	IDProofReference string
	Notes            string
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, params CreateParams) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context, keyword string) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, fields UpdateFields) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
}

// CacheInvalidator drops derived data that depends on the customer count.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo      CustomerRepository
	dashboard CacheInvalidator
	logger    *slog.Logger
}

// NewCustomerService wires the customer service. dashboard may be nil.
func NewCustomerService(repo CustomerRepository, dashboard CacheInvalidator, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}
	return &customerService{
		repo:      repo,
		dashboard: dashboard,
		logger:    logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) invalidateDashboard(ctx context.Context) {
	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx)
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, params CreateParams) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		s.logger.WarnContext(ctx, "Rejected customer creation without authenticated admin")
		return nil, fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)
	}

	c := NewCustomer(params.FullName, params.MobileNumber, params.Address, params.IDProofReference, params.Notes)
	if err := validateRequired(c); err != nil {
		s.logger.WarnContext(ctx, "Validation failed for new customer", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, inputValidationPassed, slog.Int64("adminID", principal.AdminID))

	if err := s.repo.Save(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	s.invalidateDashboard(ctx)
	s.logger.InfoContext(ctx, "Successfully created new customer", slog.Int64("customerID", c.ID))
	return c, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to get customer by ID")

	c, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logger.DebugContext(ctx, "Successfully retrieved customer")
	return c, nil
}

func (s *customerService) ListCustomers(ctx context.Context, keyword string) ([]*Customer, error) {
	keyword = strings.TrimSpace(keyword)
	s.logger.InfoContext(ctx, "Listing customers", slog.String("keyword", keyword))

	customers, err := s.repo.FindAll(ctx, keyword)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, fields UpdateFields) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to update customer")

	if _, ok := auth.PrincipalFromContext(ctx); !ok {
		logger.WarnContext(ctx, "Rejected customer update without authenticated admin")
		return nil, fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)
	}

	c, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if !c.Apply(fields) {
		logger.InfoContext(ctx, "No customer change needed, skipping save")
		return c, nil
	}

	if err := s.repo.Save(ctx, c); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.ErrorContext(ctx, "Customer disappeared before save completed")
			return nil, ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save customer %d: %w", customerID, err)
	}

	logger.InfoContext(ctx, "Successfully updated customer")
	return c, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to delete customer")

	if _, ok := auth.PrincipalFromContext(ctx); !ok {
		logger.WarnContext(ctx, "Rejected customer deletion without authenticated admin")
		return fmt.Errorf("%w: authentication required", apperrors.ErrUnauthorized)
	}

	if _, err := s.GetCustomer(ctx, customerID); err != nil {
		return err
	}

	loans, err := s.repo.CountLoans(ctx, customerID)
	if err != nil {
		logger.ErrorContext(ctx, "Repository error counting customer loans", slog.Any("error", err))
		return fmt.Errorf("failed to check loans of customer %d: %w", customerID, err)
	}
	if loans > 0 {
		logger.WarnContext(ctx, "Business rule failed: customer still has loans", slog.Int64("loans", loans))
		return ErrHasLoans
	}

	if err := s.repo.Delete(ctx, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return ErrNotFound
		}
		logger.ErrorContext(ctx, "Repository error deleting customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}

	s.invalidateDashboard(ctx)
	logger.InfoContext(ctx, "Successfully deleted customer")
	return nil
}

func validateRequired(c *Customer) error {
	switch {
	case c.FullName == "":
		return apperrors.NewValidationError("fullName", "is required")
	case c.MobileNumber == "":
		return apperrors.NewValidationError("mobileNumber", "is required")
	case c.Address == "":
		return apperrors.NewValidationError("address", "is required")
	}
	return nil
}
