package customer

import (
	"context"
	"fmt"

	"loan-admin/internal/pkg/apperrors"
)

var (
	ErrNotFound = fmt.Errorf("customer %w", apperrors.ErrNotFound)

	ErrHasLoans = fmt.Errorf("%w: customer still has loans", apperrors.ErrConflict)
)

type CustomerRepository interface {
	// Save inserts the customer when ID is zero and updates it otherwise.
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	// FindAll returns customers newest first. A non-empty keyword filters by a
	// case-insensitive substring match on full name or mobile number.
	FindAll(ctx context.Context, keyword string) ([]*Customer, error)

	Delete(ctx context.Context, customerID int64) error

	CountLoans(ctx context.Context, customerID int64) (int64, error)

	Count(ctx context.Context) (int64, error)
}
