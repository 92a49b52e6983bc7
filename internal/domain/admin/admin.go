package admin

import (
	"context"
	"fmt"
	"time"

	"loan-admin/internal/pkg/apperrors"
)

var ErrNotFound = fmt.Errorf("admin %w", apperrors.ErrNotFound)

type Admin struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	// Create returns apperrors.ErrAlreadyExists when the email is taken.
	Create(ctx context.Context, admin *Admin) error

	FindByEmail(ctx context.Context, email string) (*Admin, error)
}
