package loan

import (
	"context"
	"fmt"

	"loan-admin/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrNotFound = fmt.Errorf("loan %w", apperrors.ErrNotFound)

type Repository interface {
	Create(ctx context.Context, loan *Loan) error

	// GetByID returns the loan joined with its customer's contact details.
	GetByID(ctx context.Context, loanID int64) (*Loan, error)

	// List returns all loans newest first, joined with customer name and mobile.
	List(ctx context.Context) ([]*Loan, error)

	// GetForUpdateInTx locks the loan row until tx ends.
	GetForUpdateInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error)

	UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, loanID int64, balance decimal.Decimal, status Status) error

	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status Status) error

	// DeleteInTx removes the loan together with its payments.
	DeleteInTx(ctx context.Context, tx pgx.Tx, loanID int64) error

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
