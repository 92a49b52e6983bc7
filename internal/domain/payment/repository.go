package payment

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, payment *Payment) error

	// List returns all payments newest first with the loan summary.
	List(ctx context.Context) ([]*Payment, error)

	ListByLoan(ctx context.Context, loanID int64) ([]*Payment, error)
}
