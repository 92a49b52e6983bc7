package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-admin/internal/domain/loan"
	"loan-admin/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const loanColumns = `
        l.id, l.customer_id, c.full_name, c.mobile_number, c.address,
        l.loan_amount, l.interest_rate, l.interest_type, l.start_date, l.tenure_months,
        l.emi_amount, l.total_payable_amount, l.outstanding_balance, l.status,
        l.created_at, l.updated_at`

type LoanRepository struct {
	txRunner
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	logger = logger.With("component", "LoanRepository")
	return &LoanRepository{
		txRunner: txRunner{db: db, logger: logger},
		db:       db,
		logger:   logger,
	}
}

func scanLoan(row pgx.Row, l *loan.Loan) error {
	return row.Scan(
		&l.ID, &l.CustomerID, &l.CustomerName, &l.CustomerMobile, &l.CustomerAddress,
		&l.LoanAmount, &l.InterestRate, &l.InterestType, &l.StartDate, &l.TenureMonths,
		&l.EMIAmount, &l.TotalPayableAmount, &l.OutstandingBalance, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
}

func (r *LoanRepository) Create(ctx context.Context, newLoan *loan.Loan) error {
	query := `
        INSERT INTO loans (customer_id, loan_amount, interest_rate, interest_type, start_date, tenure_months,
                           emi_amount, total_payable_amount, outstanding_balance, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		newLoan.CustomerID, newLoan.LoanAmount, newLoan.InterestRate, newLoan.InterestType, newLoan.StartDate,
		newLoan.TenureMonths, newLoan.EMIAmount, newLoan.TotalPayableAmount, newLoan.OutstandingBalance, newLoan.Status,
	).Scan(&newLoan.ID, &newLoan.CreatedAt, &newLoan.UpdatedAt)
	observe("CreateLoan", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "customer_id", newLoan.CustomerID, "error", err)
		translated := translateDBError(err, r.logger)
		// A foreign key violation means the customer vanished after the service checked it.
		if errors.Is(translated, apperrors.ErrConflict) {
			return fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, newLoan.CustomerID)
		}
		return translated
	}

	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", newLoan.ID)
	return nil
}

func (r *LoanRepository) GetByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + `
        FROM loans l
        JOIN customers c ON c.id = l.customer_id
        WHERE l.id = $1`

	start := time.Now()
	var l loan.Loan
	err := scanLoan(r.db.QueryRow(ctx, query, loanID), &l)
	observe("GetLoanByID", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to get loan")
	}
	return &l, nil
}

func (r *LoanRepository) List(ctx context.Context) ([]*loan.Loan, error) {
	query := `SELECT ` + loanColumns + `
        FROM loans l
        JOIN customers c ON c.id = l.customer_id
        ORDER BY l.created_at DESC, l.id DESC`

	start := time.Now()
	rows, err := r.db.Query(ctx, query)
	observe("ListLoans", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to query loans")
	}
	defer rows.Close()

	loans := make([]*loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		if err := scanLoan(rows, &l); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan loan row", "error", err)
			return nil, apperrors.WrapDatabaseError(err, "failed to scan loan row")
		}
		loans = append(loans, &l)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating loan rows", "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to iterate loan rows")
	}

	return loans, nil
}

func (r *LoanRepository) GetForUpdateInTx(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + `
        FROM loans l
        JOIN customers c ON c.id = l.customer_id
        WHERE l.id = $1
        FOR UPDATE OF l`

	start := time.Now()
	var l loan.Loan
	err := scanLoan(tx.QueryRow(ctx, query, loanID), &l)
	observe("GetLoanForUpdate", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.InfoContext(ctx, "No loan found to lock", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan row", "loan_id", loanID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return &l, nil
}

func (r *LoanRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, loanID int64, balance decimal.Decimal, status loan.Status) error {
	sql := `UPDATE loans SET outstanding_balance = $1, status = $2, updated_at = NOW() WHERE id = $3`

	start := time.Now()
	cmdTag, err := tx.Exec(ctx, sql, balance, status, loanID)
	observe("UpdateLoanBalance", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan balance", "loan_id", loanID, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan balance update affected zero rows", "loan_id", loanID)
		return fmt.Errorf("%w: loan balance update affected zero rows", apperrors.ErrDatabase)
	}
	r.logger.InfoContext(ctx, "Loan balance updated in DB", "loan_id", loanID, "balance", balance.StringFixed(2), "status", status)
	return nil
}

func (r *LoanRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, loanID int64, status loan.Status) error {
	sql := `UPDATE loans SET status = $1, updated_at = NOW() WHERE id = $2`

	start := time.Now()
	cmdTag, err := tx.Exec(ctx, sql, status, loanID)
	observe("UpdateLoanStatus", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update loan status", "loan_id", loanID, "status", status, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Loan status update affected zero rows", "loan_id", loanID, "status", status)
		return fmt.Errorf("%w: loan status update affected zero rows", apperrors.ErrDatabase)
	}
	r.logger.InfoContext(ctx, "Loan status updated in DB", "loan_id", loanID, "new_status", status)
	return nil
}

func (r *LoanRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, loanID int64) error {
	start := time.Now()
	_, err := tx.Exec(ctx, `DELETE FROM payments WHERE loan_id = $1`, loanID)
	if err != nil {
		observe("DeleteLoan", start, err)
		r.logger.ErrorContext(ctx, "Failed to delete loan payments", "loan_id", loanID, "error", err)
		return translateDBError(err, r.logger)
	}

	cmdTag, err := tx.Exec(ctx, `DELETE FROM loans WHERE id = $1`, loanID)
	observe("DeleteLoan", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete loan", "loan_id", loanID, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows, loan likely not found", "loan_id", loanID)
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Loan deleted in DB", "loan_id", loanID)
	return nil
}
