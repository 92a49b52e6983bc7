package postgres

import (
	"context"
	"log/slog"
	"time"

	"loan-admin/internal/domain/payment"
	"loan-admin/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const paymentColumns = `
        p.id, p.loan_id, p.payment_date, p.amount_paid, p.payment_method, p.remaining_balance,
        p.interest_applied, p.late_fee, p.recorded_by, p.created_at,
        l.customer_id, c.full_name, l.loan_amount, l.status`

type PaymentRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ payment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(db DBPool, logger *slog.Logger) *PaymentRepository {
	return &PaymentRepository{db: db, logger: logger.With("component", "PaymentRepository")}
}

func (r *PaymentRepository) CreateInTx(ctx context.Context, tx pgx.Tx, p *payment.Payment) error {
	query := `
        INSERT INTO payments (loan_id, payment_date, amount_paid, payment_method, remaining_balance,
                              interest_applied, late_fee, recorded_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        RETURNING id, created_at`

	start := time.Now()
	err := tx.QueryRow(ctx, query,
		p.LoanID, p.PaymentDate, p.AmountPaid, p.PaymentMethod, p.RemainingBalance,
		p.InterestApplied, p.LateFee, p.RecordedBy,
	).Scan(&p.ID, &p.CreatedAt)
	observe("CreatePayment", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert payment", "loan_id", p.LoanID, "error", err)
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Payment inserted in DB", "payment_id", p.ID, "loan_id", p.LoanID)
	return nil
}

func (r *PaymentRepository) List(ctx context.Context) ([]*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + `
        FROM payments p
        JOIN loans l ON l.id = p.loan_id
        JOIN customers c ON c.id = l.customer_id
        ORDER BY p.payment_date DESC, p.id DESC`

	return r.query(ctx, "ListPayments", query)
}

func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID int64) ([]*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + `
        FROM payments p
        JOIN loans l ON l.id = p.loan_id
        JOIN customers c ON c.id = l.customer_id
        WHERE p.loan_id = $1
        ORDER BY p.payment_date DESC, p.id DESC`

	return r.query(ctx, "ListPaymentsByLoan", query, loanID)
}

func (r *PaymentRepository) query(ctx context.Context, name, query string, args ...any) ([]*payment.Payment, error) {
	start := time.Now()
	rows, err := r.db.Query(ctx, query, args...)
	observe(name, start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query payments", "query", name, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to query payments")
	}
	defer rows.Close()

	payments := make([]*payment.Payment, 0)
	for rows.Next() {
		var p payment.Payment
		if err := rows.Scan(
			&p.ID, &p.LoanID, &p.PaymentDate, &p.AmountPaid, &p.PaymentMethod, &p.RemainingBalance,
			&p.InterestApplied, &p.LateFee, &p.RecordedBy, &p.CreatedAt,
			&p.CustomerID, &p.CustomerName, &p.LoanAmount, &p.LoanStatus,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan payment row", "query", name, "error", err)
			return nil, apperrors.WrapDatabaseError(err, "failed to scan payment row")
		}
		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating payment rows", "query", name, "error", err)
		return nil, apperrors.WrapDatabaseError(err, "failed to iterate payment rows")
	}

	return payments, nil
}
