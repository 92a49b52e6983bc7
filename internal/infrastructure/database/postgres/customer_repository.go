package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"loan-admin/internal/domain/customer"
	"loan-admin/internal/pkg/apperrors"
)

const customerColumns = `id, full_name, mobile_number, address, id_proof_reference, notes, date_added, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger.With("component", "CustomerRepository")}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust.ID == 0 {
		return r.insertCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) insertCustomer(ctx context.Context, cust *customer.Customer) error {
	query := `
        INSERT INTO customers (full_name, mobile_number, address, id_proof_reference, notes, date_added, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.FullName, cust.MobileNumber, cust.Address, cust.IDProofReference, cust.Notes, cust.DateAdded,
	).Scan(&cust.ID, &cust.CreatedAt, &cust.UpdatedAt)
	observe("InsertCustomer", start, err)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return translateDBError(err, r.logger)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) error {
	query := `
        UPDATE customers
        SET full_name = $1,
            mobile_number = $2,
            address = $3,
            id_proof_reference = $4,
            notes = $5,
            updated_at = NOW()
        WHERE id = $6
        RETURNING updated_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.FullName, cust.MobileNumber, cust.Address, cust.IDProofReference, cust.Notes, cust.ID,
	).Scan(&cust.UpdatedAt)
	observe("UpdateCustomer", start, err)

	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrNotFound) {
			r.logger.WarnContext(ctx, "Update affected zero rows, customer likely not found", slog.Int64("customerID", cust.ID))
			return translated
		}
		r.logger.ErrorContext(ctx, "Failed to update customer", slog.Int64("customerID", cust.ID), slog.Any("error", err))
		return translated
	}

	r.logger.InfoContext(ctx, "Customer updated successfully", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	start := time.Now()
	var c customer.Customer
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&c.ID, &c.FullName, &c.MobileNumber, &c.Address, &c.IDProofReference, &c.Notes,
		&c.DateAdded, &c.CreatedAt, &c.UpdatedAt,
	)
	observe("FindCustomerByID", start, err)

	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrNotFound) {
			r.logger.WarnContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
		}
		return nil, translated
	}
	return &c, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, keyword string) ([]*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var args []any
	if keyword != "" {
		query += ` WHERE full_name ILIKE $1 OR mobile_number ILIKE $1`
		args = append(args, "%"+escapeLike(keyword)+"%")
	}
	query += ` ORDER BY created_at DESC`

	start := time.Now()
	rows, err := r.db.Query(ctx, query, args...)
	observe("FindAllCustomers", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "failed to query customers")
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(
			&c.ID, &c.FullName, &c.MobileNumber, &c.Address, &c.IDProofReference, &c.Notes,
			&c.DateAdded, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, apperrors.WrapDatabaseError(err, "failed scanning customer")
		}
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, apperrors.WrapDatabaseError(err, "error iterating customers")
	}

	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) error {
	query := `DELETE FROM customers WHERE id = $1`

	start := time.Now()
	cmdTag, err := r.db.Exec(ctx, query, customerID)
	observe("DeleteCustomer", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		return translateDBError(err, r.logger)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows, customer likely not found", slog.Int64("customerID", customerID))
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Customer deleted successfully", slog.Int64("customerID", customerID))
	return nil
}

func (r *CustomerRepository) CountLoans(ctx context.Context, customerID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM loans WHERE customer_id = $1`

	start := time.Now()
	var count int64
	err := r.db.QueryRow(ctx, query, customerID).Scan(&count)
	observe("CountCustomerLoans", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customer loans", slog.Int64("customerID", customerID), slog.Any("error", err))
		return 0, apperrors.WrapDatabaseError(err, "failed to count customer loans")
	}
	return count, nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM customers`

	start := time.Now()
	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	observe("CountCustomers", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", slog.Any("error", err))
		return 0, apperrors.WrapDatabaseError(err, "failed to count customers")
	}
	return count, nil
}
