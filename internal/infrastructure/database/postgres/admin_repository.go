package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"loan-admin/internal/domain/admin"
	"loan-admin/internal/pkg/apperrors"
)

type AdminRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ admin.Repository = (*AdminRepository)(nil)

func NewAdminRepository(db DBPool, logger *slog.Logger) *AdminRepository {
	return &AdminRepository{db: db, logger: logger.With("component", "AdminRepository")}
}

func (r *AdminRepository) Create(ctx context.Context, a *admin.Admin) error {
	query := `
        INSERT INTO admins (name, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query, a.Name, strings.ToLower(a.Email), a.PasswordHash).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	observe("CreateAdmin", start, err)

	if err != nil {
		translated := translateDBError(err, r.logger)
		if errors.Is(translated, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Admin email already registered")
			return translated
		}
		r.logger.ErrorContext(ctx, "Failed to insert admin", slog.Any("error", err))
		return translated
	}

	r.logger.InfoContext(ctx, "Admin registered", slog.Int64("adminID", a.ID))
	return nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	query := `
        SELECT id, name, email, password_hash, created_at, updated_at
        FROM admins
        WHERE email = $1`

	start := time.Now()
	var a admin.Admin
	err := r.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt,
	)
	observe("FindAdminByEmail", start, err)

	if err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return &a, nil
}
