package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"loan-admin/internal/pkg/apperrors"
	"loan-admin/internal/pkg/auth"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	defaultBcryptCost = 10
)

type TokenIssuer interface {
	Issue(p auth.Principal) (string, time.Time, error)
}

// Session is the result of a successful register or login.
type Session struct {
	Admin     *Admin
	Token     string
	ExpiresAt time.Time
}

type AdminService interface {
	Register(ctx context.Context, name, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
}

type adminService struct {
	repo       Repository
	issuer     TokenIssuer
	logger     *slog.Logger
	bcryptCost int
}

func NewAdminService(repo Repository, issuer TokenIssuer, logger *slog.Logger) AdminService {
	return &adminService{
		repo:       repo,
		issuer:     issuer,
		logger:     logger.With("component", "AdminService"),
		bcryptCost: defaultBcryptCost,
	}
}

func (s *adminService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	logger := s.logger.With("email", email)
	logger.InfoContext(ctx, "Registering admin")

	if name == "" {
		return nil, apperrors.NewValidationError("name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to hash password", "error", err)
		return nil, fmt.Errorf("%w: could not hash password", apperrors.ErrInternalServer)
	}

	a := &Admin{Name: name, Email: email, PasswordHash: string(hash)}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Admin already exists")
			return nil, fmt.Errorf("%w: admin with email %s", apperrors.ErrAlreadyExists, email)
		}
		logger.ErrorContext(ctx, "Failed to save admin", "error", err)
		return nil, fmt.Errorf("failed to save admin: %w", err)
	}

	logger.InfoContext(ctx, "Admin registered", "adminID", a.ID)
	return s.session(a)
}

func (s *adminService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	logger := s.logger.With("email", email)
	logger.InfoContext(ctx, "Admin login attempt")

	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Login failed: unknown email")
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		logger.ErrorContext(ctx, "Failed to look up admin", "error", err)
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		logger.WarnContext(ctx, "Login failed: wrong password")
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	logger.InfoContext(ctx, "Admin logged in", "adminID", a.ID)
	return s.session(a)
}

func (s *adminService) session(a *Admin) (*Session, error) {
	token, expiresAt, err := s.issuer.Issue(auth.Principal{AdminID: a.ID, Email: a.Email})
	if err != nil {
		return nil, fmt.Errorf("%w: could not issue token: %v", apperrors.ErrInternalServer, err)
	}
	return &Session{Admin: a, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
