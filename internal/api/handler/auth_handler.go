package handler

import (
	"log/slog"
	"net/http"

	"loan-admin/internal/api/handler/dto"
	"loan-admin/internal/domain/admin"
)

type AuthHandler struct {
	service admin.AdminService
	logger  *slog.Logger
}

func NewAuthHandler(s admin.AdminService, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: s,
		logger:  l.With("component", "AuthHandler"),
	}
}

// Register handles POST /auth/register
// @Summary Register an admin
// @Description Creates an admin account and returns a bearer token for it.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Admin registration"
// @Success 201 {object} dto.AuthResponse "Admin registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid register request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	session, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Failed to register admin", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Admin registered", slog.Int64("adminID", session.Admin.ID))
	respondJSON(w, http.StatusCreated, dto.NewAuthResponse(session))
}

// Login handles POST /auth/login
// @Summary Log in as an admin
// @Description Exchanges admin credentials for a bearer token.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Admin credentials"
// @Success 200 {object} dto.AuthResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid login request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Login failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewAuthResponse(session))
}
