package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"loan-admin/internal/config"
	"loan-admin/internal/pkg/auth"
)

type TokenValidator interface {
	Validate(token string) (auth.Principal, error)
}

// AuthMiddleware authenticates the bearer token and stores the admin
// principal in the request context. With auth disabled a valid token is still
// honored but a missing or bad one is let through anonymously.
func AuthMiddleware(cfg config.AuthConfig, validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("component", "AuthMiddleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authenticate(r, validator)
			if err != nil {
				if !cfg.Enabled {
					next.ServeHTTP(w, r)
					return
				}
				logger.WarnContext(r.Context(), "Rejected unauthenticated request", "path", r.URL.Path, "reason", err.Error())
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", "Bearer")
				http.Error(w, `{"error":{"message":"Unauthorized"}}`, http.StatusUnauthorized)
				return
			}

			logger.DebugContext(r.Context(), "Authenticated request", "admin_id", principal.AdminID)
			next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errMissingHeader authError = "missing Authorization header"
	errBadHeader     authError = "invalid Authorization header format"
)

func authenticate(r *http.Request, validator TokenValidator) (auth.Principal, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return auth.Principal{}, errMissingHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return auth.Principal{}, errBadHeader
	}

	return validator.Validate(strings.TrimSpace(parts[1]))
}
