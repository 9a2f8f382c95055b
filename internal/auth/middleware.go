package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/roster/internal/models"
	pkghttp "github.com/BradenHooton/roster/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// ClaimsContextKey is the key for storing token claims in context
	ClaimsContextKey contextKey = "claims"
)

// AccountFetcher loads the current state of an account.
type AccountFetcher interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

// Authenticate validates bearer tokens and injects the claims into context
func Authenticate(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces role-based access control. The account is reloaded so
// role changes and deactivation apply before the token expires.
func RequireRole(accounts AccountFetcher, role models.Role, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Must be used after Authenticate
			claims := GetClaims(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "unauthorized")
				return
			}

			account, err := accounts.GetByID(r.Context(), claims.AccountID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					pkghttp.WriteUnauthorized(w, "account not found")
					return
				}
				logger.Error("failed to load account for role check",
					slog.String("account_id", claims.AccountID),
					slog.Any("error", err))
				pkghttp.WriteInternalError(w, "internal server error")
				return
			}

			if err := authorize(account, role); err != nil {
				if errors.Is(err, models.ErrForbidden) {
					logger.Warn("role check failed",
						slog.String("account_id", account.ID),
						slog.String("required_role", role.String()))
					pkghttp.WriteForbidden(w, "insufficient permissions")
					return
				}
				pkghttp.WriteUnauthorized(w, "account is disabled")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authorize decides whether a freshly loaded account may act with role.
// A disabled account is ErrAccountDisabled; a missing role is ErrForbidden.
func authorize(account *models.Account, role models.Role) error {
	if !account.Active {
		return models.ErrAccountDisabled
	}
	if !account.HasRole(role) {
		return fmt.Errorf("%w: requires role %s", models.ErrForbidden, role)
	}
	return nil
}

// GetClaims extracts token claims from request context
func GetClaims(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
