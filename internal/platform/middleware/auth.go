package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Role is a capability tier carried by an access credential.
type Role string

const (
	// RoleOwner has full administrative control: catalog edits, rate
	// changes, pool withdrawal, choice-price management.
	RoleOwner Role = "owner"
	// RoleOperator covers day-to-day issuance and administrative field
	// overrides. Granted by the owner, revocable.
	RoleOperator Role = "operator"
)

// RoleValidator verifies an access credential and returns its role.
type RoleValidator interface {
	ValidateRole(tokenString string) (Role, error)
}

type contextKeyRole struct{}

// ContextKeyRole is exported for use in handlers.
var ContextKeyRole = contextKeyRole{}

// GetRole retrieves the authenticated role from the context.
func GetRole(ctx context.Context) Role {
	role, ok := ctx.Value(ContextKeyRole).(Role)
	if !ok {
		return ""
	}
	return role
}

// RequireRole rejects requests whose bearer credential does not carry the
// required role. The owner credential satisfies operator-gated routes.
func RequireRole(validator RoleValidator, required Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing credential",
					"request_id", requestID,
				)
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}

			role, err := validator.ValidateRole(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid credential",
					"error", err,
					"request_id", requestID,
				)
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired credential")
				return
			}

			if role != required && role != RoleOwner {
				logger.WarnContext(ctx, "forbidden - insufficient role",
					"role", string(role),
					"required", string(required),
					"request_id", requestID,
				)
				writeAuthError(w, http.StatusForbidden, "insufficient role")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyRole, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + http.StatusText(status) + `","error_description":"` + description + `"}`))
}
