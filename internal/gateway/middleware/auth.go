package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"campusvote/internal/jwttoken"
)

// TokenValidator defines the interface for validating session tokens
type TokenValidator interface {
	Validate(tokenString string) (*jwttoken.Claims, error)
}

type contextKeyStudentID struct{}

// ContextKeyStudentID is exported for use in handlers
var ContextKeyStudentID = contextKeyStudentID{}

// GetStudentIDNumber retrieves the authenticated caller from the context.
// Empty means the request carried no valid token.
func GetStudentIDNumber(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeyStudentID).(string)
	if !ok {
		return ""
	}
	return id
}

// writeJSONError writes a JSON error response with the given status code and message.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q}`, message))
}

// Authenticate resolves the Authorization header into a caller identity. A
// request without the header passes through anonymous; whether anonymity is
// acceptable is decided per contract method by the handler. A present but
// invalid token is rejected outright.
func Authenticate(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(r.Context(), "unauthorized access - malformed authorization header")
				writeJSONError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token", "error", err)
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyStudentID, claims.StudentIDNumber)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
