package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mohamedfrix/k2a-backend-sub000/pkg/auth"
)

type contextKey string

const (
	contextKeyAdminID   contextKey = "admin_id"
	contextKeyAdminName contextKey = "admin_name"
	contextKeyClaims    contextKey = "claims"

	// HTTP header constants
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// AdminClaims is an alias for auth.Claims.
// Prefer using auth.Claims directly in new code.
type AdminClaims = auth.Claims

// AuthMiddleware validates admin JWT tokens.
// This is a thin HTTP wrapper that delegates token validation to pkg/auth.
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				w.Header().Set(headerContentType, contentTypeJSON)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"missing authorization header"}`))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				w.Header().Set(headerContentType, contentTypeJSON)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid authorization header format"}`))
				return
			}

			tokenString := parts[1]
			claims, err := auth.ValidateToken(tokenString, jwtSecret)
			if err != nil {
				w.Header().Set(headerContentType, contentTypeJSON)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid token"}`))
				return
			}

			// Add claims to context
			ctx := context.WithValue(r.Context(), contextKeyAdminID, claims.AdminID)
			ctx = context.WithValue(ctx, contextKeyAdminName, claims.Name)
			ctx = context.WithValue(ctx, contextKeyClaims, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminID retrieves the authenticated admin's ID from context
func GetAdminID(ctx context.Context) int64 {
	if v := ctx.Value(contextKeyAdminID); v != nil {
		return v.(int64)
	}
	return 0
}

// GetAdminName retrieves the authenticated admin's display name from context
func GetAdminName(ctx context.Context) string {
	if v := ctx.Value(contextKeyAdminName); v != nil {
		return v.(string)
	}
	return ""
}

// GetAdminClaims retrieves the full claims from context
func GetAdminClaims(ctx context.Context) *AdminClaims {
	if v := ctx.Value(contextKeyClaims); v != nil {
		return v.(*AdminClaims)
	}
	return nil
}
