package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/staybook/booking-api/internal/pkg/jwt"
	"github.com/staybook/booking-api/internal/pkg/logger"
	"github.com/staybook/booking-api/internal/pkg/response"
)

type contextKey string

const (
	ClientKey contextKey = "client"
	RoleKey   contextKey = "role"
)

// ServiceAuth validates service bearer tokens. A nil service disables the
// check so local setups can call the route without minting tokens.
func ServiceAuth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if jwtService == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateServiceToken(parts[1])
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			logger.FromContext(r.Context()).Debug().
				Str("client", claims.Client).
				Str("role", claims.Role).
				Msg("service token accepted")

			ctx := context.WithValue(r.Context(), ClientKey, claims.Client)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClient extracts the calling service name from context
func GetClient(ctx context.Context) string {
	if client, ok := ctx.Value(ClientKey).(string); ok {
		return client
	}
	return ""
}

// GetRole extracts role from context
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(RoleKey).(string); ok {
		return role
	}
	return ""
}

// RequireRole returns middleware that checks the caller role.
// It passes through when no role was set because service auth is disabled.
func RequireRole(enabled bool, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetRole(r.Context())

			for _, role := range roles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient permissions")
		})
	}
}
