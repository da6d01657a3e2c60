package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/kelydev/apiTramite/auth"
	"github.com/kelydev/apiTramite/utils"
)

// Define a key type for context values to avoid collisions
type contextKey string

const (
	claimsKey    contextKey = "claims"
	requestIDKey contextKey = "requestID"
)

// ClaimsFrom returns the verified token claims stored by JWTMiddleware.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// JWTMiddleware verifies the bearer access token from the Authorization header.
func JWTMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.RespondError(w, http.StatusUnauthorized, "Se requiere la cabecera Authorization")
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || tokenString == "" {
				utils.RespondError(w, http.StatusUnauthorized, "La cabecera Authorization debe tener el formato Bearer {token}")
				return
			}

			claims, err := tokens.Parse(tokenString, auth.TypeAccess)
			if err != nil {
				log.Debug().Err(err).Msg("token validation error")
				switch {
				case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
					utils.RespondError(w, http.StatusUnauthorized, "El token expiró o aún no es válido")
				case errors.Is(err, jwt.ErrTokenMalformed):
					utils.RespondError(w, http.StatusUnauthorized, "Token mal formado")
				case errors.Is(err, jwt.ErrTokenSignatureInvalid):
					utils.RespondError(w, http.StatusUnauthorized, "Firma del token inválida")
				default:
					utils.RespondError(w, http.StatusUnauthorized, "Token inválido")
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole allows the request only for users holding one of roles.
// It must run after JWTMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "No autenticado")
				return
			}
			if !slices.Contains(roles, claims.Rol) {
				utils.RespondError(w, http.StatusForbidden, "No tiene permisos para esta operación")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
