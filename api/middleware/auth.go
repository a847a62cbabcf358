package middleware

import (
	"context"
	"net/http"
	"strings"

	pkgAuth "github.com/tdbstore/tdb-backend/pkg/auth"
	"github.com/tdbstore/tdb-backend/pkg/config"
	"github.com/tdbstore/tdb-backend/pkg/logger"
)

// OptionalAuth attaches the shopper's identity to the context when a valid
// bearer token is present. Checkout works for guests, so a missing or
// invalid token never blocks the request; it only means the order is
// recorded without a user reference.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "reason", err.Error()), "auth.token_rejected")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID.String())
			ctx = context.WithValue(ctx, ctxUserEmail, claims.Email)
			ctx = context.WithValue(ctx, ctxUserName, claims.Name)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
