package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tdbstore/tdb-backend/api/responses"
	pkgerrors "github.com/tdbstore/tdb-backend/pkg/errors"
	"github.com/tdbstore/tdb-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// PaymentRateLimitPolicy defines the per-IP throttle for payment endpoints.
type PaymentRateLimitPolicy struct {
	window  time.Duration
	ipLimit int
}

// NewPaymentRateLimitPolicy builds a policy with the supplied window and limit.
func NewPaymentRateLimitPolicy(window time.Duration, ipLimit int) PaymentRateLimitPolicy {
	return PaymentRateLimitPolicy{window: window, ipLimit: ipLimit}
}

func (p PaymentRateLimitPolicy) enabled() bool {
	return p.window > 0 && p.ipLimit > 0
}

func (p PaymentRateLimitPolicy) ipScope(ip string) string {
	if ip == "" {
		return ""
	}
	return fmt.Sprintf("ip:payments:%s", ip)
}

// PaymentRateLimit enforces a per-IP fixed window on payment endpoints.
// Payment traffic is low volume per shopper, so a tight window keeps abusive
// intent creation off the gateway without touching normal checkouts.
func PaymentRateLimit(policy PaymentRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ip := clientIP(r)
			scope := policy.ipScope(ip)
			if scope == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowed, count, err := store.FixedWindowAllow(ctx, scope, int64(policy.ipLimit), policy.window)
			if err != nil {
				responses.WriteError(ctx, nil, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				if logg != nil {
					logCtx := logg.WithFields(ctx, map[string]any{
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.ipLimit,
						"window_seconds": int(policy.window.Seconds()),
					})
					logg.Warn(logCtx, "payments.rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
