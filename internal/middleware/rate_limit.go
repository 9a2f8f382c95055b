package middleware

import (
	"net/http"
	"time"

	"github.com/BradenHooton/roster/internal/auth"
	pkghttp "github.com/BradenHooton/roster/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

func limitExceeded(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
}

// RateLimitByIP limits requests per client address. The address is resolved
// through ipConfig so forwarding headers are honored only from trusted proxies.
func RateLimitByIP(config RateLimitConfig, ipConfig *pkghttp.IPConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return ipConfig.ClientIP(r), nil
		}),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// RateLimitByAccount limits authenticated requests per account, falling back
// to the client address when no claims are present. Must run after
// auth.Authenticate.
func RateLimitByAccount(config RateLimitConfig, ipConfig *pkghttp.IPConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if claims := auth.GetClaims(r); claims != nil {
				return "account:" + claims.AccountID, nil
			}
			return "ip:" + ipConfig.ClientIP(r), nil
		}),
		httprate.WithLimitHandler(limitExceeded),
	)
}
