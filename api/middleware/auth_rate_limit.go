package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/voltedge/renewals-backend/api/responses"
	"github.com/voltedge/renewals-backend/pkg/config"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

const maxRateLimitBodyBytes = 1 << 20

// RateLimiterStore is the counter surface the limiter needs, satisfied by
// the redis client.
type RateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// AuthRateLimitPolicy bounds login attempts per client IP and per submitted
// email within a rolling window.
type AuthRateLimitPolicy struct {
	Window     time.Duration
	IPLimit    int64
	EmailLimit int64
}

// PolicyFromConfig maps the configured limits into a policy.
func PolicyFromConfig(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{
		Window:     cfg.LoginWindow,
		IPLimit:    int64(cfg.LoginIPLimit),
		EmailLimit: int64(cfg.LoginEmailLimit),
	}
}

// AuthRateLimit throttles an auth endpoint. A store failure lets the request
// through so Redis outages do not lock everyone out.
func AuthRateLimit(store RateLimiterStore, policy AuthRateLimitPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || policy.Window <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if policy.IPLimit > 0 && ip != "" {
				count, err := store.IncrWithTTL(r.Context(), "ratelimit:auth:ip:"+hashValue(ip), policy.Window)
				if err != nil {
					logg.Warn(r.Context(), "rate limit store unavailable, allowing request")
				} else if count > policy.IPLimit {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, retry later"))
					return
				}
			}

			email := extractEmail(r)
			if policy.EmailLimit > 0 && email != "" {
				count, err := store.IncrWithTTL(r.Context(), "ratelimit:auth:email:"+hashValue(email), policy.Window)
				if err != nil {
					logg.Warn(r.Context(), "rate limit store unavailable, allowing request")
				} else if count > policy.EmailLimit {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, retry later"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

// extractEmail peeks at the JSON body for an email field and restores the
// body so the handler can decode it again.
func extractEmail(r *http.Request) string {
	if r.Body == nil {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
