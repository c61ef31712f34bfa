package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/dealtracker-backend/api/responses"
	"github.com/angelmondragon/dealtracker-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
	"github.com/angelmondragon/dealtracker-backend/pkg/logger"
)

// maxAuthBody bounds how much of a credentials payload is buffered to find the email.
const maxAuthBody = 64 << 10

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one credentials endpoint per client IP and per email.
// A zero limit disables that dimension.
type AuthRateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

// LoginPolicy and RegisterPolicy read their windows and limits from config.
func LoginPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{Name: "login", Window: cfg.LoginWindow, IPLimit: cfg.LoginIPLimit, EmailLimit: cfg.LoginEmailLimit}
}

func RegisterPolicy(cfg config.AuthRateLimitConfig) AuthRateLimitPolicy {
	return AuthRateLimitPolicy{Name: "register", Window: cfg.RegisterWindow, IPLimit: cfg.RegisterIPLimit, EmailLimit: cfg.RegisterEmailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.Window > 0 && (p.IPLimit > 0 || p.EmailLimit > 0)
}

func (p AuthRateLimitPolicy) name() string {
	if n := strings.ToLower(strings.TrimSpace(p.Name)); n != "" {
		return n
	}
	return "auth"
}

// rateCheck is one counter consulted for a request.
type rateCheck struct {
	dimension string
	value     string
	limit     int
}

// AuthRateLimit counts attempts in Redis fixed windows before letting a credentials
// request through. Store errors fail closed with 503.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			checks := make([]rateCheck, 0, 2)
			if ip := clientIP(r); ip != "" && policy.IPLimit > 0 {
				checks = append(checks, rateCheck{dimension: "ip", value: ip, limit: policy.IPLimit})
			}
			if policy.EmailLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if email := emailFromBody(body); email != "" {
					checks = append(checks, rateCheck{dimension: "email", value: hashValue(email), limit: policy.EmailLimit})
				}
			}

			for _, c := range checks {
				scope := c.dimension + ":" + policy.name() + ":" + c.value
				allowed, count, err := store.FixedWindowAllow(ctx, scope, int64(c.limit), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting unavailable"))
					return
				}
				if !allowed {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":    policy.name(),
							"dimension": c.dimension,
							"attempts":  count,
							"limit":     c.limit,
						}), "auth.rate_limited")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Round(time.Second).Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// emailFromBody returns the normalized email of a JSON credentials payload, or "".
func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
