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
	"strconv"
	"strings"
	"time"

	"github.com/riderschoice/riderschoice-backend/api/responses"
	"github.com/riderschoice/riderschoice-backend/pkg/config"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
	"github.com/riderschoice/riderschoice-backend/pkg/redis"
)

// throttlePeekLimit bounds how much of the body is read to find the email.
const throttlePeekLimit = 64 << 10

// Counter counts hits in a fixed window. *redis.Client satisfies it.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// ThrottlePolicy caps attempts on one auth endpoint per client IP and per
// submitted email. A zero limit disables that dimension.
type ThrottlePolicy struct {
	Name     string
	Window   time.Duration
	PerIP    int
	PerEmail int
}

func LoginPolicy(cfg config.AuthRateLimitConfig) ThrottlePolicy {
	return ThrottlePolicy{Name: "login", Window: cfg.LoginWindow, PerIP: cfg.LoginIPLimit, PerEmail: cfg.LoginEmailLimit}
}

func RegisterPolicy(cfg config.AuthRateLimitConfig) ThrottlePolicy {
	return ThrottlePolicy{Name: "register", Window: cfg.RegisterWindow, PerIP: cfg.RegisterIPLimit, PerEmail: cfg.RegisterEmailLimit}
}

func (p ThrottlePolicy) active() bool {
	return p.Window > 0 && (p.PerIP > 0 || p.PerEmail > 0)
}

type throttleCheck struct {
	scope   string
	subject string
	limit   int
}

// Throttle rejects requests over the policy with 429. Emails are hashed
// before they reach redis or the logs.
func Throttle(policy ThrottlePolicy, counter Counter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if counter == nil || !policy.active() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var checks []throttleCheck
			if ip := remoteIP(r); policy.PerIP > 0 && ip != "" {
				checks = append(checks, throttleCheck{scope: "ip", subject: ip, limit: policy.PerIP})
			}
			if policy.PerEmail > 0 {
				if email := peekEmail(r); email != "" {
					checks = append(checks, throttleCheck{scope: "email", subject: digest(email), limit: policy.PerEmail})
				}
			}

			for _, c := range checks {
				n, err := counter.Hit(ctx, redis.Key("rl", policy.Name, c.scope, c.subject), policy.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if n > int64(c.limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":   policy.Name,
							"scope":    c.scope,
							"subject":  c.subject,
							"attempts": n,
							"limit":    c.limit,
						}), "auth.throttled")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.Window.Seconds())))
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// peekEmail reads the start of the body for an "email" field and puts the
// bytes back so the handler sees the full body.
func peekEmail(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	head, _ := io.ReadAll(io.LimitReader(r.Body, throttlePeekLimit))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	var probe struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(head, &probe) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(probe.Email))
}

// remoteIP expects chi's RealIP to have already applied forwarding headers.
func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:12])
}
