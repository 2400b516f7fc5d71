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
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/shopdesk-backend/api/responses"
	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one credential endpoint by client address
// and by the email in the request body. A zero limit disables that bucket.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) active() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

func (p AuthRateLimitPolicy) retryAfter() int {
	return int(p.window.Round(time.Second) / time.Second)
}

// rateHit is one counter the request is charged against.
type rateHit struct {
	bucket string
	scope  string
	limit  int
	label  map[string]any
}

func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.active() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits, err := policy.hits(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeMalformedPayload, err, "read request body"))
				return
			}
			for _, hit := range hits {
				allowed, count, err := store.FixedWindowAllow(r.Context(), hit.scope, int64(hit.limit), policy.window)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit store"))
					return
				}
				if !allowed {
					policy.reject(r.Context(), logg, w, hit, count)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// hits lists the counters for r. The body is restored for the next handler.
func (p AuthRateLimitPolicy) hits(r *http.Request) ([]rateHit, error) {
	var hits []rateHit
	if p.ipLimit > 0 {
		if ip := clientIP(r); ip != "" {
			hits = append(hits, rateHit{
				bucket: "ip",
				scope:  "ip:" + p.name + ":" + ip,
				limit:  p.ipLimit,
				label:  map[string]any{"ip": ip},
			})
		}
	}
	if p.emailLimit <= 0 || r.Body == nil {
		return hits, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var creds struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(body, &creds) != nil {
		return hits, nil
	}
	if email := strings.ToLower(strings.TrimSpace(creds.Email)); email != "" {
		sum := sha256.Sum256([]byte(email))
		digest := hex.EncodeToString(sum[:])
		hits = append(hits, rateHit{
			bucket: "email",
			scope:  "email:" + p.name + ":" + digest,
			limit:  p.emailLimit,
			label:  map[string]any{"email_hash": digest},
		})
	}
	return hits, nil
}

func (p AuthRateLimitPolicy) reject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, hit rateHit, count int64) {
	retry := p.retryAfter()
	if logg != nil {
		fields := map[string]any{
			"policy":   p.name,
			"bucket":   hit.bucket,
			"attempts": count,
			"limit":    hit.limit,
		}
		for k, v := range hit.label {
			fields[k] = v
		}
		logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limited")
	}
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, slow down").
		WithDetails(map[string]any{"retry_after_seconds": retry}))
}

// clientIP takes the first valid address from X-Forwarded-For, then
// X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if addr, err := netip.ParseAddr(strings.TrimSpace(part)); err == nil {
			return addr.Unmap().String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap().String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap().String()
	}
	return host
}
