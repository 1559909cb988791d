package httpx

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/campusid/auth/pkg/slogx"
)

// RateLimitConfig is a token bucket: Requests per Window refill rate, with up
// to Burst requests admitted at once. The env tags are relative so a config
// struct can mount several profiles under different prefixes.
type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" yaml:"requests"`
	Window   time.Duration `env:"WINDOW"   yaml:"window"`
	Burst    int           `env:"BURST"    yaml:"burst"`
}

// Built-in profiles.
var (
	// StrictLimit guards credential endpoints (login, setup).
	StrictLimit = RateLimitConfig{Requests: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards token endpoints and authenticated writes.
	ModerateLimit = RateLimitConfig{Requests: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards reads and health probes.
	LenientLimit = RateLimitConfig{Requests: 100, Window: time.Minute, Burst: 100}
)

// Or fills every unset field of c from def.
func (c RateLimitConfig) Or(def RateLimitConfig) RateLimitConfig {
	if c.Requests <= 0 {
		c.Requests = def.Requests
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
	if c.Burst <= 0 {
		c.Burst = def.Burst
	}
	return c
}

// KeyExtractor returns the bucket key for a request. An empty key bypasses
// the limiter.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// It honours X-Forwarded-For and X-Real-IP for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// AccountKeyExtractor extracts the authenticated account id from the request
// context. Returns empty string for anonymous requests.
func AccountKeyExtractor(r *http.Request) string {
	return AccountIDFromContext(r.Context())
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiter holds one token bucket per key. Buckets idle for longer than
// a window are swept at most once per window.
type keyedLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
}

func newKeyedLimiter(cfg RateLimitConfig) *keyedLimiter {
	return &keyedLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:   cfg.Burst,
		window:  cfg.Window,
	}
}

// allow consumes one token for key. When the bucket is empty it reports how
// long until the next token.
func (k *keyedLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if now.Sub(k.lastSweep) >= k.window {
		for key, b := range k.buckets {
			if now.Sub(b.lastSeen) >= k.window {
				delete(k.buckets, key)
			}
		}
		k.lastSweep = now
	}

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// RateLimitMiddleware rejects requests with 429 once the bucket for their
// key is empty.
func RateLimitMiddleware(cfg RateLimitConfig, keyOf KeyExtractor) Middleware {
	limiter := newKeyedLimiter(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyOf(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, delay := limiter.allow(key, time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(delay.Round(time.Second)/time.Second), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("endpoint", r.URL.Path),
				slog.Int("retry_after", retryAfter),
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "too_many_requests",
				"error_description": "Too many requests. Please try again later.",
			})
		})
	}
}

// RateLimitByIP limits by client IP.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByUser limits by authenticated account combined with client IP.
// Must run after the authentication guard.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":",
		AccountKeyExtractor,
		IPKeyExtractor,
	))
}
