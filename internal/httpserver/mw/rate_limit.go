package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/utils"
)

// RateLimitConfig describes the per-client budget for listing mutations.
// Burst <= 0 turns the middleware into a passthrough.
type RateLimitConfig struct {
	Burst             int
	RefillPerIPPerMin int
	MaxEntries        int           // sweep early once this many clients are tracked
	IdleTTL           time.Duration // forget clients idle for longer
	TrustProxy        bool

	now func() time.Time
}

type allowance struct {
	tokens float64
	at     time.Time
}

type clientLimiter struct {
	cfg      RateLimitConfig
	perSec   float64
	capacity float64

	mu        sync.Mutex
	clients   map[string]*allowance
	lastSweep time.Time
}

func newClientLimiter(cfg RateLimitConfig) *clientLimiter {
	if cfg.RefillPerIPPerMin < 1 {
		cfg.RefillPerIPPerMin = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return &clientLimiter{
		cfg:       cfg,
		perSec:    float64(cfg.RefillPerIPPerMin) / 60,
		capacity:  float64(cfg.Burst),
		clients:   make(map[string]*allowance),
		lastSweep: cfg.now(),
	}
}

// take spends one token for ip. When the client is out of tokens it returns
// the number of seconds until the next one.
func (l *clientLimiter) take(ip string) (ok bool, left int, wait int) {
	now := l.cfg.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	a, found := l.clients[ip]
	if !found {
		a = &allowance{tokens: l.capacity, at: now}
		l.clients[ip] = a
	}
	if d := now.Sub(a.at).Seconds(); d > 0 {
		a.tokens = math.Min(l.capacity, a.tokens+d*l.perSec)
	}
	a.at = now

	if a.tokens < 1 {
		wait = int(math.Ceil((1 - a.tokens) / l.perSec))
		return false, 0, max(wait, 1)
	}
	a.tokens--
	return true, int(a.tokens), 0
}

func (l *clientLimiter) sweep(now time.Time) {
	full := l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries
	if !full && now.Sub(l.lastSweep) < time.Minute {
		return
	}
	for ip, a := range l.clients {
		if now.Sub(a.at) > l.cfg.IdleTTL {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit throttles each client IP with a token bucket. Throttled requests
// get 429 with Retry-After; every response carries X-RateLimit-* headers.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := newClientLimiter(cfg)
	limit := strconv.Itoa(cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, left, wait := l.take(utils.ClientIP(r, cfg.TrustProxy))

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(left))
			if !ok {
				h.Set("Retry-After", strconv.Itoa(wait))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
