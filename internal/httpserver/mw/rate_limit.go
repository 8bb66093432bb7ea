package mw

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/logger"
	"github.com/MrSnakeDoc/tabsaver/internal/utils"
)

// RateLimitConfig bounds how often one client may trigger saves.
type RateLimitConfig struct {
	Burst         int           // saves a client may start back to back
	RefillPerMin  int           // tokens returned to a client per minute
	MaxClients    int           // buckets kept before an early sweep, 0 = unbounded
	SweepInterval time.Duration // how often idle buckets are dropped
	IdleTTL       time.Duration // a bucket unused this long is dropped
	TrustProxy    bool          // resolve the client from proxy headers
	Now           func() time.Time
}

type clientBucket struct {
	mu       sync.Mutex
	tokens   float64
	refilled time.Time
	lastSeen time.Time
}

// decision is the outcome of one take.
type decision struct {
	allowed    bool
	remaining  int
	retryAfter time.Duration
}

type limiter struct {
	cfg       RateLimitConfig
	perSecond float64
	capacity  float64

	mu        sync.Mutex
	clients   map[string]*clientBucket
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerMin = max(cfg.RefillPerMin, 1)

	return &limiter{
		cfg:       cfg,
		perSecond: float64(cfg.RefillPerMin) / 60.0,
		capacity:  float64(cfg.Burst),
		clients:   make(map[string]*clientBucket, 16),
		lastSweep: cfg.Now(),
	}
}

func (l *limiter) bucketFor(client string, now time.Time) *clientBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval ||
		(l.cfg.MaxClients > 0 && len(l.clients) >= l.cfg.MaxClients) {
		l.sweepLocked(now)
	}

	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{tokens: l.capacity, refilled: now, lastSeen: now}
		l.clients[client] = b
	}
	return b
}

// take consumes one token from client's bucket if it has one.
func (l *limiter) take(client string, now time.Time) decision {
	b := l.bucketFor(client, now)

	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.refilled).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSecond)
		b.refilled = now
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return decision{allowed: true, remaining: int(b.tokens)}
	}

	wait := time.Duration(math.Ceil((1-b.tokens)/l.perSecond)) * time.Second
	return decision{retryAfter: max(wait, time.Second)}
}

func (l *limiter) sweepLocked(now time.Time) {
	for client, b := range l.clients {
		b.mu.Lock()
		idle := now.Sub(b.lastSeen) > l.cfg.IdleTTL
		b.mu.Unlock()
		if idle {
			delete(l.clients, client)
		}
	}
	l.lastSweep = now
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

type rateLimitedResponse struct {
	Error             string `json:"error"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// RateLimit gives each client a token bucket of cfg.Burst saves refilled
// at cfg.RefillPerMin. Rejected requests get 429 with Retry-After.
func RateLimit(cfg RateLimitConfig, log logger.Logger) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := utils.ClientIP(r, l.cfg.TrustProxy)
			d := l.take(client, l.cfg.Now())

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))

			if !d.allowed {
				secs := int(d.retryAfter / time.Second)
				log.Warn("save trigger rate limited",
					logger.String("ip", client),
					logger.String("path", r.URL.Path),
					logger.Int("retry_after_s", secs))

				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(rateLimitedResponse{
					Error:             "too many save requests",
					RetryAfterSeconds: secs,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
