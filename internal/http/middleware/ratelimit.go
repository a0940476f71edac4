package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/smritirangarajan/spenderella/internal/http/render"
)

// RateLimiter keeps one token bucket per client address. Buckets idle longer than ttl are forgotten.
type RateLimiter struct {
	mu      sync.Mutex
	clients *cache.Cache
	limit   rate.Limit
	burst   int
	ttl     time.Duration
}

func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: cache.New(ttl, ttl),
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.clients.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.clients.Set(key, lim, l.ttl)

		return lim
	}

	lim := rate.NewLimiter(l.limit, l.burst)
	l.clients.Set(key, lim, l.ttl)

	return lim
}

// Allow reports whether the client identified by key may make another request now.
func (l *RateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.Allow(key) {
			slog.Warn("rate limit exceeded", "method", r.Method, "path", r.URL.Path, "client", key)
			render.Error(w, http.StatusTooManyRequests, render.CodeTooMany, "Too many requests, please try again later")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
