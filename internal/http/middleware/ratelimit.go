package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/buran83/makechat/internal/http/response"
	"github.com/buran83/makechat/internal/observability"
)

// RateLimiter is a fixed-window per-client limiter for the credential
// endpoints. State is in-process; each replica enforces its own window.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*clientWindow
	cleanup time.Time
}

type clientWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*clientWindow),
		cleanup: time.Now().Add(window),
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter := rl.allow(clientIPKey(r))
			if !allowed {
				observability.RecordGuardDecision(r.Context(), "rate_limit", "ip", "deny")
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retrySeconds(retryAfter)))
				response.Error(w, http.StatusTooManyRequests, "Too many requests",
					"Authentication attempts are limited. Retry later.")
				return
			}
			observability.RecordGuardDecision(r.Context(), "rate_limit", "ip", "allow")
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.cleanup) {
		for k, win := range rl.windows {
			if now.Sub(win.start) > 2*rl.window {
				delete(rl.windows, k)
			}
		}
		rl.cleanup = now.Add(rl.window)
	}

	win, ok := rl.windows[key]
	if !ok || now.Sub(win.start) >= rl.window {
		rl.windows[key] = &clientWindow{start: now, count: 1}
		return true, 0
	}
	if win.count >= rl.limit {
		return false, win.start.Add(rl.window).Sub(now)
	}
	win.count++
	return true, 0
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retrySeconds(d time.Duration) int {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return seconds
}
