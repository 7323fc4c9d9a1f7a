package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimit allows limit requests per client IP in each fixed window of
// length per. A limit of zero or less disables limiting.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return rateLimit(limit, per, time.Now)
}

func rateLimit(limit int, per time.Duration, clock func() time.Time) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := &windowLimiter{limit: limit, per: per, windows: make(map[string]window), swept: clock()}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, reset, ok := l.allow(ClientIP(r), clock())
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds())+1))
				writeError(w, http.StatusTooManyRequests, CodeRateLimited, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type window struct {
	count int
	ends  time.Time
}

type windowLimiter struct {
	mu      sync.Mutex
	limit   int
	per     time.Duration
	windows map[string]window
	swept   time.Time
}

// allow records one hit for key and reports the hits left in the current
// window and the time until it resets.
func (l *windowLimiter) allow(key string, now time.Time) (int, time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.per {
		for k, win := range l.windows {
			if !now.Before(win.ends) {
				delete(l.windows, k)
			}
		}
		l.swept = now
	}

	win, ok := l.windows[key]
	if !ok || !now.Before(win.ends) {
		win = window{ends: now.Add(l.per)}
	}
	if win.count >= l.limit {
		return 0, win.ends.Sub(now), false
	}
	win.count++
	l.windows[key] = win
	return l.limit - win.count, win.ends.Sub(now), true
}
