package server

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// ipRateLimiter throttles requests per client IP. Limiters are kept for
// the life of the process; the upload endpoint sees few distinct IPs, so
// no eviction is needed.
type ipRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 5
	}
	return &ipRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *ipRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// Middleware rejects requests over the per-IP rate with 429.
func (l *ipRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(r.RemoteAddr).Allow() {
			writeError(w, http.StatusTooManyRequests, "too many uploads, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
