package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	count int
	until time.Time
}

// limiter holds fixed-window counters per client IP. Expired buckets are
// swept at most once per window so idle clients do not accumulate.
type limiter struct {
	mu        sync.Mutex
	limit     int
	per       time.Duration
	now       func() time.Time
	buckets   map[string]*bucket
	nextSweep time.Time
}

func newLimiter(limit int, per time.Duration, now func() time.Time) *limiter {
	return &limiter{
		limit:     limit,
		per:       per,
		now:       now,
		buckets:   make(map[string]*bucket),
		nextSweep: now().Add(per),
	}
}

func (l *limiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for ip, b := range l.buckets {
		if now.After(b.until) {
			delete(l.buckets, ip)
		}
	}
	l.nextSweep = now.Add(l.per)
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// RateLimit allows limit requests per client IP in each per window.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return newLimiter(limit, per, time.Now).middleware
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPForRateLimit(r)
		now := l.now()
		l.mu.Lock()
		l.sweep(now)
		b, ok := l.buckets[ip]
		if !ok || now.After(b.until) {
			b = &bucket{until: now.Add(l.per)}
			l.buckets[ip] = b
		}
		if b.count >= l.limit {
			retry := int(b.until.Sub(now).Seconds()) + 1
			l.mu.Unlock()
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		b.count++
		l.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
