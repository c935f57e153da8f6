package restapi

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yusufsyaifudin/appstore/pkg/respbuilder"
	"golang.org/x/time/rate"
)

// ipLimiter keeps one token bucket per client ip. Buckets idle longer than ttl are dropped on the next sweep.
type ipLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	hops     int
	ttl      time.Duration
	now      func() time.Time
	lastSeen map[string]time.Time
	buckets  map[string]*rate.Limiter
	swept    time.Time
}

func newIPLimiter(perMinute, burst, trustedProxyHops int) *ipLimiter {
	if burst <= 0 {
		burst = perMinute
	}

	return &ipLimiter{
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    burst,
		hops:     trustedProxyHops,
		ttl:      10 * time.Minute,
		now:      time.Now,
		lastSeen: map[string]time.Time{},
		buckets:  map[string]*rate.Limiter{},
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) > l.ttl {
		for k, seen := range l.lastSeen {
			if now.Sub(seen) > l.ttl {
				delete(l.lastSeen, k)
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	bucket, ok := l.buckets[ip]
	if !ok {
		bucket = rate.NewLimiter(l.limit, l.burst)
		l.buckets[ip] = bucket
	}

	l.lastSeen[ip] = now
	return bucket.AllowN(now, 1)
}

func (l *ipLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r, l.hops)) {
			respbuilder.WriteError(w, r, respbuilder.ErrTooManyRequests, errors.New("too many requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP returns the address seen by the outermost of trustedHops reverse proxies.
// Each proxy appends its peer to X-Forwarded-For, so only the last trustedHops entries are trusted.
// Zero trustedHops ignores the header.
func clientIP(r *http.Request, trustedHops int) string {
	if trustedHops > 0 {
		var hops []string
		for _, v := range r.Header.Values("X-Forwarded-For") {
			for _, ip := range strings.Split(v, ",") {
				if ip = strings.TrimSpace(ip); ip != "" {
					hops = append(hops, ip)
				}
			}
		}

		if len(hops) >= trustedHops {
			return hops[len(hops)-trustedHops]
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
