package middleware

import (
	"math"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ketzal-web/ketzal/http"
	"github.com/ketzal-web/ketzal/http/status"
	"github.com/ketzal-web/ketzal/router"
	"golang.org/x/time/rate"
)

// idleVisitor is how long a peer must stay silent for its bucket to be forgotten.
const idleVisitor = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a token bucket per peer IP address. Requests over the limit are
// answered with 429 Too Many Requests.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

// RateLimit is a shortcut for NewRateLimiter(limit, burst).Middleware.
func RateLimit(limit rate.Limit, burst int) router.Middleware {
	return NewRateLimiter(limit, burst).Middleware
}

func (r *RateLimiter) Middleware(next router.Handler, request *http.Request) *http.Response {
	now := r.now()
	if r.limiter(peer(request), now).AllowN(now, 1) {
		return next(request)
	}

	retryAfter := 1
	if r.limit > 0 && r.limit < 1 {
		retryAfter = int(math.Ceil(1 / float64(r.limit)))
	}

	return http.Error(request, status.ErrTooManyRequests).
		Header("Retry-After", strconv.Itoa(retryAfter))
}

func (r *RateLimiter) limiter(peer string, now time.Time) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) > idleVisitor {
		for key, v := range r.visitors {
			if now.Sub(v.lastSeen) > idleVisitor {
				delete(r.visitors, key)
			}
		}

		r.lastSweep = now
	}

	v, found := r.visitors[peer]
	if !found {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		// the key outlives the request, so it's cloned
		r.visitors[strings.Clone(peer)] = v
	}

	v.lastSeen = now

	return v.limiter
}

// Visitors returns the number of peers being tracked.
func (r *RateLimiter) Visitors() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.visitors)
}

func peer(request *http.Request) string {
	if request.Remote == nil {
		return ""
	}

	addr := request.Remote.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}

	return addr
}
