package httpserver

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxTrackedCallers = 10_000

type callerLimiter struct {
	mu      sync.Mutex
	perMin  int
	callers map[string]*rate.Limiter
}

func (c *callerLimiter) get(key string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.callers[key]; ok {
		return l
	}
	if len(c.callers) >= maxTrackedCallers {
		// crude reset; a full table only happens under abuse
		c.callers = make(map[string]*rate.Limiter)
	}
	l := rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.perMin)), c.perMin)
	c.callers[key] = l
	return l
}

// LimitPerCaller allows perMin requests a minute per caller, keyed by the
// authenticated user or else the client IP. perMin <= 0 disables it.
func LimitPerCaller(perMin int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if perMin <= 0 {
			return next
		}
		cl := &callerLimiter{perMin: perMin, callers: make(map[string]*rate.Limiter)}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "ip:" + remoteIP(r)
			if id, ok := IdentityFrom(r.Context()); ok {
				key = "user:" + id.UserID
			}
			if !cl.get(key).Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(int((time.Minute/time.Duration(perMin)).Seconds())+1))
				writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
