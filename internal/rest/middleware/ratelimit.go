package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	ierr "github.com/ratelink/ratelink/internal/errors"
)

// RateLimitMiddleware limits requests per client IP with a token bucket.
// Limiters are kept per IP for the process lifetime; this is a guard
// against runaway clients, not a billing-grade quota.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[ip] = l
		}
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			err := ierr.NewError("rate limit exceeded").
				WithHint("Too many requests, slow down").
				Mark(ierr.ErrValidation)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ierr.NewErrorResponse(err))
			return
		}
		c.Next()
	}
}
