package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORSMiddleware handles CORS for browser and extension clients
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		if isAllowedOrigin(origin, allowedOrigins) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Max-Age", "3600")
		}

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the origin is in the allowed list
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		// Support wildcard matching, e.g. "*" or "chrome-extension://*"
		if strings.HasSuffix(allowed, "*") {
			prefix := strings.TrimSuffix(allowed, "*")
			if strings.HasPrefix(origin, prefix) {
				return true
			}
		} else if origin == allowed {
			return true
		}
	}
	return false
}

// limiterIdleAfter is how long a client may sit unused before its bucket
// is dropped, and the minimum gap between sweeps
const limiterIdleAfter = 10 * time.Minute

// clientLimiter pairs a token bucket with its last use, so idle clients
// can be swept
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters tracks one token bucket per client IP. Idle entries are
// swept during lookups, at most once per interval, so the map doesn't
// grow unbounded and no goroutine outlives the router.
type ipLimiters struct {
	perSecond int
	burst     int

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func newIPLimiters(perSecond, burst int) *ipLimiters {
	return &ipLimiters{
		perSecond: perSecond,
		burst:     burst,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

// get returns the bucket for the IP, creating it if needed
func (l *ipLimiters) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= limiterIdleAfter {
		l.sweep(now)
	}

	cl, exists := l.clients[ip]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.perSecond), l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweep drops clients idle longer than the interval. Callers hold the lock.
func (l *ipLimiters) sweep(now time.Time) {
	cutoff := now.Add(-limiterIdleAfter)
	for ip, cl := range l.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// RateLimitMiddleware bounds the request rate per client IP. perSecond is
// the sustained rate, burst the bucket size.
func RateLimitMiddleware(perSecond, burst int) gin.HandlerFunc {
	limiters := newIPLimiters(perSecond, burst)

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// LoggerMiddleware logs requests (simple version for now)
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
