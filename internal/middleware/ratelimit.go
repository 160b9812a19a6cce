package middleware

import (
	"fmt"
	"net/http"
	"time"

	"planets-be/internal/logger"
	"planets-be/internal/metrics"
	"planets-be/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Increments the window counter and starts its expiry on first use.
var windowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RateLimiter allows at most Max requests per Window for each caller.
type RateLimiter struct {
	Client *redis.Client
	Max    int
	Window time.Duration
	// Disabled skips every check, for the test environment.
	Disabled bool
}

// Middleware keys by authenticated user when Auth ran first, otherwise by
// client IP. It fails open when Redis is absent or errors.
func (l *RateLimiter) Middleware(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Disabled || l.Client == nil {
			c.Next()
			return
		}

		id := "ip:" + c.ClientIP()
		if actor, ok := ActorFrom(c); ok {
			id = "user:" + actor.UserID.Hex()
		}
		key := fmt.Sprintf("rl:%s:%s", name, id)

		count, err := windowScript.Run(c.Request.Context(), l.Client, []string{key}, l.Window.Milliseconds()).Int64()
		if err != nil {
			logger.FromContext(c.Request.Context()).WithError(err).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if count > int64(l.Max) {
			metrics.RateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limited",
				Message: "Too many requests, please try again later.",
			})
			return
		}
		c.Next()
	}
}
