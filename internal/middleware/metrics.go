package middleware

import (
	"strconv"
	"time"

	"planets-be/internal/logger"
	"planets-be/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency per route template and logs
// each completed request.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		logger.FromContext(c.Request.Context()).WithFields(logger.Fields{
			"status":  status,
			"latency": elapsed.String(),
		}).Debug("Request completed")
	}
}
