package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/metrics"
)

// MetricsMiddleware records request counts and latency per route
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
