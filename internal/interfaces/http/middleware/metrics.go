package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, latency and in-flight requests. Paths are
// the route templates so ids do not explode label cardinality.
func Metrics(m *prometheus.FollowupMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := m.HTTPActiveRequests.WithLabelValues()
		active.Inc()
		defer active.Dec()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
