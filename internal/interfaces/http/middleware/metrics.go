package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, latency and in-flight requests. Paths are
// labelled by route template so that IDs do not explode cardinality.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		active := m.HTTPActiveRequests.WithLabelValues(method)
		active.Inc()
		start := time.Now()

		c.Next()

		active.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(method, path, c.Writer.Status(), time.Since(start))
	}
}
