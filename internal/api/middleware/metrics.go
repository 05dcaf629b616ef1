package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/metacatalog/catalog/internal/metrics"
)

// Metrics observes every request under its route template, so ids in the
// path do not blow up label cardinality.
func Metrics(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Observe(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
