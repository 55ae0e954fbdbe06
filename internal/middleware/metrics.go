package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-tuition/pkg/metrics"
)

// Metrics records Prometheus request metrics labelled by route template
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		done := metrics.RequestStarted()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		done(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
