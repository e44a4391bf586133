package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/service"
)

// unmatchedRoute labels requests no route matched so scanners cannot inflate
// label cardinality with arbitrary paths.
const unmatchedRoute = "unmatched"

// Metrics observes latency and status per route template. Scrapes of the
// metrics endpoint itself are not recorded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
