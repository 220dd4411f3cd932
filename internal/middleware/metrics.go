package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pal-tracker-api/internal/service"
)

// Metrics records one duration sample and one counter hit per request, labelled
// by route template so path parameters do not explode cardinality.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
