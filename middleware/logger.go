package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samu777684/financial360/logging"
	"github.com/samu777684/financial360/monitoring"
)

// Logger registra cada request y alimenta las métricas HTTP.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		monitoring.HttpRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(status)).Inc()
		monitoring.ResponseTimeHistogram.WithLabelValues(
			c.Request.Method, path).Observe(latency.Seconds())

		logging.Sugar().Infow("request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", latency,
			"ip", c.ClientIP(),
		)
	}
}
