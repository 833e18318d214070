package server

import (
	"time"

	"fitcoach/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs one structured line per request, at warn/error for 4xx/5xx.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(ctxRequestID),
		}
		if id, ok := c.Get("user_id"); ok {
			args = append(args, "user_id", id)
		}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request", args...)
		case status >= 400:
			logger.Warn("HTTP request", args...)
		default:
			logger.Info("HTTP request", args...)
		}
	}
}
