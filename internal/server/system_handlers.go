package server

import (
	"context"
	"net/http"
	"sort"
	"time"

	"fitcoach/internal/api"
	"fitcoach/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readyTimeout = 2 * time.Second

// ReadyResponse lists failed dependency checks by name.
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Failed map[string]string `json:"failed,omitempty"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Readiness check
// @Description  Pings PostgreSQL and Redis.
// @Tags         system
// @Produce      json
// @Success      200 {object} server.ReadyResponse
// @Failure      503 {object} server.ReadyResponse
// @Router       /ready [get]
func Ready(checks map[string]func(context.Context) error) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		failed := map[string]string{}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Warn("readiness check failed", "check", name, "error", err)
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, ReadyResponse{Status: "unavailable", Failed: failed})
			return
		}
		c.JSON(http.StatusOK, ReadyResponse{Status: "ready"})
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics(refresh func(context.Context)) gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		if refresh != nil {
			refresh(c.Request.Context())
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}
