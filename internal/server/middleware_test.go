package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMetricsMiddleware(t *testing.T) {
	router := newTestRouter(MetricsMiddleware())

	assert.Equal(t, http.StatusOK, get(router, "/test", nil).Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/nope", nil).Code)
}

func TestRequestLoggingMiddleware(t *testing.T) {
	router := newTestRouter(RequestIDMiddleware(), RequestLoggingMiddleware())

	assert.Equal(t, http.StatusOK, get(router, "/test?x=1", nil).Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newTestRouter(RequestIDMiddleware())

	t.Run("minted", func(t *testing.T) {
		w := get(router, "/test", nil)
		_, err := uuid.Parse(w.Header().Get(requestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("propagated", func(t *testing.T) {
		id := uuid.NewString()
		w := get(router, "/test", map[string]string{requestIDHeader: id})
		assert.Equal(t, id, w.Header().Get(requestIDHeader))
	})

	t.Run("garbage replaced", func(t *testing.T) {
		w := get(router, "/test", map[string]string{requestIDHeader: "<script>"})
		assert.NotEqual(t, "<script>", w.Header().Get(requestIDHeader))
		_, err := uuid.Parse(w.Header().Get(requestIDHeader))
		assert.NoError(t, err)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	router := newTestRouter(RateLimitMiddleware(NewRateLimiter(ctx, 1, 3, time.Minute)))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, get(router, "/test", nil).Code, "request %d within burst", i+1)
	}
	w := get(router, "/test", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, 1, 1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(30 * time.Second)
	rl.Allow("10.0.0.2")
	now = now.Add(45 * time.Second)
	rl.evictIdle()

	assert.Equal(t, 1, rl.size())
}

func TestCorsMiddleware(t *testing.T) {
	router := newTestRouter(corsMiddleware())

	w := get(router, "/test", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, requestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
}

func TestCorsMiddleware_OPTIONS(t *testing.T) {
	router := newTestRouter(corsMiddleware())

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
