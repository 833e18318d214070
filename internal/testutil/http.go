// Package testutil holds helpers shared by handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitcoach/internal/api"
	"fitcoach/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const Secret = "handler-secret"

// Router returns a test-mode engine with validators installed and an authenticated /api group.
func Router() (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	api.RegisterValidators()
	r := gin.New()
	return r, r.Group("/api", auth.AuthMiddleware(Secret))
}

func Bearer(t *testing.T, id int, role string) string {
	t.Helper()
	token, err := auth.GenerateAccessToken(id, "x@example.com", role, Secret)
	require.NoError(t, err)
	return "Bearer " + token
}

func DoJSON(r http.Handler, method, path, authHeader string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
