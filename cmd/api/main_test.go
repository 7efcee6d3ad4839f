package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"attendance/internal/config"
)

func probeHealth(t *testing.T, cfg config.App) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthz", healthHandler(cfg, nil, nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return w
}

func TestHealthzIgnoresRedisWithMemoryQueue(t *testing.T) {
	w := probeHealth(t, config.App{StoreBackend: "memory", QueueBackend: "memory"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealthzDegradedWhenRedisQueueUnreachable(t *testing.T) {
	// A nil Redis client reports unhealthy, matching an unreachable server.
	w := probeHealth(t, config.App{StoreBackend: "memory", QueueBackend: "redis"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestHealthzDegradedWithoutDatabase(t *testing.T) {
	w := probeHealth(t, config.App{StoreBackend: "postgres", QueueBackend: "memory"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"db":false`)
}
