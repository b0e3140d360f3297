package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"meme-gallery-backend/internal/handlers"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", handlers.HealthHandler)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := serve(t, router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestStatusHandler(t *testing.T) {
	env := newTestEnv()
	router := gin.New()
	router.GET("/api/status", handlers.NewStatusHandler(env.photos).GetStatus)

	req, _ := http.NewRequest("GET", "/api/status", nil)
	w := serve(t, router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tableExists":true`)
}
