package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"meme-gallery-backend/internal/handlers"
	"meme-gallery-backend/internal/models"
)

func newPhotosRouter(env *testEnv, userID string) *gin.Engine {
	h := handlers.NewPhotosHandler(env.photos)
	router := gin.New()
	router.Use(asUser(userID))
	router.GET("/api/photos", h.ListPhotos)
	router.DELETE("/api/delete-photo", h.DeletePhoto)
	return router
}

func TestListPhotos_DisplayURL(t *testing.T) {
	env := newTestEnv()
	seedPhoto(t, env, "p1", "user_a")
	router := newPhotosRouter(env, "")

	req, _ := http.NewRequest("GET", "/api/photos", nil)
	w := serve(t, router, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PhotoListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Photos, 1)
	assert.Equal(t, "p1", resp.Photos[0].ID)
	assert.Equal(t, "/r2-proxy?url=https%3A%2F%2Fpub-test.r2.dev%2Fuser_a%2Fp1.png", resp.Photos[0].DisplayURL)
}

func TestListPhotos_EmptyIsArray(t *testing.T) {
	router := newPhotosRouter(newTestEnv(), "")

	req, _ := http.NewRequest("GET", "/api/photos", nil)
	w := serve(t, router, req)
	assert.JSONEq(t, `{"success":true,"photos":[]}`, w.Body.String())
}

func TestDeletePhoto(t *testing.T) {
	env := newTestEnv()
	seedPhoto(t, env, "p1", "user_a")

	req, _ := http.NewRequest("DELETE", "/api/delete-photo?id=p1", nil)
	w := serve(t, newPhotosRouter(env, "user_b"), req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req, _ = http.NewRequest("DELETE", "/api/delete-photo?id=p1", nil)
	w = serve(t, newPhotosRouter(env, "user_a"), req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"user_a/p1.png"}, env.store.Deleted)

	req, _ = http.NewRequest("DELETE", "/api/delete-photo?id=p1", nil)
	w = serve(t, newPhotosRouter(env, "user_a"), req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req, _ = http.NewRequest("DELETE", "/api/delete-photo", nil)
	w = serve(t, newPhotosRouter(env, "user_a"), req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
