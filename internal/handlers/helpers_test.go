package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/middleware"
	"meme-gallery-backend/internal/objectstore"
	"meme-gallery-backend/internal/services"
	"meme-gallery-backend/internal/services/servicestest"
)

const publicBase = "https://pub-test.r2.dev"

type testEnv struct {
	db       *servicestest.Database
	store    *servicestest.ObjectStore
	photos   *services.PhotoService
	uploads  *services.UploadService
	comments *services.CommentService
	profiles *services.ProfileService
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		db:    servicestest.NewDatabase(),
		store: servicestest.NewObjectStore(publicBase),
	}
	hosts := objectstore.NewHostMatcher(publicBase, nil)
	publisher := &servicestest.Publisher{}
	env.photos = services.NewPhotoService(env.db, env.store, hosts, publisher)
	env.uploads = services.NewUploadService(env.photos, env.db, env.store, publisher, services.DefaultMaxUploadBytes)
	env.comments = services.NewCommentService(env.db, env.db, nil, publisher)
	env.profiles = services.NewProfileService(env.db, "")
	return env
}

// asUser stands in for the auth middleware.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	}
}

func serve(t *testing.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
