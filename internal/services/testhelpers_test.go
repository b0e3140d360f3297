package services_test

import (
	"time"

	"meme-gallery-backend/internal/models"
	"meme-gallery-backend/internal/objectstore"
	"meme-gallery-backend/internal/services"
	"meme-gallery-backend/internal/services/servicestest"
)

const publicBase = "https://pub-test.r2.dev"

type fixture struct {
	db        *servicestest.Database
	store     *servicestest.ObjectStore
	cache     *servicestest.CountCache
	publisher *servicestest.Publisher
	photos    *services.PhotoService
	uploads   *services.UploadService
	comments  *services.CommentService
}

func newFixture() *fixture {
	f := &fixture{
		db:        servicestest.NewDatabase(),
		store:     servicestest.NewObjectStore(publicBase),
		cache:     servicestest.NewCountCache(),
		publisher: &servicestest.Publisher{},
	}
	hosts := objectstore.NewHostMatcher(publicBase, nil)
	f.photos = services.NewPhotoService(f.db, f.store, hosts, f.publisher)
	f.uploads = services.NewUploadService(f.photos, f.db, f.store, f.publisher, services.DefaultMaxUploadBytes)
	f.comments = services.NewCommentService(f.db, f.db, f.cache, f.publisher)
	return f
}

func (f *fixture) seedPhoto(id, userID, imageData string) models.Photo {
	p := models.Photo{
		ID:         id,
		Title:      "photo " + id,
		ImageData:  imageData,
		UploadedBy: "someone",
		UserID:     userID,
		UploadedAt: time.Now().UTC(),
	}
	_, _ = f.db.InsertPhoto(&p)
	return p
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
