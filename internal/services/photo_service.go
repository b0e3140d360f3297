package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"meme-gallery-backend/internal/events"
	"meme-gallery-backend/internal/models"
)

const proxyPath = "/r2-proxy"

type PhotoService struct {
	photos    PhotoRepository
	store     ObjectStore
	hosts     MediaHosts
	publisher EventPublisher
}

func NewPhotoService(photos PhotoRepository, store ObjectStore, hosts MediaHosts, publisher EventPublisher) *PhotoService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &PhotoService{
		photos:    photos,
		store:     store,
		hosts:     hosts,
		publisher: publisher,
	}
}

// List returns all photos, newest first. Store failures are logged and
// yield an empty gallery.
func (s *PhotoService) List() []models.Photo {
	photos, err := s.photos.ListPhotos()
	if err != nil {
		if errors.Is(err, ErrRelationMissing) {
			log.Printf("Photos table missing, setup required: %v", err)
		} else {
			log.Printf("Warning: failed to list photos: %v", err)
		}
		return []models.Photo{}
	}
	if photos == nil {
		photos = []models.Photo{}
	}
	return photos
}

// Insert stores a new photo row. ImageData must be an inline image or a
// URL inside the object store.
func (s *PhotoService) Insert(photo *models.Photo) (*models.Photo, error) {
	if !photo.IsInline() && !s.hosts.Match(photo.ImageData) {
		return nil, validationErrorf("image data must be an inline image or an object store URL")
	}
	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}

	created, err := s.photos.InsertPhoto(photo)
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	return created, nil
}

// Delete removes a photo owned by userID. The stored object is removed on a
// best effort basis before the row.
func (s *PhotoService) Delete(ctx context.Context, photoID, userID string) error {
	photo, err := s.photos.GetPhoto(photoID)
	if err != nil {
		return err
	}
	// Legacy rows without an owner cannot be deleted by anyone.
	if photo.UserID == "" || photo.UserID != userID {
		return fmt.Errorf("photo %s belongs to another user: %w", photoID, ErrForbidden)
	}

	if key, ok := s.objectKey(photo.ImageData); ok {
		if err := s.store.Delete(ctx, key); err != nil {
			log.Printf("Warning: failed to delete object %s for photo %s: %v", key, photoID, err)
		}
	}

	deleted, err := s.photos.DeletePhoto(photoID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
	}

	if err := s.publisher.Publish(ctx, events.PhotoDeleted, events.PhotoDeletedPayload(photoID, userID)); err != nil {
		log.Printf("Warning: failed to publish %s: %v", events.PhotoDeleted, err)
	}
	return nil
}

// DisplayURL is the URL a browser should load: object-store URLs go through
// the media proxy, inline images are returned unchanged.
func (s *PhotoService) DisplayURL(imageData string) string {
	if s.hosts.Match(imageData) {
		return proxyPath + "?url=" + url.QueryEscape(imageData)
	}
	return imageData
}

// Status reports whether the store is reachable and the photos table exists.
func (s *PhotoService) Status() models.DatabaseStatusResponse {
	if _, err := s.photos.CountPhotos(); err != nil {
		if errors.Is(err, ErrRelationMissing) {
			return models.DatabaseStatusResponse{
				Connected: true,
				Message:   `connected, but the "photos" table does not exist; run the migrations`,
			}
		}
		return models.DatabaseStatusResponse{
			Message: fmt.Sprintf("connection error: %v", err),
		}
	}
	return models.DatabaseStatusResponse{
		Connected:   true,
		TableExists: true,
		Message:     "database connected and photos table exists",
	}
}

func (s *PhotoService) objectKey(imageData string) (string, bool) {
	if models.IsInlineImage(imageData) || !s.hosts.Match(imageData) {
		return "", false
	}
	return s.hosts.KeyFromURL(imageData)
}
