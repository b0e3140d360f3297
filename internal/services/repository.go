package services

import (
	"context"

	"meme-gallery-backend/internal/models"
)

type PhotoRepository interface {
	ListPhotos() ([]models.Photo, error)
	GetPhoto(id string) (*models.Photo, error)
	InsertPhoto(photo *models.Photo) (*models.Photo, error)
	// DeletePhoto removes the row only when it belongs to userID and
	// returns the number of rows removed.
	DeletePhoto(id, userID string) (int, error)
	UpdatePhotoImage(id, imageData string) error
	CountPhotos() (int64, error)
}

type CommentRepository interface {
	ListComments(photoID string) ([]models.Comment, error)
	GetComment(id string) (*models.Comment, error)
	InsertComment(comment *models.Comment) (*models.Comment, error)
	// DeleteComment returns the rows it removed, scoped by id and owner.
	DeleteComment(id, userID string) ([]models.Comment, error)
	// CommentPhotoIDs returns one photo_id per comment on any of the given photos.
	CommentPhotoIDs(photoIDs []string) ([]string, error)
}

type ProfileRepository interface {
	GetProfile(id string) (*models.Profile, error)
	UpsertProfile(profile *models.Profile) error
}

// ObjectStore is the subset of the object-store backends the services use.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// MediaHosts decides whether a stored URL points into the object store.
type MediaHosts interface {
	Match(rawURL string) bool
	KeyFromURL(rawURL string) (string, bool)
}

// CountCache holds per-photo comment counts. GetCounts returns the cached
// counts plus the current version of every requested id. SetCounts stores a
// count only while its id still has the version read before the store query,
// and Invalidate bumps the version.
type CountCache interface {
	GetCounts(ctx context.Context, photoIDs []string) (map[string]int, map[string]int64, error)
	SetCounts(ctx context.Context, counts map[string]int, versions map[string]int64) error
	Invalidate(ctx context.Context, photoID string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event string, payload map[string]interface{}) error
}
