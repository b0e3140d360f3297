package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/rs/xid"
	"meme-gallery-backend/internal/events"
	"meme-gallery-backend/internal/models"
)

// DefaultMaxUploadBytes is 5 MiB.
const DefaultMaxUploadBytes int64 = 5 << 20

type UploadInput struct {
	UserID      string
	UserName    string
	Title       string
	FileName    string
	ContentType string
	Data        []byte
}

type UploadService struct {
	photos    *PhotoService
	profiles  ProfileRepository
	store     ObjectStore
	publisher EventPublisher
	maxBytes  int64
	now       func() time.Time
}

func NewUploadService(photos *PhotoService, profiles ProfileRepository, store ObjectStore, publisher EventPublisher, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &UploadService{
		photos:    photos,
		profiles:  profiles,
		store:     store,
		publisher: publisher,
		maxBytes:  maxBytes,
		now:       time.Now,
	}
}

// Upload validates the image, stores it and records the photo row. The row
// is only written after the object upload succeeded.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*models.Photo, error) {
	if in.UserID == "" {
		return nil, validationErrorf("user id is required")
	}

	kind, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ext := fileExtension(in.FileName, kind, in.ContentType)
	key := fmt.Sprintf("%s/%d-%s.%s", in.UserID, now.UnixMilli(), xid.New().String(), ext)

	imageURL, err := s.store.Upload(ctx, key, in.ContentType, in.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	photo := &models.Photo{
		Title:      strings.TrimSpace(in.Title),
		ImageData:  imageURL,
		ImageName:  in.FileName,
		UploadedBy: lookupDisplayName(s.profiles, in.UserName, in.UserID),
		UserID:     in.UserID,
		UploadedAt: now.UTC(),
	}

	created, err := s.photos.Insert(photo)
	if err != nil {
		log.Printf("Warning: object %s stored but photo row not saved, orphaned: %v", key, err)
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.PhotoUploaded, events.PhotoUploadedPayload(created)); err != nil {
		log.Printf("Warning: failed to publish %s: %v", events.PhotoUploaded, err)
	}
	return created, nil
}

func (s *UploadService) validate(in UploadInput) (types.Type, error) {
	if !strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		return types.Unknown, validationErrorf("only image files are allowed")
	}
	if len(in.Data) == 0 {
		return types.Unknown, validationErrorf("file is empty")
	}
	if int64(len(in.Data)) > s.maxBytes {
		return types.Unknown, validationErrorf("file is too large, the maximum size is %d bytes", s.maxBytes)
	}
	if strings.TrimSpace(in.Title) == "" {
		return types.Unknown, validationErrorf("title is required")
	}

	return sniffRasterImage(in.ContentType, in.Data)
}

// sniffRasterImage accepts only bytes that filetype recognizes as an image.
// SVG and other markup-based formats can carry script and are refused even
// when declared as image/*.
func sniffRasterImage(contentType string, data []byte) (types.Type, error) {
	declared := strings.ToLower(strings.TrimSpace(contentType))
	if strings.Contains(declared, "svg") || strings.Contains(declared, "xml") {
		return types.Unknown, validationErrorf("%s images are not allowed", declared)
	}

	kind, _ := filetype.Match(data)
	if kind == types.Unknown {
		return types.Unknown, validationErrorf("file content is not a recognized image format")
	}
	if kind.MIME.Type != "image" {
		return types.Unknown, validationErrorf("file content is %s, not an image", kind.MIME.Value)
	}
	return kind, nil
}

// fileExtension picks the key extension from the file name, the sniffed
// type or the declared MIME subtype, in that order.
func fileExtension(fileName string, kind types.Type, contentType string) string {
	if ext := cleanExtension(filepath.Ext(fileName)); ext != "" {
		return ext
	}
	if kind != types.Unknown {
		if ext := cleanExtension(kind.Extension); ext != "" {
			return ext
		}
	}
	subtype := strings.TrimPrefix(strings.ToLower(contentType), "image/")
	if i := strings.IndexAny(subtype, ";+"); i >= 0 {
		subtype = subtype[:i]
	}
	if ext := cleanExtension(subtype); ext != "" {
		return ext
	}
	return "bin"
}

func cleanExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(ext, ".")))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
