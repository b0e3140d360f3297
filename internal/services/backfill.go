package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/url"
	"strings"

	"meme-gallery-backend/internal/models"
)

const legacyOwner = "legacy"

// BackfillReport counts what a backfill run did.
type BackfillReport struct {
	Scanned  int
	Migrated int
	Skipped  int
	Failed   int
}

func (r BackfillReport) String() string {
	return fmt.Sprintf("scanned=%d migrated=%d skipped=%d failed=%d", r.Scanned, r.Migrated, r.Skipped, r.Failed)
}

// BackfillService moves legacy rows onto the object store.
type BackfillService struct {
	photos PhotoRepository
	store  ObjectStore
}

func NewBackfillService(photos PhotoRepository, store ObjectStore) *BackfillService {
	return &BackfillService{photos: photos, store: store}
}

// MigrateInlineImages uploads every inline data URL image and points the row
// at the stored object. Row failures are counted, not fatal.
func (s *BackfillService) MigrateInlineImages(ctx context.Context) (BackfillReport, error) {
	var report BackfillReport

	photos, err := s.photos.ListPhotos()
	if err != nil {
		return report, fmt.Errorf("failed to list photos: %w", err)
	}

	for _, photo := range photos {
		report.Scanned++
		if !photo.IsInline() {
			report.Skipped++
			continue
		}
		if err := s.migrateOne(ctx, photo); err != nil {
			log.Printf("Failed to migrate photo %s: %v", photo.ID, err)
			report.Failed++
			continue
		}
		report.Migrated++
	}
	return report, nil
}

func (s *BackfillService) migrateOne(ctx context.Context, photo models.Photo) error {
	contentType, data, err := decodeDataURL(photo.ImageData)
	if err != nil {
		return err
	}
	kind, err := sniffRasterImage(contentType, data)
	if err != nil {
		return err
	}

	owner := photo.UserID
	if owner == "" {
		owner = legacyOwner
	}
	key := fmt.Sprintf("%s/%s.%s", owner, photo.ID, fileExtension("", kind, contentType))

	imageURL, err := s.store.Upload(ctx, key, contentType, data)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := s.photos.UpdatePhotoImage(photo.ID, imageURL); err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}
	log.Printf("Migrated photo %s to %s", photo.ID, imageURL)
	return nil
}

// decodeDataURL handles "data:image/<type>;base64,<payload>".
func decodeDataURL(raw string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data url")
	}
	params := strings.Split(header, ";")
	contentType := params[0]
	isBase64 := false
	for _, p := range params[1:] {
		if p == "base64" {
			isBase64 = true
		}
	}
	if !isBase64 {
		return "", nil, fmt.Errorf("data url is not base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("data url has no payload")
	}
	return contentType, data, nil
}

// RewriteImageURLs points rows stored under one of fromHosts at the current
// public base URL, keeping the object key. A doubled scheme is repaired too.
func (s *BackfillService) RewriteImageURLs(fromHosts []string) (BackfillReport, error) {
	var report BackfillReport

	legacy := make(map[string]struct{}, len(fromHosts))
	for _, h := range fromHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			legacy[h] = struct{}{}
		}
	}

	photos, err := s.photos.ListPhotos()
	if err != nil {
		return report, fmt.Errorf("failed to list photos: %w", err)
	}

	for _, photo := range photos {
		report.Scanned++
		if photo.IsInline() {
			report.Skipped++
			continue
		}

		rewritten := s.rewriteURL(photo.ImageData, legacy)
		if rewritten == photo.ImageData {
			report.Skipped++
			continue
		}
		if err := s.photos.UpdatePhotoImage(photo.ID, rewritten); err != nil {
			log.Printf("Failed to rewrite photo %s: %v", photo.ID, err)
			report.Failed++
			continue
		}
		log.Printf("Rewrote photo %s: %s -> %s", photo.ID, photo.ImageData, rewritten)
		report.Migrated++
	}
	return report, nil
}

func (s *BackfillService) rewriteURL(raw string, legacy map[string]struct{}) string {
	fixed := repairScheme(raw)
	u, err := url.Parse(fixed)
	if err != nil || u.Host == "" {
		return fixed
	}
	if _, ok := legacy[strings.ToLower(u.Host)]; !ok {
		return fixed
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return fixed
	}
	return s.store.PublicURL(key)
}

func repairScheme(raw string) string {
	for _, doubled := range []string{"https://https://", "http://https://", "https://http://"} {
		if strings.HasPrefix(raw, doubled) {
			return "https://" + strings.TrimPrefix(raw, doubled)
		}
	}
	return raw
}
