// Package servicestest provides in-memory implementations of the service
// dependencies for tests.
package servicestest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"meme-gallery-backend/internal/models"
)

// Database implements the photo, comment and profile repositories.
type Database struct {
	mu       sync.Mutex
	photos   map[string]models.Photo
	comments map[string]models.Comment
	profiles map[string]models.Profile
	// insertion order of comments
	order map[string]int

	// Err, when set, is returned by every call.
	Err error
	// CountQueries counts CommentPhotoIDs calls.
	CountQueries int
}

func NewDatabase() *Database {
	return &Database{
		photos:   make(map[string]models.Photo),
		comments: make(map[string]models.Comment),
		profiles: make(map[string]models.Profile),
		order:    make(map[string]int),
	}
}

func (d *Database) ListPhotos() ([]models.Photo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	photos := make([]models.Photo, 0, len(d.photos))
	for _, p := range d.photos {
		photos = append(photos, p)
	}
	sort.Slice(photos, func(i, j int) bool {
		return photos[i].UploadedAt.After(photos[j].UploadedAt)
	})
	return photos, nil
}

func (d *Database) GetPhoto(id string) (*models.Photo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	p, ok := d.photos[id]
	if !ok {
		return nil, fmt.Errorf("photo %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (d *Database) InsertPhoto(photo *models.Photo) (*models.Photo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	d.photos[photo.ID] = *photo
	created := *photo
	return &created, nil
}

func (d *Database) DeletePhoto(id, userID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return 0, d.Err
	}
	p, ok := d.photos[id]
	if !ok || p.UserID != userID {
		return 0, nil
	}
	delete(d.photos, id)
	for cid, c := range d.comments {
		if c.PhotoID == id {
			delete(d.comments, cid)
		}
	}
	return 1, nil
}

func (d *Database) UpdatePhotoImage(id, imageData string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	p, ok := d.photos[id]
	if !ok {
		return fmt.Errorf("photo %s: %w", id, models.ErrNotFound)
	}
	p.ImageData = imageData
	d.photos[id] = p
	return nil
}

func (d *Database) CountPhotos() (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return 0, d.Err
	}
	return int64(len(d.photos)), nil
}

func (d *Database) ListComments(photoID string) ([]models.Comment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	comments := make([]models.Comment, 0)
	for _, c := range d.comments {
		if c.PhotoID == photoID {
			comments = append(comments, c)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return d.order[comments[i].ID] < d.order[comments[j].ID]
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (d *Database) GetComment(id string) (*models.Comment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	c, ok := d.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, models.ErrNotFound)
	}
	return &c, nil
}

func (d *Database) InsertComment(comment *models.Comment) (*models.Comment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	if _, ok := d.photos[comment.PhotoID]; !ok {
		return nil, fmt.Errorf("insert comment: %w", models.ErrInvalidReference)
	}
	d.comments[comment.ID] = *comment
	d.order[comment.ID] = len(d.order)
	created := *comment
	return &created, nil
}

func (d *Database) DeleteComment(id, userID string) ([]models.Comment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	c, ok := d.comments[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	delete(d.comments, id)
	return []models.Comment{c}, nil
}

func (d *Database) CommentPhotoIDs(photoIDs []string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.CountQueries++
	if d.Err != nil {
		return nil, d.Err
	}
	wanted := make(map[string]struct{}, len(photoIDs))
	for _, id := range photoIDs {
		wanted[id] = struct{}{}
	}
	ids := make([]string, 0)
	for _, c := range d.comments {
		if _, ok := wanted[c.PhotoID]; ok {
			ids = append(ids, c.PhotoID)
		}
	}
	return ids, nil
}

func (d *Database) GetProfile(id string) (*models.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	p, ok := d.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (d *Database) UpsertProfile(profile *models.Profile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.profiles[profile.ID] = *profile
	return nil
}

// ObjectStore keeps uploaded objects in memory under BaseURL.
type ObjectStore struct {
	mu      sync.Mutex
	BaseURL string
	Objects map[string][]byte
	Deleted []string

	UploadErr error
	DeleteErr error
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Objects: make(map[string][]byte),
	}
}

func (s *ObjectStore) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UploadErr != nil {
		return "", s.UploadErr
	}
	s.Objects[key] = append([]byte(nil), data...)
	return s.BaseURL + "/" + key, nil
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, key)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.Objects, key)
	return nil
}

func (s *ObjectStore) PublicURL(key string) string {
	return s.BaseURL + "/" + strings.TrimLeft(key, "/")
}

func (s *ObjectStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.Objects))
	for k := range s.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CountCache is a map-backed comment count cache with per-id versions.
type CountCache struct {
	mu       sync.Mutex
	Counts   map[string]int
	Versions map[string]int64
	Err      error
}

func NewCountCache() *CountCache {
	return &CountCache{Counts: make(map[string]int), Versions: make(map[string]int64)}
}

func (c *CountCache) GetCounts(ctx context.Context, photoIDs []string) (map[string]int, map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, nil, c.Err
	}
	hits := make(map[string]int)
	versions := make(map[string]int64, len(photoIDs))
	for _, id := range photoIDs {
		if n, ok := c.Counts[id]; ok {
			hits[id] = n
		}
		versions[id] = c.Versions[id]
	}
	return hits, versions, nil
}

func (c *CountCache) SetCounts(ctx context.Context, counts map[string]int, versions map[string]int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	for id, n := range counts {
		if v, ok := versions[id]; ok && v == c.Versions[id] {
			c.Counts[id] = n
		}
	}
	return nil
}

func (c *CountCache) Invalidate(ctx context.Context, photoID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Versions[photoID]++
	delete(c.Counts, photoID)
	return c.Err
}

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	Events []string
	Err    error
}

func (p *Publisher) Publish(ctx context.Context, event string, payload map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return p.Err
}

func (p *Publisher) Published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Events...)
}
