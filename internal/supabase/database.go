package supabase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"meme-gallery-backend/internal/models"
)

const (
	photosTable   = "photos"
	commentsTable = "comments"
	profilesTable = "profiles"
)

// DatabaseClient talks to the hosted Postgres through PostgREST. Row-level
// permissions are enforced by the remote service, not here.
type DatabaseClient struct {
	client *supabase.Client
}

func NewDatabaseClient(client *supabase.Client) *DatabaseClient {
	return &DatabaseClient{client: client}
}

func (d *DatabaseClient) ListPhotos() ([]models.Photo, error) {
	var photos []models.Photo
	_, err := d.client.From(photosTable).
		Select("*", "", false).
		Order("uploaded_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&photos)
	if err != nil {
		return nil, classify("list photos", err)
	}
	return photos, nil
}

func (d *DatabaseClient) GetPhoto(id string) (*models.Photo, error) {
	var photos []models.Photo
	_, err := d.client.From(photosTable).
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		ExecuteTo(&photos)
	if err != nil {
		return nil, classify("get photo", err)
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("failed to get photo %s: %w", id, models.ErrNotFound)
	}
	return &photos[0], nil
}

func (d *DatabaseClient) InsertPhoto(photo *models.Photo) (*models.Photo, error) {
	var created []models.Photo
	_, err := d.client.From(photosTable).
		Insert(photo, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return nil, classify("insert photo", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("failed to insert photo: no row returned")
	}
	return &created[0], nil
}

func (d *DatabaseClient) DeletePhoto(id, userID string) (int, error) {
	var deleted []models.Photo
	_, err := d.client.From(photosTable).
		Delete("representation", "").
		Eq("id", id).
		Eq("user_id", userID).
		ExecuteTo(&deleted)
	if err != nil {
		return 0, classify("delete photo", err)
	}
	return len(deleted), nil
}

func (d *DatabaseClient) UpdatePhotoImage(id, imageData string) error {
	_, _, err := d.client.From(photosTable).
		Update(map[string]interface{}{"image_data": imageData}, "minimal", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return classify("update photo image", err)
	}
	return nil
}

// CountPhotos issues a head request, used to check that the table exists.
func (d *DatabaseClient) CountPhotos() (int64, error) {
	_, count, err := d.client.From(photosTable).
		Select("id", "exact", true).
		Execute()
	if err != nil {
		return 0, classify("count photos", err)
	}
	return count, nil
}

func (d *DatabaseClient) ListComments(photoID string) ([]models.Comment, error) {
	var comments []models.Comment
	_, err := d.client.From(commentsTable).
		Select("*", "", false).
		Eq("photo_id", photoID).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&comments)
	if err != nil {
		return nil, classify("list comments", err)
	}
	return comments, nil
}

func (d *DatabaseClient) GetComment(id string) (*models.Comment, error) {
	var comments []models.Comment
	_, err := d.client.From(commentsTable).
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		ExecuteTo(&comments)
	if err != nil {
		return nil, classify("get comment", err)
	}
	if len(comments) == 0 {
		return nil, fmt.Errorf("failed to get comment %s: %w", id, models.ErrNotFound)
	}
	return &comments[0], nil
}

func (d *DatabaseClient) InsertComment(comment *models.Comment) (*models.Comment, error) {
	var created []models.Comment
	_, err := d.client.From(commentsTable).
		Insert(comment, false, "", "representation", "").
		ExecuteTo(&created)
	if err != nil {
		return nil, classify("insert comment", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("failed to insert comment: no row returned")
	}
	return &created[0], nil
}

func (d *DatabaseClient) DeleteComment(id, userID string) ([]models.Comment, error) {
	var deleted []models.Comment
	_, err := d.client.From(commentsTable).
		Delete("representation", "").
		Eq("id", id).
		Eq("user_id", userID).
		ExecuteTo(&deleted)
	if err != nil {
		return nil, classify("delete comment", err)
	}
	return deleted, nil
}

// CommentPhotoIDs returns the photo id of every comment on the given photos.
// Ids that are not UUIDs cannot match a row and are left out of the query.
func (d *DatabaseClient) CommentPhotoIDs(photoIDs []string) ([]string, error) {
	photoIDs = validUUIDs(photoIDs)
	if len(photoIDs) == 0 {
		return []string{}, nil
	}

	var rows []struct {
		PhotoID string `json:"photo_id"`
	}
	_, err := d.client.From(commentsTable).
		Select("photo_id", "", false).
		In("photo_id", photoIDs).
		ExecuteTo(&rows)
	if err != nil {
		return nil, classify("count comments", err)
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.PhotoID
	}
	return ids, nil
}

func validUUIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if uuid.Validate(id) == nil {
			valid = append(valid, id)
		}
	}
	return valid
}

func (d *DatabaseClient) GetProfile(id string) (*models.Profile, error) {
	var profiles []models.Profile
	_, err := d.client.From(profilesTable).
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		ExecuteTo(&profiles)
	if err != nil {
		return nil, classify("get profile", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("failed to get profile %s: %w", id, models.ErrNotFound)
	}
	return &profiles[0], nil
}

func (d *DatabaseClient) UpsertProfile(profile *models.Profile) error {
	row := map[string]interface{}{
		"id":         profile.ID,
		"username":   nullable(profile.Username),
		"email":      nullable(profile.Email),
		"first_name": nullable(profile.FirstName),
		"last_name":  nullable(profile.LastName),
		"image_url":  nullable(profile.ImageURL),
		"updated_at": profile.UpdatedAt,
	}
	_, _, err := d.client.From(profilesTable).
		Upsert(row, "id", "minimal", "").
		Execute()
	if err != nil {
		return classify("upsert profile", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// classify maps PostgREST error codes onto the model sentinel errors.
func classify(action string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "42P01"),
		strings.Contains(msg, "PGRST205"),
		strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist"):
		return fmt.Errorf("failed to %s: %w: %w", action, models.ErrRelationMissing, err)
	case strings.Contains(msg, "23503"):
		return fmt.Errorf("failed to %s: %w: %w", action, models.ErrInvalidReference, err)
	case strings.Contains(msg, "22P02"):
		// malformed uuid, nothing can match it
		return fmt.Errorf("failed to %s: %w: %w", action, models.ErrNotFound, err)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
