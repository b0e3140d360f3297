package events

import (
	"context"
	"time"

	"meme-gallery-backend/internal/models"
)

const (
	PhotoUploaded  = "photo_uploaded"
	PhotoDeleted   = "photo_deleted"
	CommentAdded   = "comment_added"
	CommentDeleted = "comment_deleted"
)

// Message is the JSON body published for every gallery event.
type Message struct {
	Event      string                 `json:"event"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event string, payload map[string]interface{}) error {
	return nil
}

// Event payloads
func PhotoUploadedPayload(photo *models.Photo) map[string]interface{} {
	return map[string]interface{}{
		"photo_id":    photo.ID,
		"user_id":     photo.UserID,
		"title":       photo.Title,
		"image_url":   photo.ImageData,
		"uploaded_by": photo.UploadedBy,
	}
}

func PhotoDeletedPayload(photoID, userID string) map[string]interface{} {
	return map[string]interface{}{
		"photo_id": photoID,
		"user_id":  userID,
	}
}

func CommentAddedPayload(comment *models.Comment) map[string]interface{} {
	return map[string]interface{}{
		"comment_id": comment.ID,
		"photo_id":   comment.PhotoID,
		"user_id":    comment.UserID,
		"user_name":  comment.UserName,
	}
}

func CommentDeletedPayload(commentID, photoID, userID string) map[string]interface{} {
	return map[string]interface{}{
		"comment_id": commentID,
		"photo_id":   photoID,
		"user_id":    userID,
	}
}
