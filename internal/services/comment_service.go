package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"meme-gallery-backend/internal/events"
	"meme-gallery-backend/internal/models"
)

// MaxBatchCountIDs bounds a single comment-count request.
const MaxBatchCountIDs = 500

type CommentService struct {
	comments  CommentRepository
	profiles  ProfileRepository
	cache     CountCache
	publisher EventPublisher
}

// NewCommentService builds the service. cache may be nil.
func NewCommentService(comments CommentRepository, profiles ProfileRepository, cache CountCache, publisher EventPublisher) *CommentService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &CommentService{
		comments:  comments,
		profiles:  profiles,
		cache:     cache,
		publisher: publisher,
	}
}

// List returns the comments of a photo, oldest first. Failures degrade to an empty list.
func (s *CommentService) List(photoID string) []models.Comment {
	comments, err := s.comments.ListComments(photoID)
	if err != nil {
		log.Printf("Warning: failed to list comments for photo %s: %v", photoID, err)
		return []models.Comment{}
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments
}

func (s *CommentService) Add(ctx context.Context, photoID, userID, userName, text string) (*models.Comment, error) {
	photoID = strings.TrimSpace(photoID)
	if photoID == "" {
		return nil, validationErrorf("photoId is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationErrorf("comment text is required")
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return nil, validationErrorf("comment must be at most %d characters", models.MaxCommentLength)
	}

	comment := &models.Comment{
		ID:          uuid.NewString(),
		PhotoID:     photoID,
		UserID:      userID,
		UserName:    lookupDisplayName(s.profiles, userName, userID),
		CommentText: text,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.comments.InsertComment(comment)
	if err != nil {
		if errors.Is(err, models.ErrInvalidReference) {
			return nil, fmt.Errorf("photo %s: %w", photoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.invalidate(ctx, photoID)
	if err := s.publisher.Publish(ctx, events.CommentAdded, events.CommentAddedPayload(created)); err != nil {
		log.Printf("Warning: failed to publish %s: %v", events.CommentAdded, err)
	}
	return created, nil
}

// Delete removes a comment written by userID. When nothing was removed the
// comment is looked up to tell a foreign comment from a missing one.
func (s *CommentService) Delete(ctx context.Context, commentID, userID string) error {
	if strings.TrimSpace(commentID) == "" {
		return validationErrorf("comment id is required")
	}

	deleted, err := s.comments.DeleteComment(commentID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if len(deleted) == 0 {
		if _, err := s.comments.GetComment(commentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
			}
			return fmt.Errorf("failed to look up comment: %w", err)
		}
		return fmt.Errorf("comment %s belongs to another user: %w", commentID, ErrForbidden)
	}

	for _, c := range deleted {
		s.invalidate(ctx, c.PhotoID)
		payload := events.CommentDeletedPayload(c.ID, c.PhotoID, userID)
		if err := s.publisher.Publish(ctx, events.CommentDeleted, payload); err != nil {
			log.Printf("Warning: failed to publish %s: %v", events.CommentDeleted, err)
		}
	}
	return nil
}

// BatchCounts returns the number of comments for every requested photo,
// zero for photos without comments.
func (s *CommentService) BatchCounts(ctx context.Context, photoIDs []string) (map[string]int, error) {
	if len(photoIDs) == 0 {
		return nil, validationErrorf("photoIds must be a non-empty array")
	}
	if len(photoIDs) > MaxBatchCountIDs {
		return nil, validationErrorf("at most %d photoIds are allowed", MaxBatchCountIDs)
	}

	counts := make(map[string]int, len(photoIDs))
	ids := make([]string, 0, len(photoIDs))
	for _, id := range photoIDs {
		if _, seen := counts[id]; seen {
			continue
		}
		counts[id] = 0
		ids = append(ids, id)
	}

	misses := ids
	var versions map[string]int64
	if s.cache != nil {
		cached, v, err := s.cache.GetCounts(ctx, ids)
		if err != nil {
			log.Printf("Warning: comment count cache read failed: %v", err)
		} else {
			versions = v
			misses = make([]string, 0, len(ids))
			for _, id := range ids {
				if n, ok := cached[id]; ok {
					counts[id] = n
					continue
				}
				misses = append(misses, id)
			}
		}
	}
	if len(misses) == 0 {
		return counts, nil
	}

	rows, err := s.comments.CommentPhotoIDs(misses)
	if errors.Is(err, ErrNotFound) {
		// Ids the store cannot parse have no comments.
		return counts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	fresh := make(map[string]int, len(misses))
	for _, id := range misses {
		fresh[id] = 0
	}
	for _, photoID := range rows {
		if _, ok := fresh[photoID]; ok {
			fresh[photoID]++
		}
	}
	for id, n := range fresh {
		counts[id] = n
	}

	if versions != nil {
		if err := s.cache.SetCounts(ctx, fresh, versions); err != nil {
			log.Printf("Warning: comment count cache write failed: %v", err)
		}
	}
	return counts, nil
}

func (s *CommentService) invalidate(ctx context.Context, photoID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, photoID); err != nil {
		log.Printf("Warning: failed to invalidate comment count for %s: %v", photoID, err)
	}
}
