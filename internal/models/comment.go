package models

import "time"

// MaxCommentLength is counted in characters, not bytes.
const MaxCommentLength = 500

type Comment struct {
	ID          string    `json:"id"`
	PhotoID     string    `json:"photo_id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	CommentText string    `json:"comment_text"`
	CreatedAt   time.Time `json:"created_at"`
}
