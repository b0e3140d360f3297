package models

import (
	"strings"
	"time"
)

const inlineImagePrefix = "data:image/"

// Photo is a row of the photos table. ImageData holds either an inline
// data URL (legacy rows) or an absolute object-store URL, never both.
type Photo struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ImageData  string    `json:"image_data"`
	ImageName  string    `json:"image_name"`
	UploadedBy string    `json:"uploaded_by"`
	UserID     string    `json:"user_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// IsInline reports whether the image bytes are embedded in the row.
func (p *Photo) IsInline() bool {
	return IsInlineImage(p.ImageData)
}

func IsInlineImage(data string) bool {
	return strings.HasPrefix(data, inlineImagePrefix)
}
