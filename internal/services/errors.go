package services

import (
	"fmt"

	"meme-gallery-backend/internal/models"
)

// Store errors, re-exported so handlers only depend on this package.
var (
	ErrNotFound        = models.ErrNotFound
	ErrForbidden       = models.ErrForbidden
	ErrRelationMissing = models.ErrRelationMissing
)

// ValidationError carries a message that is safe to show to the end user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
