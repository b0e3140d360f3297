package models

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the row exists but belongs to another user.
	ErrForbidden = errors.New("forbidden")
	// ErrRelationMissing is returned when the table has not been provisioned yet.
	ErrRelationMissing = errors.New("relation does not exist")
	// ErrInvalidReference is a foreign key violation, e.g. a comment on an unknown photo.
	ErrInvalidReference = errors.New("invalid reference")
)
