package simplemovies

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrMovieNotFound indicates a movie was not found
	ErrMovieNotFound = errors.New("movie not found")

	// ErrReviewNotFound indicates a review was not found
	ErrReviewNotFound = errors.New("review not found")

	// ErrCommentNotFound indicates a comment was not found
	ErrCommentNotFound = errors.New("comment not found")

	// ErrNotOwner indicates the requesting device does not own the record
	ErrNotOwner = errors.New("requesting device does not own this record")

	// ErrUploadFailed indicates an upload operation failed
	ErrUploadFailed = errors.New("upload failed")
)

// ValidationError reports a request that is structurally valid but violates
// the domain (missing required field, rating out of range, ...).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StorageError represents an error related to blob storage operations.
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
