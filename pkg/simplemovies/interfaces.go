package simplemovies

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for object-storage backends. Object keys
// are opaque strings namespaced by asset kind (e.g. "video/...",
// "poster/...").
type BlobStore interface {
	// Upload streams content to the store under the given key.
	Upload(ctx context.Context, objectKey string, reader io.Reader, mimeType string) error

	// GetDownloadURL returns a time-limited signed URL authorizing direct
	// retrieval of the object. The call mutates no stored state; callers in
	// batch paths must absorb its errors per key.
	GetDownloadURL(ctx context.Context, objectKey string) (string, error)

	// Delete removes the object.
	Delete(ctx context.Context, objectKey string) error
}

// Repository defines the interface for movie, review and comment persistence.
// Implementations provide document-level operations only; the service layer
// owns all cross-document policy.
type Repository interface {
	// Movie operations
	CreateMovie(ctx context.Context, movie *Movie) error
	GetMovie(ctx context.Context, id uuid.UUID) (*Movie, error)
	ListMovies(ctx context.Context, req ListMoviesRequest) ([]*Movie, error)
	UpdateMovie(ctx context.Context, movie *Movie) error
	DeleteMovie(ctx context.Context, id uuid.UUID) error
	// SetMovieRating updates only the rating field of a movie.
	SetMovieRating(ctx context.Context, id uuid.UUID, rating float64) error

	// Review operations. UpsertReview keys on (MovieID, DeviceID): an
	// existing review for that pair is replaced in place, keeping its ID and
	// CreatedAt.
	UpsertReview(ctx context.Context, review *Review) (*Review, error)
	GetReview(ctx context.Context, id uuid.UUID) (*Review, error)
	ListReviewsByMovie(ctx context.Context, movieID uuid.UUID) ([]*Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
	// AverageRating returns the mean rating over all reviews of a movie and
	// the number of reviews counted.
	AverageRating(ctx context.Context, movieID uuid.UUID) (float64, int, error)

	// Comment operations
	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListCommentsByMovie(ctx context.Context, movieID uuid.UUID) ([]*Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
}
