package simplemovies

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-movies library.
type Service interface {
	// Catalog operations. Read operations return ResolvedMovie: every stored
	// key is exchanged for a freshly signed URL within the current request.
	CreateMovie(ctx context.Context, req CreateMovieRequest) (*Movie, error)
	UpdateMovie(ctx context.Context, id uuid.UUID, req UpdateMovieRequest) (*Movie, error)
	DeleteMovie(ctx context.Context, id uuid.UUID) error
	GetMovie(ctx context.Context, id uuid.UUID) (*ResolvedMovie, error)
	ListMovies(ctx context.Context, req ListMoviesRequest) ([]*ResolvedMovie, error)

	// RepairMovieKeys corrects known malformations in a movie's stored
	// object keys and persists the result. Idempotent: a second run on the
	// same record reports no fixes.
	RepairMovieKeys(ctx context.Context, id uuid.UUID) (*KeyRepairResult, error)

	// UploadAsset streams a media file to blob storage and returns the
	// object key to persist on a movie record.
	UploadAsset(ctx context.Context, reader io.Reader, req UploadAssetRequest) (string, error)

	// Review operations
	ListReviews(ctx context.Context, movieID uuid.UUID) ([]*Review, error)
	PutReview(ctx context.Context, req PutReviewRequest) (*Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID, deviceID string) error

	// Comment operations
	ListComments(ctx context.Context, movieID uuid.UUID) ([]*Comment, error)
	AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID, deviceID, origin string) error
}
