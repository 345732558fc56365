package simplemovies

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	validate   *validator.Validate
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		validate: validator.New(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// validateStruct runs tag validation and converts the first violation into a
// domain ValidationError.
func (s *service) validateStruct(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return NewValidationError(fe.Field(), fmt.Sprintf("failed validation rule %q", fe.Tag()))
	}
	return NewValidationError("", err.Error())
}

// Catalog operations

func (s *service) CreateMovie(ctx context.Context, req CreateMovieRequest) (*Movie, error) {
	now := time.Now().UTC()
	movie := &Movie{
		ID:           uuid.New(),
		Title:        req.Title,
		Description:  req.Description,
		Director:     req.Director,
		Language:     req.Language,
		Rating:       req.Rating,
		ReleaseDate:  req.ReleaseDate,
		Genre:        req.Genre,
		Cast:         req.Cast,
		Tags:         req.Tags,
		VideoKeys:    req.VideoKeys,
		PosterKey:    req.PosterKey,
		ThumbnailKey: req.ThumbnailKey,
		IsFeatured:   req.IsFeatured,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	normalizeMovie(movie)
	if err := s.validateStruct(movie); err != nil {
		return nil, err
	}

	if err := s.repository.CreateMovie(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	slog.Info("movie created", "movie_id", movie.ID, "title", movie.Title)
	return movie, nil
}

func (s *service) UpdateMovie(ctx context.Context, id uuid.UUID, req UpdateMovieRequest) (*Movie, error) {
	movie, err := s.repository.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	applyMovieUpdate(movie, req)
	movie.UpdatedAt = time.Now().UTC()

	normalizeMovie(movie)
	if err := s.validateStruct(movie); err != nil {
		return nil, err
	}

	if err := s.repository.UpdateMovie(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to update movie %s: %w", id, err)
	}

	slog.Info("movie updated", "movie_id", movie.ID)
	return movie, nil
}

// applyMovieUpdate merges the non-nil fields of a partial update onto an
// existing record.
func applyMovieUpdate(movie *Movie, req UpdateMovieRequest) {
	if req.Title != nil {
		movie.Title = *req.Title
	}
	if req.Description != nil {
		movie.Description = *req.Description
	}
	if req.Director != nil {
		movie.Director = *req.Director
	}
	if req.Language != nil {
		movie.Language = *req.Language
	}
	if req.Rating != nil {
		movie.Rating = *req.Rating
	}
	if req.ReleaseDate != nil {
		movie.ReleaseDate = *req.ReleaseDate
	}
	if req.Genre != nil {
		movie.Genre = *req.Genre
	}
	if req.Cast != nil {
		movie.Cast = *req.Cast
	}
	if req.Tags != nil {
		movie.Tags = *req.Tags
	}
	if req.VideoKeys != nil {
		movie.VideoKeys = *req.VideoKeys
	}
	if req.PosterKey != nil {
		movie.PosterKey = *req.PosterKey
	}
	if req.ThumbnailKey != nil {
		movie.ThumbnailKey = *req.ThumbnailKey
	}
	if req.IsFeatured != nil {
		movie.IsFeatured = *req.IsFeatured
	}
}

func (s *service) DeleteMovie(ctx context.Context, id uuid.UUID) error {
	// No cascade: reviews and comments of a deleted movie are left in place.
	if err := s.repository.DeleteMovie(ctx, id); err != nil {
		return err
	}
	slog.Info("movie deleted", "movie_id", id)
	return nil
}

func (s *service) GetMovie(ctx context.Context, id uuid.UUID) (*ResolvedMovie, error) {
	movie, err := s.repository.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolveMovie(ctx, movie), nil
}

func (s *service) ListMovies(ctx context.Context, req ListMoviesRequest) ([]*ResolvedMovie, error) {
	movies, err := s.repository.ListMovies(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}

	resolved := make([]*ResolvedMovie, len(movies))
	for i, movie := range movies {
		// Each movie resolves independently; partial signing failures inside
		// one movie never fail the list.
		resolved[i] = s.resolveMovie(ctx, movie)
	}
	return resolved, nil
}

// Uploads

func (s *service) UploadAsset(ctx context.Context, reader io.Reader, req UploadAssetRequest) (string, error) {
	if !req.Kind.IsValid() {
		return "", NewValidationError("kind", fmt.Sprintf("unknown asset kind %q", req.Kind))
	}
	if err := validateAssetMime(req.Kind, req.MimeType); err != nil {
		return "", err
	}

	key := buildObjectKey(req.Kind, req.FileName)
	if err := s.blobStore.Upload(ctx, key, reader, req.MimeType); err != nil {
		return "", &StorageError{Key: key, Op: "upload", Err: err}
	}

	slog.Info("asset uploaded", "key", key, "kind", req.Kind, "mime_type", req.MimeType)
	return key, nil
}

func validateAssetMime(kind AssetKind, mimeType string) error {
	switch kind {
	case AssetVideo:
		if !isMimeClass(mimeType, "video/") {
			return NewValidationError("file", "only video files are allowed")
		}
	case AssetPoster, AssetThumbnail:
		if !isMimeClass(mimeType, "image/") {
			return NewValidationError("file", "only image files are allowed")
		}
	}
	return nil
}

func isMimeClass(mimeType, prefix string) bool {
	return len(mimeType) > len(prefix) && mimeType[:len(prefix)] == prefix
}

// buildObjectKey namespaces keys by asset kind and makes them unique per
// upload. The file extension is kept so resolved URLs stay playable.
func buildObjectKey(kind AssetKind, fileName string) string {
	ext := path.Ext(fileName)
	return fmt.Sprintf("%s/%d-%s%s", kind, time.Now().UnixMilli(), uuid.NewString(), ext)
}

// Reviews

func (s *service) ListReviews(ctx context.Context, movieID uuid.UUID) ([]*Review, error) {
	return s.repository.ListReviewsByMovie(ctx, movieID)
}

func (s *service) PutReview(ctx context.Context, req PutReviewRequest) (*Review, error) {
	if _, err := s.repository.GetMovie(ctx, req.MovieID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	review := &Review{
		ID:        uuid.New(),
		MovieID:   req.MovieID,
		DeviceID:  req.DeviceID,
		Nickname:  req.Nickname,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	normalizeReview(review)
	if err := s.validateStruct(review); err != nil {
		return nil, err
	}
	if review.DeviceID == "" {
		return nil, NewValidationError("deviceId", "device id is required")
	}

	stored, err := s.repository.UpsertReview(ctx, review)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert review: %w", err)
	}

	if err := s.recomputeMovieRating(ctx, req.MovieID); err != nil {
		slog.Error("failed to recompute movie rating", "movie_id", req.MovieID, "err", err)
	}
	return stored, nil
}

func (s *service) DeleteReview(ctx context.Context, id uuid.UUID, deviceID string) error {
	review, err := s.repository.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if review.DeviceID != deviceID {
		return ErrNotOwner
	}

	if err := s.repository.DeleteReview(ctx, id); err != nil {
		return err
	}
	if err := s.recomputeMovieRating(ctx, review.MovieID); err != nil {
		slog.Error("failed to recompute movie rating", "movie_id", review.MovieID, "err", err)
	}
	return nil
}

// recomputeMovieRating makes the stored movie rating the mean of its current
// reviews. With no reviews left the rating keeps its previous value: the
// admin-entered rating acts as a seed until the first review arrives.
func (s *service) recomputeMovieRating(ctx context.Context, movieID uuid.UUID) error {
	avg, count, err := s.repository.AverageRating(ctx, movieID)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	return s.repository.SetMovieRating(ctx, movieID, avg)
}

// Comments

func (s *service) ListComments(ctx context.Context, movieID uuid.UUID) ([]*Comment, error) {
	return s.repository.ListCommentsByMovie(ctx, movieID)
}

func (s *service) AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error) {
	if _, err := s.repository.GetMovie(ctx, req.MovieID); err != nil {
		return nil, err
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		// Browsers without a fingerprint still need an owning identifier so
		// the delete path works for them.
		deviceID = req.Origin
	}

	now := time.Now().UTC()
	comment := &Comment{
		ID:        uuid.New(),
		MovieID:   req.MovieID,
		DeviceID:  deviceID,
		Nickname:  req.Nickname,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	normalizeComment(comment)
	if err := s.validateStruct(comment); err != nil {
		return nil, err
	}

	if err := s.repository.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

func (s *service) DeleteComment(ctx context.Context, id uuid.UUID, deviceID, origin string) error {
	comment, err := s.repository.GetComment(ctx, id)
	if err != nil {
		return err
	}
	// Dual-mode ownership: a stored fingerprint matches the submitted one; a
	// stored network origin matches the request origin.
	if !(deviceID != "" && comment.DeviceID == deviceID) && !(origin != "" && comment.DeviceID == origin) {
		return ErrNotOwner
	}
	return s.repository.DeleteComment(ctx, id)
}
