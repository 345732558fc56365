// Package memory provides an in-memory Repository implementation, used by
// tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-movies/pkg/simplemovies"
)

// Repository implements simplemovies.Repository using in-memory maps.
type Repository struct {
	mu       sync.RWMutex
	movies   map[uuid.UUID]*simplemovies.Movie
	reviews  map[uuid.UUID]*simplemovies.Review
	comments map[uuid.UUID]*simplemovies.Comment
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		movies:   make(map[uuid.UUID]*simplemovies.Movie),
		reviews:  make(map[uuid.UUID]*simplemovies.Review),
		comments: make(map[uuid.UUID]*simplemovies.Comment),
	}
}

// Movie operations

func (r *Repository) CreateMovie(ctx context.Context, movie *simplemovies.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.movies[movie.ID] = copyMovie(movie)
	return nil
}

func (r *Repository) GetMovie(ctx context.Context, id uuid.UUID) (*simplemovies.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movie, exists := r.movies[id]
	if !exists {
		return nil, simplemovies.ErrMovieNotFound
	}
	return copyMovie(movie), nil
}

func (r *Repository) ListMovies(ctx context.Context, req simplemovies.ListMoviesRequest) ([]*simplemovies.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	movies := make([]*simplemovies.Movie, 0, len(r.movies))
	for id, movie := range r.movies {
		if req.Exclude != uuid.Nil && id == req.Exclude {
			continue
		}
		movies = append(movies, copyMovie(movie))
	}

	// Newest first for stable output.
	sort.Slice(movies, func(i, j int) bool {
		return movies[i].CreatedAt.After(movies[j].CreatedAt)
	})

	if req.Limit > 0 && len(movies) > req.Limit {
		movies = movies[:req.Limit]
	}
	return movies, nil
}

func (r *Repository) UpdateMovie(ctx context.Context, movie *simplemovies.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.movies[movie.ID]; !exists {
		return simplemovies.ErrMovieNotFound
	}
	r.movies[movie.ID] = copyMovie(movie)
	return nil
}

func (r *Repository) DeleteMovie(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.movies[id]; !exists {
		return simplemovies.ErrMovieNotFound
	}
	delete(r.movies, id)
	return nil
}

func (r *Repository) SetMovieRating(ctx context.Context, id uuid.UUID, rating float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	movie, exists := r.movies[id]
	if !exists {
		return simplemovies.ErrMovieNotFound
	}
	movie.Rating = rating
	return nil
}

// Review operations

func (r *Repository) UpsertReview(ctx context.Context, review *simplemovies.Review) (*simplemovies.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews {
		if existing.MovieID == review.MovieID && existing.DeviceID == review.DeviceID {
			existing.Nickname = review.Nickname
			existing.Rating = review.Rating
			existing.Comment = review.Comment
			existing.UpdatedAt = review.UpdatedAt
			out := *existing
			return &out, nil
		}
	}

	stored := *review
	r.reviews[review.ID] = &stored
	out := stored
	return &out, nil
}

func (r *Repository) GetReview(ctx context.Context, id uuid.UUID) (*simplemovies.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, exists := r.reviews[id]
	if !exists {
		return nil, simplemovies.ErrReviewNotFound
	}
	out := *review
	return &out, nil
}

func (r *Repository) ListReviewsByMovie(ctx context.Context, movieID uuid.UUID) ([]*simplemovies.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := make([]*simplemovies.Review, 0)
	for _, review := range r.reviews {
		if review.MovieID == movieID {
			out := *review
			reviews = append(reviews, &out)
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

func (r *Repository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reviews[id]; !exists {
		return simplemovies.ErrReviewNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *Repository) AverageRating(ctx context.Context, movieID uuid.UUID) (float64, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum float64
	var count int
	for _, review := range r.reviews {
		if review.MovieID == movieID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *simplemovies.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *comment
	r.comments[comment.ID] = &stored
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*simplemovies.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, exists := r.comments[id]
	if !exists {
		return nil, simplemovies.ErrCommentNotFound
	}
	out := *comment
	return &out, nil
}

func (r *Repository) ListCommentsByMovie(ctx context.Context, movieID uuid.UUID) ([]*simplemovies.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comments := make([]*simplemovies.Comment, 0)
	for _, comment := range r.comments {
		if comment.MovieID == movieID {
			out := *comment
			comments = append(comments, &out)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.comments[id]; !exists {
		return simplemovies.ErrCommentNotFound
	}
	delete(r.comments, id)
	return nil
}

// copyMovie deep-copies a movie so callers cannot mutate stored state through
// the shared map and slices.
func copyMovie(m *simplemovies.Movie) *simplemovies.Movie {
	out := *m
	if m.Genre != nil {
		out.Genre = append([]string(nil), m.Genre...)
	}
	if m.Cast != nil {
		out.Cast = append([]string(nil), m.Cast...)
	}
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	if m.VideoKeys != nil {
		out.VideoKeys = make(map[string]string, len(m.VideoKeys))
		for k, v := range m.VideoKeys {
			out.VideoKeys[k] = v
		}
	}
	return &out
}
