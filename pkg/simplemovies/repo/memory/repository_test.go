package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-movies/pkg/simplemovies"
)

func testMovie(createdAt time.Time) *simplemovies.Movie {
	return &simplemovies.Movie{
		ID:          uuid.New(),
		Title:       "Movie",
		Description: "Description",
		Director:    "Director",
		Rating:      5,
		ReleaseDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Genre:       []string{"drama"},
		VideoKeys:   map[string]string{simplemovies.Quality720p: "video/1.mp4"},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestMovieCRUD(t *testing.T) {
	repo := New()
	ctx := context.Background()

	movie := testMovie(time.Now())
	require.NoError(t, repo.CreateMovie(ctx, movie))

	got, err := repo.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, movie.Title, got.Title)

	got.Title = "Changed"
	require.NoError(t, repo.UpdateMovie(ctx, got))

	got, err = repo.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed", got.Title)

	require.NoError(t, repo.DeleteMovie(ctx, movie.ID))
	_, err = repo.GetMovie(ctx, movie.ID)
	assert.ErrorIs(t, err, simplemovies.ErrMovieNotFound)
}

func TestGetMovieReturnsCopy(t *testing.T) {
	repo := New()
	ctx := context.Background()

	movie := testMovie(time.Now())
	require.NoError(t, repo.CreateMovie(ctx, movie))

	got, err := repo.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	got.VideoKeys[simplemovies.Quality720p] = "mutated"
	got.Genre[0] = "mutated"

	fresh, err := repo.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "video/1.mp4", fresh.VideoKeys[simplemovies.Quality720p])
	assert.Equal(t, "drama", fresh.Genre[0])
}

func TestListMoviesOrderLimitExclude(t *testing.T) {
	repo := New()
	ctx := context.Background()

	base := time.Now()
	oldest := testMovie(base.Add(-2 * time.Hour))
	middle := testMovie(base.Add(-1 * time.Hour))
	newest := testMovie(base)
	for _, m := range []*simplemovies.Movie{oldest, middle, newest} {
		require.NoError(t, repo.CreateMovie(ctx, m))
	}

	all, err := repo.ListMovies(ctx, simplemovies.ListMoviesRequest{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newest.ID, all[0].ID, "newest first")
	assert.Equal(t, oldest.ID, all[2].ID)

	limited, err := repo.ListMovies(ctx, simplemovies.ListMoviesRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, newest.ID, limited[0].ID)

	excluded, err := repo.ListMovies(ctx, simplemovies.ListMoviesRequest{Exclude: newest.ID})
	require.NoError(t, err)
	require.Len(t, excluded, 2)
	for _, m := range excluded {
		assert.NotEqual(t, newest.ID, m.ID)
	}
}

func TestSetMovieRating(t *testing.T) {
	repo := New()
	ctx := context.Background()

	movie := testMovie(time.Now())
	require.NoError(t, repo.CreateMovie(ctx, movie))

	require.NoError(t, repo.SetMovieRating(ctx, movie.ID, 8.5))
	got, err := repo.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.5, got.Rating)

	assert.ErrorIs(t, repo.SetMovieRating(ctx, uuid.New(), 1), simplemovies.ErrMovieNotFound)
}

func TestUpsertReview(t *testing.T) {
	repo := New()
	ctx := context.Background()
	movieID := uuid.New()

	first := &simplemovies.Review{
		ID: uuid.New(), MovieID: movieID, DeviceID: "device-a", Rating: 8,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	stored, err := repo.UpsertReview(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)

	// Same (movie, device) pair replaces in place, keeping the original ID.
	second := &simplemovies.Review{
		ID: uuid.New(), MovieID: movieID, DeviceID: "device-a", Rating: 3,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	stored, err = repo.UpsertReview(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, 3.0, stored.Rating)

	reviews, err := repo.ListReviewsByMovie(ctx, movieID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestAverageRating(t *testing.T) {
	repo := New()
	ctx := context.Background()
	movieID := uuid.New()

	avg, count, err := repo.AverageRating(ctx, movieID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, avg)

	for i, rating := range []float64{4, 6, 8} {
		_, err := repo.UpsertReview(ctx, &simplemovies.Review{
			ID: uuid.New(), MovieID: movieID, DeviceID: "device-" + string(rune('a'+i)), Rating: rating,
		})
		require.NoError(t, err)
	}

	avg, count, err = repo.AverageRating(ctx, movieID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 6.0, avg)
}

func TestCommentCRUD(t *testing.T) {
	repo := New()
	ctx := context.Background()
	movieID := uuid.New()

	comment := &simplemovies.Comment{
		ID: uuid.New(), MovieID: movieID, DeviceID: "device-a", Content: "hello",
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, repo.CreateComment(ctx, comment))

	got, err := repo.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)

	comments, err := repo.ListCommentsByMovie(ctx, movieID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	require.NoError(t, repo.DeleteComment(ctx, comment.ID))
	_, err = repo.GetComment(ctx, comment.ID)
	assert.ErrorIs(t, err, simplemovies.ErrCommentNotFound)
}
