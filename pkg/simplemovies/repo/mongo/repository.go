// Package mongo provides a Repository implementation backed by MongoDB, the
// document store the catalog persists to in production.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tendant/simple-movies/pkg/simplemovies"
)

// Repository implements simplemovies.Repository on a mongo database with one
// collection per document type.
type Repository struct {
	movies   *mongo.Collection
	reviews  *mongo.Collection
	comments *mongo.Collection
}

// Connect dials the database, verifies the connection and prepares the
// collection indexes.
func Connect(ctx context.Context, uri, dbName string) (*Repository, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo, err := New(ctx, client.Database(dbName))
	if err != nil {
		return nil, nil, err
	}
	return repo, client, nil
}

// New wraps an existing database handle and ensures the indexes the
// repository relies on: the (movieId, deviceId) uniqueness backing the review
// upsert, and createdAt ordering for comment/review listings.
func New(ctx context.Context, db *mongo.Database) (*Repository, error) {
	r := &Repository{
		movies:   db.Collection("movies"),
		reviews:  db.Collection("reviews"),
		comments: db.Collection("comments"),
	}

	_, err := r.reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "movieId", Value: 1}, {Key: "deviceId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create review index: %w", err)
	}

	for _, coll := range []*mongo.Collection{r.reviews, r.comments} {
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "movieId", Value: 1}, {Key: "createdAt", Value: -1}},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create listing index: %w", err)
		}
	}

	return r, nil
}

// Document shapes. IDs are stored as canonical UUID strings; field names
// match the historical collection layout (notably "videoUrls", which holds
// object-storage keys in the canonical schema).

type movieDoc struct {
	ID           string            `bson:"_id"`
	Title        string            `bson:"title"`
	Description  string            `bson:"description"`
	Director     string            `bson:"director"`
	Language     string            `bson:"language,omitempty"`
	Rating       float64           `bson:"rating"`
	ReleaseDate  time.Time         `bson:"releaseDate"`
	Genre        []string          `bson:"genre"`
	Cast         []string          `bson:"cast,omitempty"`
	Tags         []string          `bson:"tags,omitempty"`
	VideoKeys    map[string]string `bson:"videoUrls,omitempty"`
	PosterKey    string            `bson:"posterKey,omitempty"`
	ThumbnailKey string            `bson:"thumbnailKey,omitempty"`
	Views        int64             `bson:"views"`
	IsFeatured   bool              `bson:"isFeatured"`
	CreatedAt    time.Time         `bson:"createdAt"`
	UpdatedAt    time.Time         `bson:"updatedAt"`
}

type reviewDoc struct {
	ID        string    `bson:"_id"`
	MovieID   string    `bson:"movieId"`
	DeviceID  string    `bson:"deviceId"`
	Nickname  string    `bson:"nickname"`
	Rating    float64   `bson:"rating"`
	Comment   string    `bson:"comment,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type commentDoc struct {
	ID        string    `bson:"_id"`
	MovieID   string    `bson:"movieId"`
	DeviceID  string    `bson:"deviceId"`
	Nickname  string    `bson:"nickname"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Movie operations

func (r *Repository) CreateMovie(ctx context.Context, movie *simplemovies.Movie) error {
	_, err := r.movies.InsertOne(ctx, toMovieDoc(movie))
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}
	return nil
}

func (r *Repository) GetMovie(ctx context.Context, id uuid.UUID) (*simplemovies.Movie, error) {
	var doc movieDoc
	err := r.movies.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, simplemovies.ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movie: %w", err)
	}
	return fromMovieDoc(&doc)
}

func (r *Repository) ListMovies(ctx context.Context, req simplemovies.ListMoviesRequest) ([]*simplemovies.Movie, error) {
	filter := bson.M{}
	if req.Exclude != uuid.Nil {
		filter["_id"] = bson.M{"$ne": req.Exclude.String()}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if req.Limit > 0 {
		opts.SetLimit(int64(req.Limit))
	}

	cursor, err := r.movies.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer cursor.Close(ctx)

	var movies []*simplemovies.Movie
	for cursor.Next(ctx) {
		var doc movieDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode movie: %w", err)
		}
		movie, err := fromMovieDoc(&doc)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("movie cursor failed: %w", err)
	}
	return movies, nil
}

func (r *Repository) UpdateMovie(ctx context.Context, movie *simplemovies.Movie) error {
	result, err := r.movies.ReplaceOne(ctx, bson.M{"_id": movie.ID.String()}, toMovieDoc(movie))
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	if result.MatchedCount == 0 {
		return simplemovies.ErrMovieNotFound
	}
	return nil
}

func (r *Repository) DeleteMovie(ctx context.Context, id uuid.UUID) error {
	result, err := r.movies.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	if result.DeletedCount == 0 {
		return simplemovies.ErrMovieNotFound
	}
	return nil
}

func (r *Repository) SetMovieRating(ctx context.Context, id uuid.UUID, rating float64) error {
	result, err := r.movies.UpdateByID(ctx, id.String(), bson.M{"$set": bson.M{"rating": rating}})
	if err != nil {
		return fmt.Errorf("failed to set movie rating: %w", err)
	}
	if result.MatchedCount == 0 {
		return simplemovies.ErrMovieNotFound
	}
	return nil
}

// Review operations

func (r *Repository) UpsertReview(ctx context.Context, review *simplemovies.Review) (*simplemovies.Review, error) {
	filter := bson.M{"movieId": review.MovieID.String(), "deviceId": review.DeviceID}
	update := bson.M{
		"$set": bson.M{
			"nickname":  review.Nickname,
			"rating":    review.Rating,
			"comment":   review.Comment,
			"updatedAt": review.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":       review.ID.String(),
			"movieId":   review.MovieID.String(),
			"deviceId":  review.DeviceID,
			"createdAt": review.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc reviewDoc
	if err := r.reviews.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to upsert review: %w", err)
	}
	return fromReviewDoc(&doc)
}

func (r *Repository) GetReview(ctx context.Context, id uuid.UUID) (*simplemovies.Review, error) {
	var doc reviewDoc
	err := r.reviews.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, simplemovies.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}
	return fromReviewDoc(&doc)
}

func (r *Repository) ListReviewsByMovie(ctx context.Context, movieID uuid.UUID) ([]*simplemovies.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.reviews.Find(ctx, bson.M{"movieId": movieID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]*simplemovies.Review, 0)
	for cursor.Next(ctx) {
		var doc reviewDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode review: %w", err)
		}
		review, err := fromReviewDoc(&doc)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, cursor.Err()
}

func (r *Repository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	result, err := r.reviews.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if result.DeletedCount == 0 {
		return simplemovies.ErrReviewNotFound
	}
	return nil
}

func (r *Repository) AverageRating(ctx context.Context, movieID uuid.UUID) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"movieId": movieID.String()}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$movieId",
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if !cursor.Next(ctx) {
		return 0, 0, cursor.Err()
	}
	if err := cursor.Decode(&result); err != nil {
		return 0, 0, fmt.Errorf("failed to decode rating aggregate: %w", err)
	}
	return result.Avg, result.Count, nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *simplemovies.Comment) error {
	_, err := r.comments.InsertOne(ctx, toCommentDoc(comment))
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*simplemovies.Comment, error) {
	var doc commentDoc
	err := r.comments.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, simplemovies.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comment: %w", err)
	}
	return fromCommentDoc(&doc)
}

func (r *Repository) ListCommentsByMovie(ctx context.Context, movieID uuid.UUID) ([]*simplemovies.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.comments.Find(ctx, bson.M{"movieId": movieID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := make([]*simplemovies.Comment, 0)
	for cursor.Next(ctx) {
		var doc commentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %w", err)
		}
		comment, err := fromCommentDoc(&doc)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, cursor.Err()
}

func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	result, err := r.comments.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.DeletedCount == 0 {
		return simplemovies.ErrCommentNotFound
	}
	return nil
}

// Mapping helpers

func toMovieDoc(m *simplemovies.Movie) *movieDoc {
	return &movieDoc{
		ID:           m.ID.String(),
		Title:        m.Title,
		Description:  m.Description,
		Director:     m.Director,
		Language:     m.Language,
		Rating:       m.Rating,
		ReleaseDate:  m.ReleaseDate,
		Genre:        m.Genre,
		Cast:         m.Cast,
		Tags:         m.Tags,
		VideoKeys:    m.VideoKeys,
		PosterKey:    m.PosterKey,
		ThumbnailKey: m.ThumbnailKey,
		Views:        m.Views,
		IsFeatured:   m.IsFeatured,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromMovieDoc(doc *movieDoc) (*simplemovies.Movie, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed movie id %q: %w", doc.ID, err)
	}
	return &simplemovies.Movie{
		ID:           id,
		Title:        doc.Title,
		Description:  doc.Description,
		Director:     doc.Director,
		Language:     doc.Language,
		Rating:       doc.Rating,
		ReleaseDate:  doc.ReleaseDate,
		Genre:        doc.Genre,
		Cast:         doc.Cast,
		Tags:         doc.Tags,
		VideoKeys:    doc.VideoKeys,
		PosterKey:    doc.PosterKey,
		ThumbnailKey: doc.ThumbnailKey,
		Views:        doc.Views,
		IsFeatured:   doc.IsFeatured,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func toCommentDoc(c *simplemovies.Comment) *commentDoc {
	return &commentDoc{
		ID:        c.ID.String(),
		MovieID:   c.MovieID.String(),
		DeviceID:  c.DeviceID,
		Nickname:  c.Nickname,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromCommentDoc(doc *commentDoc) (*simplemovies.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed comment id %q: %w", doc.ID, err)
	}
	movieID, err := uuid.Parse(doc.MovieID)
	if err != nil {
		return nil, fmt.Errorf("malformed movie id %q: %w", doc.MovieID, err)
	}
	return &simplemovies.Comment{
		ID:        id,
		MovieID:   movieID,
		DeviceID:  doc.DeviceID,
		Nickname:  doc.Nickname,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func fromReviewDoc(doc *reviewDoc) (*simplemovies.Review, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("malformed review id %q: %w", doc.ID, err)
	}
	movieID, err := uuid.Parse(doc.MovieID)
	if err != nil {
		return nil, fmt.Errorf("malformed movie id %q: %w", doc.MovieID, err)
	}
	return &simplemovies.Review{
		ID:        id,
		MovieID:   movieID,
		DeviceID:  doc.DeviceID,
		Nickname:  doc.Nickname,
		Rating:    doc.Rating,
		Comment:   doc.Comment,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
