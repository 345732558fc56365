package simplemovies

import (
	"time"

	"github.com/google/uuid"
)

// Request/Response DTOs

// CreateMovieRequest contains parameters for creating a movie. VideoKeys and
// the poster/thumbnail keys are object-storage keys obtained from the upload
// endpoints; they are persisted verbatim and never signed at write time.
type CreateMovieRequest struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Director     string            `json:"director"`
	Language     string            `json:"language"`
	Rating       float64           `json:"rating"`
	ReleaseDate  time.Time         `json:"releaseDate"`
	Genre        []string          `json:"genre"`
	Cast         []string          `json:"cast"`
	Tags         []string          `json:"tags"`
	VideoKeys    map[string]string `json:"videoUrls"`
	PosterKey    string            `json:"posterKey"`
	ThumbnailKey string            `json:"thumbnailKey"`
	IsFeatured   bool              `json:"isFeatured"`
}

// UpdateMovieRequest contains parameters for a partial movie update. Nil
// fields are left unchanged; the merged record is re-validated before it is
// persisted.
type UpdateMovieRequest struct {
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	Director     *string            `json:"director"`
	Language     *string            `json:"language"`
	Rating       *float64           `json:"rating"`
	ReleaseDate  *time.Time         `json:"releaseDate"`
	Genre        *[]string          `json:"genre"`
	Cast         *[]string          `json:"cast"`
	Tags         *[]string          `json:"tags"`
	VideoKeys    *map[string]string `json:"videoUrls"`
	PosterKey    *string            `json:"posterKey"`
	ThumbnailKey *string            `json:"thumbnailKey"`
	IsFeatured   *bool              `json:"isFeatured"`
}

// ListMoviesRequest contains parameters for listing movies. Limit <= 0 means
// no limit; Exclude omits one id from the result (used by "related movies"
// queries).
type ListMoviesRequest struct {
	Limit   int
	Exclude uuid.UUID
}

// UploadAssetRequest contains parameters for uploading a media file. Quality
// only applies to video uploads.
type UploadAssetRequest struct {
	Kind     AssetKind
	FileName string
	MimeType string
	Quality  string
}

// PutReviewRequest contains parameters for creating or replacing the single
// review a device holds for a movie.
type PutReviewRequest struct {
	MovieID  uuid.UUID `json:"movieId"`
	DeviceID string    `json:"deviceId"`
	Nickname string    `json:"nickname"`
	Rating   float64   `json:"rating"`
	Comment  string    `json:"comment"`
}

// AddCommentRequest contains parameters for adding a comment. DeviceID may be
// empty, in which case the caller-provided Origin (request network origin) is
// stored as the owning identifier.
type AddCommentRequest struct {
	MovieID  uuid.UUID `json:"movieId"`
	DeviceID string    `json:"deviceId"`
	Nickname string    `json:"nickname"`
	Content  string    `json:"content"`
	Origin   string    `json:"-"`
}
