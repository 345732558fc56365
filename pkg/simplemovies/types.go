package simplemovies

import (
	"time"

	"github.com/google/uuid"
)

// Quality labels conventionally used for video renditions. The VideoKeys map
// accepts free-form labels; these are the ones the upload endpoints default to.
const (
	Quality720p  = "720p"
	Quality1080p = "1080p"
)

// AssetKind identifies which media asset an uploaded file is for. It doubles
// as the object-key namespace prefix.
type AssetKind string

const (
	AssetVideo     AssetKind = "video"
	AssetPoster    AssetKind = "poster"
	AssetThumbnail AssetKind = "thumbnail"
)

func (k AssetKind) IsValid() bool {
	switch k {
	case AssetVideo, AssetPoster, AssetThumbnail:
		return true
	}
	return false
}

// Movie is the persisted catalog record.
//
// VideoKeys, PosterKey and ThumbnailKey hold object-storage keys, not
// resolvable URLs. They are deliberately excluded from JSON marshaling:
// clients only ever see signed URLs (via ResolvedMovie) or nothing. Stale or
// client-supplied URL values are never persisted because no URL field exists
// on the persisted record at all.
type Movie struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Director    string    `json:"director" validate:"required"`
	Language    string    `json:"language,omitempty"`
	Rating      float64   `json:"rating" validate:"min=0,max=10"`
	ReleaseDate time.Time `json:"releaseDate" validate:"required"`
	Genre       []string  `json:"genre" validate:"required,min=1,dive,required"`
	Cast        []string  `json:"cast,omitempty"`
	Tags        []string  `json:"tags,omitempty"`

	// Object-storage keys, keyed by quality label for videos.
	VideoKeys    map[string]string `json:"-"`
	PosterKey    string            `json:"-"`
	ThumbnailKey string            `json:"-"`

	Views      int64     `json:"views"`
	IsFeatured bool      `json:"isFeatured"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ResolvedMovie is a Movie plus signed URLs derived from its stored keys at
// read time. The URL maps use three-valued entries: a signed URL on success,
// an empty string when no key is configured for that slot, and nil (JSON
// null) when signing was attempted and failed. ResolvedMovie values are
// never persisted.
type ResolvedMovie struct {
	Movie
	VideoURLs    map[string]*string `json:"videoUrls"`
	PosterURL    *string            `json:"posterUrl"`
	ThumbnailURL *string            `json:"thumbnailUrl"`
}

// Review is a per-device rating for a movie. At most one review exists per
// (MovieID, DeviceID) pair; PutReview upserts on that pair.
type Review struct {
	ID        uuid.UUID `json:"id"`
	MovieID   uuid.UUID `json:"movieId"`
	DeviceID  string    `json:"deviceId"`
	Nickname  string    `json:"nickname"`
	Rating    float64   `json:"rating" validate:"min=1,max=10"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a free-form message on a movie. DeviceID may hold a network
// origin when the browser supplied no device identifier; ownership checks
// accept either.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	MovieID   uuid.UUID `json:"movieId"`
	DeviceID  string    `json:"deviceId"`
	Nickname  string    `json:"nickname"`
	Content   string    `json:"content" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// KeyFix describes one correction made by the key-repair operation.
type KeyFix struct {
	Field       string `json:"field"` // "videoUrls.720p", "posterKey", ...
	OldKey      string `json:"oldKey"`
	NewKey      string `json:"newKey"`
	Description string `json:"description"`
}

// KeyRepairResult is the outcome of RepairMovieKeys: the corrected record
// plus a description of every fix applied. Fixes is empty when the record
// was already well-formed.
type KeyRepairResult struct {
	Movie *Movie   `json:"movie"`
	Fixes []KeyFix `json:"fixes"`
}

// Principal is the authenticated identity attached to a request. The service
// has a single fixed administrative identity and no user table.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"isAdmin"`
}
