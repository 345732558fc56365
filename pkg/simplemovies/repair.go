package simplemovies

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Known key malformations left behind by earlier upload code:
//
//  1. the extension token is present but its separating dot is missing
//     ("video/123mp4" instead of "video/123.mp4"), and
//  2. an uppercase format tag sits immediately before its lowercase
//     extension ("poster/123PNGpng" instead of "poster/123.png").
//
// The pattern lists are fixed to what was actually observed; this is a
// data-hygiene tool, not a general key sanitizer.
var (
	videoExtensions = []string{"mp4", "webm", "mkv"}
	imageExtensions = []string{"png", "jpg", "jpeg", "webp"}
)

// RepairMovieKeys scans a movie's stored object keys for the known
// malformation patterns, rewrites any it finds and persists the corrected
// record. The returned result lists one KeyFix per rewrite; running the
// operation again on a repaired record yields zero fixes.
func (s *service) RepairMovieKeys(ctx context.Context, id uuid.UUID) (*KeyRepairResult, error) {
	movie, err := s.repository.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}

	var fixes []KeyFix

	for quality, key := range movie.VideoKeys {
		fixed, desc := repairKey(key, videoExtensions)
		if fixed != key {
			fixes = append(fixes, KeyFix{
				Field:       "videoUrls." + quality,
				OldKey:      key,
				NewKey:      fixed,
				Description: desc,
			})
			movie.VideoKeys[quality] = fixed
		}
	}

	if fixed, desc := repairKey(movie.PosterKey, imageExtensions); fixed != movie.PosterKey {
		fixes = append(fixes, KeyFix{Field: "posterKey", OldKey: movie.PosterKey, NewKey: fixed, Description: desc})
		movie.PosterKey = fixed
	}
	if fixed, desc := repairKey(movie.ThumbnailKey, imageExtensions); fixed != movie.ThumbnailKey {
		fixes = append(fixes, KeyFix{Field: "thumbnailKey", OldKey: movie.ThumbnailKey, NewKey: fixed, Description: desc})
		movie.ThumbnailKey = fixed
	}

	if len(fixes) > 0 {
		movie.UpdatedAt = time.Now().UTC()
		if err := s.repository.UpdateMovie(ctx, movie); err != nil {
			return nil, fmt.Errorf("failed to persist repaired keys for movie %s: %w", id, err)
		}
		slog.Info("movie keys repaired", "movie_id", id, "fixes", len(fixes))
	}

	return &KeyRepairResult{Movie: movie, Fixes: fixes}, nil
}

// repairKey applies the known malformation rewrites for one key. It returns
// the (possibly unchanged) key and, when a rewrite happened, a human-readable
// description of the fix.
func repairKey(key string, extensions []string) (string, string) {
	if key == "" {
		return key, ""
	}

	// Duplicated-extension artifact first: "PNGpng" also matches the
	// missing-dot check, and this rewrite is the correct one for it.
	for _, ext := range extensions {
		artifact := strings.ToUpper(ext) + ext
		if strings.Contains(key, artifact) {
			fixed := strings.Replace(key, artifact, "."+ext, 1)
			return fixed, fmt.Sprintf("replaced duplicated extension artifact %q with .%s", artifact, ext)
		}
	}

	for _, ext := range extensions {
		if strings.Contains(key, ext) && !strings.Contains(key, "."+ext) {
			fixed := strings.Replace(key, ext, "."+ext, 1)
			return fixed, fmt.Sprintf("inserted missing dot before %s extension", ext)
		}
	}

	return key, ""
}
