package simplemovies

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// resolveMovie exchanges every stored object key on a movie for a freshly
// signed URL. It never fails: a signer error for one key degrades that key to
// nil (JSON null) and leaves the rest of the record intact, and an empty or
// whitespace-only key resolves to an empty string so "no rendition
// configured" stays distinguishable from "signing failed".
//
// Signer calls are independent and side-effect free, so they fan out in
// parallel, one goroutine per populated key, each writing its own result
// slot.
func (s *service) resolveMovie(ctx context.Context, movie *Movie) *ResolvedMovie {
	type slot struct {
		video   bool
		quality string
		key     string
		url     *string
	}

	slots := make([]*slot, 0, len(movie.VideoKeys)+2)
	for quality, key := range movie.VideoKeys {
		slots = append(slots, &slot{video: true, quality: quality, key: key})
	}
	posterSlot := &slot{key: movie.PosterKey}
	thumbSlot := &slot{key: movie.ThumbnailKey}
	slots = append(slots, posterSlot, thumbSlot)

	var wg sync.WaitGroup
	empty := ""
	for _, sl := range slots {
		if strings.TrimSpace(sl.key) == "" {
			sl.url = &empty
			continue
		}
		wg.Add(1)
		go func(sl *slot) {
			defer wg.Done()
			url, err := s.blobStore.GetDownloadURL(ctx, sl.key)
			if err != nil {
				// Absorbed here; never propagated to the response.
				slog.Warn("failed to sign object key", "movie_id", movie.ID, "key", sl.key, "err", err)
				return
			}
			sl.url = &url
		}(sl)
	}
	wg.Wait()

	resolved := &ResolvedMovie{
		Movie:        *movie,
		VideoURLs:    make(map[string]*string, len(movie.VideoKeys)),
		PosterURL:    posterSlot.url,
		ThumbnailURL: thumbSlot.url,
	}
	for _, sl := range slots {
		if sl.video {
			resolved.VideoURLs[sl.quality] = sl.url
		}
	}
	return resolved
}
