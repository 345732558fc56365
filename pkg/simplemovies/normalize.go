package simplemovies

import "strings"

// Defaults applied during normalization. "Anonymous" and "English" mirror the
// stored schema defaults.
const (
	DefaultNickname = "Anonymous"
	DefaultLanguage = "English"
)

// normalizeMovie trims text fields and fills schema defaults so validation
// runs against the canonical shape. Empty genre entries are dropped before
// the required-entries rule is checked.
func normalizeMovie(m *Movie) {
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	m.Director = strings.TrimSpace(m.Director)
	m.Language = strings.TrimSpace(m.Language)
	if m.Language == "" {
		m.Language = DefaultLanguage
	}

	m.Genre = trimNonEmpty(m.Genre)
	m.Cast = trimNonEmpty(m.Cast)
	m.Tags = trimNonEmpty(m.Tags)

	if m.VideoKeys == nil {
		m.VideoKeys = map[string]string{}
	}
	m.PosterKey = strings.TrimSpace(m.PosterKey)
	m.ThumbnailKey = strings.TrimSpace(m.ThumbnailKey)
}

func normalizeReview(r *Review) {
	r.Nickname = strings.TrimSpace(r.Nickname)
	if r.Nickname == "" {
		r.Nickname = DefaultNickname
	}
	r.DeviceID = strings.TrimSpace(r.DeviceID)
	r.Comment = strings.TrimSpace(r.Comment)
}

func normalizeComment(c *Comment) {
	c.Nickname = strings.TrimSpace(c.Nickname)
	if c.Nickname == "" {
		c.Nickname = DefaultNickname
	}
	c.DeviceID = strings.TrimSpace(c.DeviceID)
	c.Content = strings.TrimSpace(c.Content)
}

func trimNonEmpty(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
