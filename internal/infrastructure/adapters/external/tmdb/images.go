package tmdb

import "slices"

// DefaultImageBaseURL is the TMDB image CDN.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

// Image size buckets. An unknown size falls back to the kind's default.
var (
	PosterSizes   = []string{"w92", "w154", "w185", "w342", "w500", "w780", "original"}
	BackdropSizes = []string{"w300", "w780", "w1280", "original"}
	ProfileSizes  = []string{"w45", "w185", "h632", "original"}
)

const (
	DefaultPosterSize   = "w342"
	DefaultBackdropSize = "w780"
	DefaultProfileSize  = "w185"
)

// PosterURL returns the full poster URL, or "" when path is empty.
func (c *Client) PosterURL(path, size string) string {
	return imageURL(c.imageBaseURL, path, size, PosterSizes, DefaultPosterSize)
}

// BackdropURL returns the full backdrop URL, or "" when path is empty.
func (c *Client) BackdropURL(path, size string) string {
	return imageURL(c.imageBaseURL, path, size, BackdropSizes, DefaultBackdropSize)
}

// ProfileURL returns the full profile image URL, or "" when path is empty.
func (c *Client) ProfileURL(path, size string) string {
	return imageURL(c.imageBaseURL, path, size, ProfileSizes, DefaultProfileSize)
}

func imageURL(base, path, size string, allowed []string, fallback string) string {
	if path == "" {
		return ""
	}
	if !slices.Contains(allowed, size) {
		size = fallback
	}
	return base + "/" + size + path
}
