package domain

import "time"

// ParseReleaseDate parses an ISO date as returned by TMDB. Empty or invalid
// values yield nil.
func ParseReleaseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}
