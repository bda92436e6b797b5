package domain

import "time"

// ParseReleaseDate parses a MusicBrainz partial date. "YYYY" maps to January
// 1st, "YYYY-MM" to the first of the month and "YYYY-MM-DD" to that day.
// Anything else, including impossible calendar dates, yields nil.
func ParseReleaseDate(s string) *time.Time {
	var layout string
	switch len(s) {
	case 10:
		layout = "2006-01-02"
	case 7:
		layout = "2006-01"
	case 4:
		layout = "2006"
	default:
		return nil
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return nil
	}
	return &t
}

// FormatReleaseDate renders d as an ISO date, or "" when nil.
func FormatReleaseDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(time.DateOnly)
}
