package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/internal/music/domain"
)

// AlbumView is a cached release as embedded in other responses.
type AlbumView struct {
	ID            uuid.UUID `json:"id"`
	MusicBrainzID string    `json:"musicbrainz_id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	ReleaseDate   *string   `json:"release_date"`
	CoverArtURL   *string   `json:"cover_art_url"`
	CachedAt      time.Time `json:"cached_at"`
}

// NewAlbumView renders a cached release.
func NewAlbumView(r *domain.Release) AlbumView {
	return AlbumView{
		ID:            r.ID,
		MusicBrainzID: r.MusicBrainzID,
		Title:         r.Title,
		Artist:        r.Artist,
		ReleaseDate:   optional(domain.FormatReleaseDate(r.ReleaseDate)),
		CoverArtURL:   optional(r.CoverArtURL),
		CachedAt:      r.CachedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
