package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/internal/film/domain"
)

// Images builds TMDB image URLs.
type Images interface {
	PosterURL(path, size string) string
	BackdropURL(path, size string) string
	ProfileURL(path, size string) string
}

// FilmView is a cached film as embedded in other responses.
type FilmView struct {
	ID            uuid.UUID `json:"id"`
	TMDBID        int       `json:"tmdb_id"`
	Title         string    `json:"title"`
	OriginalTitle *string   `json:"original_title"`
	ReleaseDate   *string   `json:"release_date"`
	PosterURL     *string   `json:"poster_url"`
	Overview      *string   `json:"overview"`
	CachedAt      time.Time `json:"cached_at"`
}

// NewFilmView renders a cached film.
func NewFilmView(f *domain.Film, images Images) FilmView {
	return FilmView{
		ID:            f.ID,
		TMDBID:        f.TMDBID,
		Title:         f.Title,
		OriginalTitle: optional(f.OriginalTitle),
		ReleaseDate:   formatDate(f.ReleaseDate),
		PosterURL:     optional(images.PosterURL(f.PosterPath, "")),
		Overview:      optional(f.Overview),
		CachedAt:      f.CachedAt,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
