package handler

import (
	"time"

	"github.com/google/uuid"

	filmhandler "github.com/narwhalmedia/wrongopinions/internal/film/handler"
	musichandler "github.com/narwhalmedia/wrongopinions/internal/music/handler"
	"github.com/narwhalmedia/wrongopinions/internal/week/domain"
	"github.com/narwhalmedia/wrongopinions/internal/week/repository"
)

// OwnerView is the public identity of a week owner.
type OwnerView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// MovieSlotView is a film placed in a week.
type MovieSlotView struct {
	Position int                  `json:"position"`
	AddedAt  time.Time            `json:"added_at"`
	Movie    filmhandler.FilmView `json:"movie"`
}

// AlbumSlotView is a release placed in a week.
type AlbumSlotView struct {
	Position int                    `json:"position"`
	AddedAt  time.Time              `json:"added_at"`
	Album    musichandler.AlbumView `json:"album"`
}

// WeekSummary is a week without its selections, as listed.
type WeekSummary struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id"`
	Owner      *OwnerView `json:"owner"`
	Year       int        `json:"year"`
	WeekNumber int        `json:"week_number"`
	Notes      *string    `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// WeekView is a week with its selections.
type WeekView struct {
	WeekSummary
	Movies []MovieSlotView `json:"movies"`
	Albums []AlbumSlotView `json:"albums"`
}

func newWeekSummary(w *domain.Week) WeekSummary {
	summary := WeekSummary{
		ID:         w.ID,
		UserID:     w.OwnerID,
		Year:       w.Year,
		WeekNumber: w.WeekNumber,
		Notes:      w.Notes,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
	if w.Owner != nil {
		summary.Owner = &OwnerView{ID: w.Owner.ID, Username: w.Owner.Username}
	}
	return summary
}

func newWeekView(w *domain.Week, images filmhandler.Images) WeekView {
	view := WeekView{
		WeekSummary: newWeekSummary(w),
		Movies:      make([]MovieSlotView, 0, len(w.Films)),
		Albums:      make([]AlbumSlotView, 0, len(w.Releases)),
	}
	for _, slot := range w.Films {
		if slot.Film == nil {
			continue
		}
		view.Movies = append(view.Movies, MovieSlotView{
			Position: slot.Position,
			AddedAt:  slot.AddedAt,
			Movie:    filmhandler.NewFilmView(slot.Film, images),
		})
	}
	for _, slot := range w.Releases {
		if slot.Release == nil {
			continue
		}
		view.Albums = append(view.Albums, AlbumSlotView{
			Position: slot.Position,
			AddedAt:  slot.AddedAt,
			Album:    musichandler.NewAlbumView(slot.Release),
		})
	}
	return view
}

// SelectionView is one week a film or album was picked in.
type SelectionView struct {
	WeekID     uuid.UUID `json:"week_id"`
	Year       int       `json:"year"`
	WeekNumber int       `json:"week_number"`
	Position   int       `json:"position"`
	AddedAt    time.Time `json:"added_at"`
}

// SelectedMovieView is a film with the weeks it was picked in.
type SelectedMovieView struct {
	filmhandler.FilmView
	Selections []SelectionView `json:"selections"`
}

// SelectedAlbumView is a release with the weeks it was picked in.
type SelectedAlbumView struct {
	musichandler.AlbumView
	Selections []SelectionView `json:"selections"`
}

func newSelectionViews(in []repository.Selection) []SelectionView {
	out := make([]SelectionView, len(in))
	for i, s := range in {
		out[i] = SelectionView{
			WeekID:     s.WeekID,
			Year:       s.Year,
			WeekNumber: s.WeekNumber,
			Position:   s.Position,
			AddedAt:    s.AddedAt,
		}
	}
	return out
}
