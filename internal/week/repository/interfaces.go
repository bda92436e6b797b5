package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	filmdomain "github.com/narwhalmedia/wrongopinions/internal/film/domain"
	musicdomain "github.com/narwhalmedia/wrongopinions/internal/music/domain"
	"github.com/narwhalmedia/wrongopinions/internal/week/domain"
	"github.com/narwhalmedia/wrongopinions/pkg/pagination"
)

// ListFilter narrows a week listing. Nil fields do not filter.
type ListFilter struct {
	Year    *int
	OwnerID *uuid.UUID
}

// Selection is one placement of an entity in a week.
type Selection struct {
	WeekID     uuid.UUID
	Year       int
	WeekNumber int
	Position   int
	AddedAt    time.Time
}

// FilmSelections is a film together with every week it was picked in.
type FilmSelections struct {
	Film       filmdomain.Film
	Selections []Selection
}

// ReleaseSelections is a release together with every week it was picked in.
type ReleaseSelections struct {
	Release    musicdomain.Release
	Selections []Selection
}

// Repository defines the interface for week data access
type Repository interface {
	// Week operations
	Create(ctx context.Context, week *domain.Week) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Week, error)
	GetByKey(ctx context.Context, year, weekNumber int) (*domain.Week, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]domain.Week, int64, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes *string, at time.Time) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Slot operations
	GetFilmSlot(ctx context.Context, weekID uuid.UUID, position int) (*domain.FilmSlot, error)
	GetReleaseSlot(ctx context.Context, weekID uuid.UUID, position int) (*domain.ReleaseSlot, error)
	AddFilmSlot(ctx context.Context, slot *domain.FilmSlot) error
	AddReleaseSlot(ctx context.Context, slot *domain.ReleaseSlot) error
	RemoveFilmSlot(ctx context.Context, weekID uuid.UUID, position int) (bool, error)
	RemoveReleaseSlot(ctx context.Context, weekID uuid.UUID, position int) (bool, error)

	// Selection listings
	ListFilmSelections(ctx context.Context, params pagination.Params) ([]FilmSelections, int64, error)
	ListReleaseSelections(ctx context.Context, params pagination.Params) ([]ReleaseSelections, int64, error)
}
