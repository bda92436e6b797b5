package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/internal/film/domain"
)

// Repository stores cached films, people and credits.
type Repository interface {
	GetFilmByTMDBID(ctx context.Context, tmdbID int) (*domain.Film, error)
	// CreateFilm inserts film unless a row with its TMDB id exists, and
	// returns the stored row. created is false when another writer won.
	CreateFilm(ctx context.Context, film *domain.Film) (stored *domain.Film, created bool, err error)
	FindOrCreatePerson(ctx context.Context, person *domain.Person) (*domain.Person, error)

	HasCredits(ctx context.Context, filmID uuid.UUID) (bool, error)
	ListCast(ctx context.Context, filmID uuid.UUID, limit int) ([]domain.CastCredit, error)
	ListCrew(ctx context.Context, filmID uuid.UUID, limit int) ([]domain.CrewCredit, error)
	CreateCastCredits(ctx context.Context, credits []domain.CastCredit) error
	CreateCrewCredits(ctx context.Context, credits []domain.CrewCredit) error
}
