package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/narwhalmedia/wrongopinions/internal/film/domain"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetFilmByTMDBID(ctx context.Context, tmdbID int) (*domain.Film, error) {
	var film domain.Film
	if err := database.Conn(ctx, r.db).First(&film, "tmdb_id = ?", tmdbID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Movie not found")
		}
		return nil, fmt.Errorf("failed to get film: %w", err)
	}
	return &film, nil
}

func (r *GormRepository) CreateFilm(ctx context.Context, film *domain.Film) (*domain.Film, bool, error) {
	result := database.Conn(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tmdb_id"}}, DoNothing: true}).
		Create(film)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create film: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return film, true, nil
	}

	stored, err := r.GetFilmByTMDBID(ctx, film.TMDBID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

func (r *GormRepository) FindOrCreatePerson(ctx context.Context, person *domain.Person) (*domain.Person, error) {
	db := database.Conn(ctx, r.db)

	var existing domain.Person
	err := db.First(&existing, "tmdb_id = ?", person.TMDBID).Error
	if err == nil {
		return &existing, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}

	result := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tmdb_id"}}, DoNothing: true}).Create(person)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create person: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return person, nil
	}

	if err := db.First(&existing, "tmdb_id = ?", person.TMDBID).Error; err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return &existing, nil
}

func (r *GormRepository) HasCredits(ctx context.Context, filmID uuid.UUID) (bool, error) {
	db := database.Conn(ctx, r.db)

	var cast, crew int64
	if err := db.Model(&domain.CastCredit{}).Where("film_id = ?", filmID).Count(&cast).Error; err != nil {
		return false, fmt.Errorf("failed to count cast: %w", err)
	}
	if cast > 0 {
		return true, nil
	}
	if err := db.Model(&domain.CrewCredit{}).Where("film_id = ?", filmID).Count(&crew).Error; err != nil {
		return false, fmt.Errorf("failed to count crew: %w", err)
	}
	return crew > 0, nil
}

func (r *GormRepository) ListCast(ctx context.Context, filmID uuid.UUID, limit int) ([]domain.CastCredit, error) {
	var credits []domain.CastCredit
	err := database.Conn(ctx, r.db).
		Preload("Person").
		Where("film_id = ?", filmID).
		Order("credit_order").
		Limit(limit).
		Find(&credits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cast: %w", err)
	}
	return credits, nil
}

func (r *GormRepository) ListCrew(ctx context.Context, filmID uuid.UUID, limit int) ([]domain.CrewCredit, error) {
	var credits []domain.CrewCredit
	err := database.Conn(ctx, r.db).
		Preload("Person").
		Where("film_id = ?", filmID).
		Order("credit_order").
		Limit(limit).
		Find(&credits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list crew: %w", err)
	}
	return credits, nil
}

// CreateCastCredits inserts credits, skipping rows that already exist.
func (r *GormRepository) CreateCastCredits(ctx context.Context, credits []domain.CastCredit) error {
	if len(credits) == 0 {
		return nil
	}
	err := database.Conn(ctx, r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&credits).Error
	if err != nil {
		return fmt.Errorf("failed to create cast credits: %w", err)
	}
	return nil
}

// CreateCrewCredits inserts credits, skipping rows that already exist.
func (r *GormRepository) CreateCrewCredits(ctx context.Context, credits []domain.CrewCredit) error {
	if len(credits) == 0 {
		return nil
	}
	err := database.Conn(ctx, r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&credits).Error
	if err != nil {
		return fmt.Errorf("failed to create crew credits: %w", err)
	}
	return nil
}
