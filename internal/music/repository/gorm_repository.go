package repository

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/narwhalmedia/wrongopinions/internal/music/domain"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

var onMBIDConflict = clause.OnConflict{Columns: []clause.Column{{Name: "musicbrainz_id"}}, DoNothing: true}

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetReleaseByMBID(ctx context.Context, mbid string) (*domain.Release, error) {
	var release domain.Release
	if err := database.Conn(ctx, r.db).First(&release, "musicbrainz_id = ?", mbid).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Album not found")
		}
		return nil, fmt.Errorf("failed to get release: %w", err)
	}
	return &release, nil
}

func (r *GormRepository) CreateRelease(ctx context.Context, release *domain.Release) (*domain.Release, bool, error) {
	result := database.Conn(ctx, r.db).Clauses(onMBIDConflict).Create(release)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create release: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return release, true, nil
	}

	stored, err := r.GetReleaseByMBID(ctx, release.MusicBrainzID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

func (r *GormRepository) FindOrCreateArtist(ctx context.Context, artist *domain.Artist) (*domain.Artist, error) {
	db := database.Conn(ctx, r.db)

	var existing domain.Artist
	err := db.First(&existing, "musicbrainz_id = ?", artist.MusicBrainzID).Error
	if err == nil {
		return &existing, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}

	result := db.Clauses(onMBIDConflict).Create(artist)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create artist: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return artist, nil
	}

	if err := db.First(&existing, "musicbrainz_id = ?", artist.MusicBrainzID).Error; err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return &existing, nil
}

func (r *GormRepository) HasCredits(ctx context.Context, releaseID uuid.UUID) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&domain.ReleaseCredit{}).Where("release_id = ?", releaseID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count release credits: %w", err)
	}
	return count > 0, nil
}

func (r *GormRepository) ListCredits(ctx context.Context, releaseID uuid.UUID, limit int) ([]domain.ReleaseCredit, error) {
	var credits []domain.ReleaseCredit
	err := database.Conn(ctx, r.db).
		Preload("Artist").
		Where("release_id = ?", releaseID).
		Order("credit_order").
		Limit(limit).
		Find(&credits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list release credits: %w", err)
	}
	return credits, nil
}

// CreateCredits inserts credits, skipping rows that already exist.
func (r *GormRepository) CreateCredits(ctx context.Context, credits []domain.ReleaseCredit) error {
	if len(credits) == 0 {
		return nil
	}
	err := database.Conn(ctx, r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&credits).Error
	if err != nil {
		return fmt.Errorf("failed to create release credits: %w", err)
	}
	return nil
}
