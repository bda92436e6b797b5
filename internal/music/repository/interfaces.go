package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/internal/music/domain"
)

// Repository stores cached releases, artists and release credits.
type Repository interface {
	GetReleaseByMBID(ctx context.Context, mbid string) (*domain.Release, error)
	// CreateRelease inserts release unless a row with its MusicBrainz id
	// exists, and returns the stored row.
	CreateRelease(ctx context.Context, release *domain.Release) (stored *domain.Release, created bool, err error)
	FindOrCreateArtist(ctx context.Context, artist *domain.Artist) (*domain.Artist, error)

	HasCredits(ctx context.Context, releaseID uuid.UUID) (bool, error)
	ListCredits(ctx context.Context, releaseID uuid.UUID, limit int) ([]domain.ReleaseCredit, error)
	CreateCredits(ctx context.Context, credits []domain.ReleaseCredit) error
}
