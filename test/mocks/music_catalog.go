package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/musicbrainz"
)

// MockMusicCatalog is a mock of the MusicBrainz client.
type MockMusicCatalog struct {
	mock.Mock
}

func (m *MockMusicCatalog) SearchReleases(ctx context.Context, query string, limit, offset int) (*musicbrainz.SearchResponse, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*musicbrainz.SearchResponse), args.Error(1)
}

func (m *MockMusicCatalog) GetRelease(ctx context.Context, id string) (*musicbrainz.ReleaseDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*musicbrainz.ReleaseDetails), args.Error(1)
}

func (m *MockMusicCatalog) ValidatedCoverArtURL(ctx context.Context, releaseID, releaseGroupID string) string {
	args := m.Called(ctx, releaseID, releaseGroupID)
	return args.String(0)
}
