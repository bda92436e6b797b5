package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/tmdb"
)

// MockFilmCatalog is a mock of the TMDB client.
type MockFilmCatalog struct {
	mock.Mock
}

func (m *MockFilmCatalog) SearchMovies(ctx context.Context, p tmdb.SearchParams) (*tmdb.SearchResponse, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.SearchResponse), args.Error(1)
}

func (m *MockFilmCatalog) GetMovie(ctx context.Context, id int) (*tmdb.MovieDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.MovieDetails), args.Error(1)
}

func (m *MockFilmCatalog) GetMovieCredits(ctx context.Context, id int) (*tmdb.CreditsResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmdb.CreditsResponse), args.Error(1)
}
