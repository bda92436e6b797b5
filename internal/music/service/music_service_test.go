package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/musicbrainz"
	"github.com/narwhalmedia/wrongopinions/internal/music/constants"
	"github.com/narwhalmedia/wrongopinions/internal/music/domain"
	"github.com/narwhalmedia/wrongopinions/internal/music/repository"
	"github.com/narwhalmedia/wrongopinions/internal/music/service"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
	"github.com/narwhalmedia/wrongopinions/test/mocks"
	"github.com/narwhalmedia/wrongopinions/test/testutil"
)

const (
	darkSideMBID = "f5093c06-23e3-404f-aeaa-40f72885ee3a"
	darkSideRGID = "f5093c06-0000-404f-aeaa-40f72885ee3a"
	cover        = "https://coverartarchive.org/release/" + darkSideMBID + "/front"
)

type MusicServiceTestSuite struct {
	suite.Suite

	ctx      context.Context
	db       *gorm.DB
	catalog  *mocks.MockMusicCatalog
	eventBus *events.LocalEventBus
	service  *service.MusicService
}

func (suite *MusicServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewTestDB(suite.T())
	suite.catalog = new(mocks.MockMusicCatalog)
	suite.eventBus = events.NewLocalEventBus(logger.NewNoopLogger())
	suite.service = service.NewMusicService(
		suite.catalog,
		repository.NewGormRepository(suite.db),
		database.NewUnitOfWork(suite.db),
		suite.eventBus,
		logger.NewNoopLogger(),
	)
}

func (suite *MusicServiceTestSuite) TearDownTest() {
	suite.eventBus.Wait()
	suite.catalog.AssertExpectations(suite.T())
}

func darkSide() *musicbrainz.ReleaseDetails {
	return &musicbrainz.ReleaseDetails{
		ID:      darkSideMBID,
		Title:   "The Dark Side of the Moon",
		Status:  "Official",
		Country: "GB",
		Date:    "1973-03",
		ArtistCredit: []musicbrainz.ArtistCredit{
			{Name: "Pink Floyd", JoinPhrase: " & ", Artist: &musicbrainz.Artist{ID: "83D91898-7763-47D7-B03B-B92132375C47", Name: "Pink Floyd", SortName: "Pink Floyd", Type: "Group", Country: "GB"}},
			{Name: "Guest", Artist: nil},
			{Name: "Alan Parsons", Artist: &musicbrainz.Artist{ID: "a2b2c1b1-0000-4000-8000-000000000001", Name: "Alan Parsons", Type: "Person"}},
		},
		ReleaseGroup: &musicbrainz.ReleaseGroup{ID: darkSideRGID},
	}
}

func (suite *MusicServiceTestSuite) expectFetch(details *musicbrainz.ReleaseDetails) {
	suite.catalog.On("GetRelease", mock.Anything, darkSideMBID).Return(details, nil).Once()
	suite.catalog.On("ValidatedCoverArtURL", mock.Anything, darkSideMBID, darkSideRGID).Return(cover).Once()
}

func (suite *MusicServiceTestSuite) TestResolve_MissThenHit() {
	// Arrange
	suite.expectFetch(darkSide())

	// Act
	first, err := suite.service.Resolve(suite.ctx, "F5093C06-23E3-404F-AEAA-40F72885EE3A")
	suite.Require().NoError(err)
	second, err := suite.service.Resolve(suite.ctx, darkSideMBID)
	suite.Require().NoError(err)

	// Assert
	suite.False(first.WasCached)
	suite.Equal(darkSideMBID, first.Release.MusicBrainzID)
	suite.Equal("Pink Floyd", first.Release.Artist)
	suite.Equal(cover, first.Release.CoverArtURL)
	suite.Require().NotNil(first.Release.ReleaseDate)
	suite.Equal("1973-03-01", first.Release.ReleaseDate.Format(time.DateOnly))
	suite.Equal("GB", first.Extras.Country)

	suite.True(second.WasCached)
	suite.Nil(second.Extras)
	suite.Equal(first.Release.ID, second.Release.ID)
}

func (suite *MusicServiceTestSuite) TestResolve_UnknownArtistAndMissingCover() {
	// Arrange
	details := darkSide()
	details.ArtistCredit = nil
	details.Date = "not-a-date"
	suite.catalog.On("GetRelease", mock.Anything, darkSideMBID).Return(details, nil).Once()
	suite.catalog.On("ValidatedCoverArtURL", mock.Anything, darkSideMBID, darkSideRGID).Return("").Once()

	// Act
	resolved, err := suite.service.Resolve(suite.ctx, darkSideMBID)

	// Assert
	suite.Require().NoError(err)
	suite.Equal(constants.UnknownArtist, resolved.Release.Artist)
	suite.Empty(resolved.Release.CoverArtURL)
	suite.Nil(resolved.Release.ReleaseDate)
}

func (suite *MusicServiceTestSuite) TestResolve_InvalidID() {
	// Act
	_, err := suite.service.Resolve(suite.ctx, "not-a-uuid")

	// Assert
	suite.True(errors.IsBadRequest(err))
	suite.catalog.AssertNotCalled(suite.T(), "GetRelease", mock.Anything, mock.Anything)
}

func (suite *MusicServiceTestSuite) TestResolve_NotFound() {
	// Arrange
	suite.catalog.On("GetRelease", mock.Anything, darkSideMBID).Return(nil, errors.NotFound("Album not found")).Once()

	// Act
	_, err := suite.service.Resolve(suite.ctx, darkSideMBID)

	// Assert
	suite.True(errors.IsNotFound(err))
	var count int64
	suite.db.Model(&domain.Release{}).Count(&count)
	suite.Zero(count)
}

func (suite *MusicServiceTestSuite) TestResolveCredits_ReusesFetchedDetails() {
	// Arrange
	suite.expectFetch(darkSide())

	// Act
	first, err := suite.service.ResolveCredits(suite.ctx, darkSideMBID, 10)
	suite.Require().NoError(err)
	second, err := suite.service.ResolveCredits(suite.ctx, darkSideMBID, 10)
	suite.Require().NoError(err)

	// Assert
	suite.False(first.WasCached)
	suite.Require().Len(first.Artists, 2)
	suite.Equal("Pink Floyd", first.Artists[0].Artist.Name)
	suite.Equal("83d91898-7763-47d7-b03b-b92132375c47", first.Artists[0].Artist.MusicBrainzID)
	suite.Equal(" & ", first.Artists[0].JoinPhrase)
	suite.Equal(0, first.Artists[0].Order)
	suite.Equal("Alan Parsons", first.Artists[1].Artist.Name)
	suite.Equal(2, first.Artists[1].Order)

	suite.True(second.WasCached)
	suite.Require().Len(second.Artists, 2)
	suite.Equal(2, second.Artists[1].Order)
	suite.Equal("Group", second.Artists[0].Artist.ArtistType)
}

func (suite *MusicServiceTestSuite) TestResolveCredits_CachedReleaseFetchesCredits() {
	// Arrange
	testutil.CreateTestRelease(suite.T(), suite.db, darkSideMBID, "The Dark Side of the Moon", "Pink Floyd")
	suite.catalog.On("GetRelease", mock.Anything, darkSideMBID).Return(darkSide(), nil).Once()

	// Act
	credits, err := suite.service.ResolveCredits(suite.ctx, darkSideMBID, 1)

	// Assert
	suite.Require().NoError(err)
	suite.False(credits.WasCached)
	suite.Require().Len(credits.Artists, 1)
	suite.Equal("Pink Floyd", credits.Artists[0].Artist.Name)
	suite.catalog.AssertNotCalled(suite.T(), "ValidatedCoverArtURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestMusicServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MusicServiceTestSuite))
}

func TestCanonicalMBID(t *testing.T) {
	got, err := service.CanonicalMBID(" F5093C06-23E3-404F-AEAA-40F72885EE3A ")
	assert.NoError(t, err)
	assert.Equal(t, darkSideMBID, got)

	_, err = service.CanonicalMBID("12345")
	assert.True(t, errors.IsBadRequest(err))
}
