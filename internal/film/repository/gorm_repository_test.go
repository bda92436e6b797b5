package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/narwhalmedia/wrongopinions/internal/film/domain"
	"github.com/narwhalmedia/wrongopinions/internal/film/repository"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/test/testutil"
)

type GormRepositoryTestSuite struct {
	suite.Suite

	ctx  context.Context
	db   *gorm.DB
	repo *repository.GormRepository
}

func (suite *GormRepositoryTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewTestDB(suite.T())
	suite.repo = repository.NewGormRepository(suite.db)
}

func (suite *GormRepositoryTestSuite) TestCreateFilm() {
	// Arrange
	film := &domain.Film{TMDBID: 550, Title: "Fight Club", CachedAt: time.Now().UTC()}

	// Act
	stored, created, err := suite.repo.CreateFilm(suite.ctx, film)

	// Assert
	suite.Require().NoError(err)
	suite.True(created)
	suite.Equal(film.ID, stored.ID)

	found, err := suite.repo.GetFilmByTMDBID(suite.ctx, 550)
	suite.Require().NoError(err)
	suite.Equal("Fight Club", found.Title)
}

func (suite *GormRepositoryTestSuite) TestCreateFilm_ConcurrentWriterWins() {
	// Arrange
	existing := testutil.CreateTestFilm(suite.T(), suite.db, 550, "Fight Club")

	// Act
	stored, created, err := suite.repo.CreateFilm(suite.ctx, &domain.Film{TMDBID: 550, Title: "Other", CachedAt: time.Now().UTC()})

	// Assert
	suite.Require().NoError(err)
	suite.False(created)
	suite.Equal(existing.ID, stored.ID)
	suite.Equal("Fight Club", stored.Title)
}

func (suite *GormRepositoryTestSuite) TestGetFilmByTMDBID_NotFound() {
	// Act
	_, err := suite.repo.GetFilmByTMDBID(suite.ctx, 1)

	// Assert
	suite.True(errors.IsNotFound(err))
}

func (suite *GormRepositoryTestSuite) TestFindOrCreatePerson() {
	// Arrange
	now := time.Now().UTC()

	// Act
	first, err := suite.repo.FindOrCreatePerson(suite.ctx, &domain.Person{TMDBID: 287, Name: "Brad Pitt", CachedAt: now})
	suite.Require().NoError(err)
	second, err := suite.repo.FindOrCreatePerson(suite.ctx, &domain.Person{TMDBID: 287, Name: "William Bradley Pitt", CachedAt: now})
	suite.Require().NoError(err)

	// Assert
	suite.Equal(first.ID, second.ID)
	suite.Equal("Brad Pitt", second.Name)
}

func (suite *GormRepositoryTestSuite) TestCredits() {
	// Arrange
	film := testutil.CreateTestFilm(suite.T(), suite.db, 550, "Fight Club")
	now := time.Now().UTC()
	norton, err := suite.repo.FindOrCreatePerson(suite.ctx, &domain.Person{TMDBID: 819, Name: "Edward Norton", CachedAt: now})
	suite.Require().NoError(err)
	pitt, err := suite.repo.FindOrCreatePerson(suite.ctx, &domain.Person{TMDBID: 287, Name: "Brad Pitt", CachedAt: now})
	suite.Require().NoError(err)

	has, err := suite.repo.HasCredits(suite.ctx, film.ID)
	suite.Require().NoError(err)
	suite.False(has)

	// Act
	err = suite.repo.CreateCastCredits(suite.ctx, []domain.CastCredit{
		{FilmID: film.ID, PersonID: pitt.ID, Character: "Tyler Durden", Order: 1, CachedAt: now},
		{FilmID: film.ID, PersonID: norton.ID, Character: "The Narrator", Order: 0, CachedAt: now},
	})
	suite.Require().NoError(err)
	err = suite.repo.CreateCrewCredits(suite.ctx, []domain.CrewCredit{
		{FilmID: film.ID, PersonID: norton.ID, Department: "Production", Job: "Producer", Order: 0, CachedAt: now},
	})
	suite.Require().NoError(err)

	// Assert
	has, err = suite.repo.HasCredits(suite.ctx, film.ID)
	suite.Require().NoError(err)
	suite.True(has)

	cast, err := suite.repo.ListCast(suite.ctx, film.ID, 10)
	suite.Require().NoError(err)
	suite.Require().Len(cast, 2)
	suite.Equal("Edward Norton", cast[0].Person.Name)
	suite.Equal("Brad Pitt", cast[1].Person.Name)

	limited, err := suite.repo.ListCast(suite.ctx, film.ID, 1)
	suite.Require().NoError(err)
	suite.Len(limited, 1)

	crew, err := suite.repo.ListCrew(suite.ctx, film.ID, 10)
	suite.Require().NoError(err)
	suite.Require().Len(crew, 1)
	suite.Equal("Producer", crew[0].Job)
}

func (suite *GormRepositoryTestSuite) TestCreateCastCredits_SkipsDuplicates() {
	// Arrange
	film := testutil.CreateTestFilm(suite.T(), suite.db, 550, "Fight Club")
	now := time.Now().UTC()
	pitt, err := suite.repo.FindOrCreatePerson(suite.ctx, &domain.Person{TMDBID: 287, Name: "Brad Pitt", CachedAt: now})
	suite.Require().NoError(err)
	credit := domain.CastCredit{FilmID: film.ID, PersonID: pitt.ID, Character: "Tyler Durden", Order: 0, CachedAt: now}
	suite.Require().NoError(suite.repo.CreateCastCredits(suite.ctx, []domain.CastCredit{credit}))

	// Act
	err = suite.repo.CreateCastCredits(suite.ctx, []domain.CastCredit{{FilmID: film.ID, PersonID: pitt.ID, Order: 0, CachedAt: now}})

	// Assert
	suite.Require().NoError(err)
	cast, err := suite.repo.ListCast(suite.ctx, film.ID, 10)
	suite.Require().NoError(err)
	suite.Len(cast, 1)
}

func (suite *GormRepositoryTestSuite) TestDeletingFilmCascadesCredits() {
	// Arrange
	film := testutil.CreateTestFilm(suite.T(), suite.db, 550, "Fight Club")
	now := time.Now().UTC()
	pitt, err := suite.repo.FindOrCreatePerson(suite.ctx, &domain.Person{TMDBID: 287, Name: "Brad Pitt", CachedAt: now})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.CreateCastCredits(suite.ctx, []domain.CastCredit{
		{FilmID: film.ID, PersonID: pitt.ID, Order: 0, CachedAt: now},
	}))

	// Act
	suite.Require().NoError(suite.db.Delete(&domain.Film{}, "id = ?", film.ID).Error)

	// Assert
	var count int64
	suite.db.Model(&domain.CastCredit{}).Count(&count)
	suite.Zero(count)
}

func TestGormRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(GormRepositoryTestSuite))
}
