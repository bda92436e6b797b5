package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	filmhandler "github.com/narwhalmedia/wrongopinions/internal/film/handler"
	filmrepo "github.com/narwhalmedia/wrongopinions/internal/film/repository"
	filmservice "github.com/narwhalmedia/wrongopinions/internal/film/service"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/musicbrainz"
	"github.com/narwhalmedia/wrongopinions/internal/infrastructure/adapters/external/tmdb"
	musichandler "github.com/narwhalmedia/wrongopinions/internal/music/handler"
	musicrepo "github.com/narwhalmedia/wrongopinions/internal/music/repository"
	musicservice "github.com/narwhalmedia/wrongopinions/internal/music/service"
	"github.com/narwhalmedia/wrongopinions/internal/server"
	userhandler "github.com/narwhalmedia/wrongopinions/internal/user/handler"
	userrepo "github.com/narwhalmedia/wrongopinions/internal/user/repository"
	userservice "github.com/narwhalmedia/wrongopinions/internal/user/service"
	weekhandler "github.com/narwhalmedia/wrongopinions/internal/week/handler"
	weekrepo "github.com/narwhalmedia/wrongopinions/internal/week/repository"
	weekservice "github.com/narwhalmedia/wrongopinions/internal/week/service"
	"github.com/narwhalmedia/wrongopinions/pkg/auth"
	"github.com/narwhalmedia/wrongopinions/pkg/config"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
	"github.com/narwhalmedia/wrongopinions/test/mocks"
	"github.com/narwhalmedia/wrongopinions/test/testutil"
)

const darkSideMBID = "f5093c06-23e3-404f-aeaa-40f72885ee3a"

// RouterTestSuite drives the assembled API the way a client would.
type RouterTestSuite struct {
	suite.Suite

	router       *gin.Engine
	eventBus     *events.LocalEventBus
	filmCatalog  *mocks.MockFilmCatalog
	musicCatalog *mocks.MockMusicCatalog
}

func (suite *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(suite.T())
	log := logger.NewNoopLogger()
	uow := database.NewUnitOfWork(db)
	suite.eventBus = events.NewLocalEventBus(log)
	suite.filmCatalog = new(mocks.MockFilmCatalog)
	suite.musicCatalog = new(mocks.MockMusicCatalog)

	jwt := auth.NewJWTManager("router-test-secret", config.DefaultServiceName, time.Hour)
	users := userrepo.NewGormRepository(db)
	userService := userservice.NewUserService(users, uow, suite.eventBus, log)
	authService := userservice.NewAuthService(users, jwt, suite.eventBus, log)

	images := tmdb.NewClient(config.TMDBConfig{APIKey: "test"}, http.DefaultClient, log)
	coverArt, err := musicbrainz.NewClient(config.MusicBrainzConfig{UserAgent: "wrongopinions-test/1.0"}, http.DefaultClient, log)
	suite.Require().NoError(err)

	films := filmservice.NewFilmService(suite.filmCatalog, filmrepo.NewGormRepository(db), uow, suite.eventBus, log)
	music := musicservice.NewMusicService(suite.musicCatalog, musicrepo.NewGormRepository(db), uow, suite.eventBus, log)
	weeks := weekservice.NewWeekManager(films, music, weekrepo.NewGormRepository(db), uow, suite.eventBus, log)

	suite.router = server.NewRouter(server.Options{
		Version:    "test",
		DB:         db,
		JWT:        jwt,
		Principals: userService,
		Logger:     log,
	}, server.Handlers{
		Users: userhandler.NewHTTPHandler(userService, authService),
		Films: filmhandler.NewHTTPHandler(films, images),
		Music: musichandler.NewHTTPHandler(music, coverArt),
		Weeks: weekhandler.NewHTTPHandler(weeks, images),
	})
}

func (suite *RouterTestSuite) TearDownTest() {
	suite.eventBus.Wait()
	suite.filmCatalog.AssertExpectations(suite.T())
	suite.musicCatalog.AssertExpectations(suite.T())
}

func (suite *RouterTestSuite) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *RouterTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), v))
}

func (suite *RouterTestSuite) signUp(username string) string {
	w := suite.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": testutil.TestPassword,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": testutil.TestPassword,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var token struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	suite.decode(w, &token)
	suite.Require().NotEmpty(token.AccessToken)
	return token.AccessToken
}

func (suite *RouterTestSuite) TestProbes() {
	w := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodGet, "/ready", "", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *RouterTestSuite) TestProtectedRoutesRequireToken() {
	for _, path := range []string{"/api/auth/me", "/api/weeks", "/api/movies/search?query=matrix", "/api/albums/selections"} {
		w := suite.do(http.MethodGet, path, "", nil)
		suite.Equal(http.StatusUnauthorized, w.Code, path)
		suite.NotEmpty(w.Header().Get("WWW-Authenticate"), path)
	}

	w := suite.do(http.MethodGet, "/api/weeks", "not-a-jwt", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *RouterTestSuite) TestMe() {
	token := suite.signUp("alice")

	w := suite.do(http.MethodGet, "/api/auth/me", token, nil)

	suite.Require().Equal(http.StatusOK, w.Code)
	var me struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		IsActive bool   `json:"is_active"`
	}
	suite.decode(w, &me)
	suite.Equal("alice", me.Username)
	suite.Equal("alice@example.com", me.Email)
	suite.True(me.IsActive)
}

func (suite *RouterTestSuite) TestWeekLifecycle() {
	// Arrange
	alice := suite.signUp("alice")
	bob := suite.signUp("bob")

	suite.filmCatalog.On("GetMovie", mock.Anything, 603).Return(&tmdb.MovieDetails{
		ID:          603,
		Title:       "The Matrix",
		ReleaseDate: "1999-03-30",
		PosterPath:  "/matrix.jpg",
	}, nil).Once()
	suite.musicCatalog.On("GetRelease", mock.Anything, darkSideMBID).Return(&musicbrainz.ReleaseDetails{
		ID:           darkSideMBID,
		Title:        "The Dark Side of the Moon",
		Date:         "1973-03-01",
		ArtistCredit: []musicbrainz.ArtistCredit{{Name: "Pink Floyd"}},
	}, nil).Once()
	suite.musicCatalog.On("ValidatedCoverArtURL", mock.Anything, darkSideMBID, "").Return("").Once()

	// Act: alice claims a week and fills two slots
	w := suite.do(http.MethodPost, "/api/weeks", alice, map[string]interface{}{"year": 2025, "week_number": 3})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created weekhandler.WeekView
	suite.decode(w, &created)
	weekPath := fmt.Sprintf("/api/weeks/%s", created.ID)

	w = suite.do(http.MethodPost, weekPath+"/movies", alice, map[string]interface{}{"tmdb_id": 603, "position": 1})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.do(http.MethodPost, weekPath+"/albums", alice, map[string]interface{}{"musicbrainz_id": darkSideMBID, "position": 1})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	// Assert
	w = suite.do(http.MethodGet, weekPath, bob, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var week weekhandler.WeekView
	suite.decode(w, &week)
	suite.Require().NotNil(week.Owner)
	suite.Equal("alice", week.Owner.Username)
	suite.Require().Len(week.Movies, 1)
	suite.Equal("The Matrix", week.Movies[0].Movie.Title)
	suite.Require().Len(week.Albums, 1)
	suite.Equal("Pink Floyd", week.Albums[0].Album.Artist)

	// bob may read but not modify
	w = suite.do(http.MethodDelete, weekPath+"/movies/1", bob, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	// a second claim of the same week conflicts
	w = suite.do(http.MethodPost, "/api/weeks", bob, map[string]interface{}{"year": 2025, "week_number": 3})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.do(http.MethodGet, "/api/movies/selections", bob, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var selections struct {
		Total int64 `json:"total"`
		Items []struct {
			TMDBID     int `json:"tmdb_id"`
			Selections []struct {
				Year       int `json:"year"`
				WeekNumber int `json:"week_number"`
				Position   int `json:"position"`
			} `json:"selections"`
		} `json:"items"`
	}
	suite.decode(w, &selections)
	suite.Equal(int64(1), selections.Total)
	suite.Require().Len(selections.Items, 1)
	suite.Equal(603, selections.Items[0].TMDBID)
	suite.Require().Len(selections.Items[0].Selections, 1)
	suite.Equal(3, selections.Items[0].Selections[0].WeekNumber)

	w = suite.do(http.MethodDelete, weekPath, alice, nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(http.MethodGet, weekPath, alice, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (suite *RouterTestSuite) TestAddSlotOwnershipAndConflict() {
	// Arrange
	alice := suite.signUp("alice")
	bob := suite.signUp("bob")
	suite.filmCatalog.On("GetMovie", mock.Anything, 550).Return(&tmdb.MovieDetails{
		ID:          550,
		Title:       "Fight Club",
		ReleaseDate: "1999-10-15",
	}, nil).Once()

	w := suite.do(http.MethodPost, "/api/weeks", alice, map[string]interface{}{"year": 2025, "week_number": 3})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created weekhandler.WeekView
	suite.decode(w, &created)
	suite.Require().NotNil(created.Owner)
	suite.Equal("alice", created.Owner.Username)
	moviesPath := fmt.Sprintf("/api/weeks/%s/movies", created.ID)
	body := map[string]interface{}{"tmdb_id": 550, "position": 1}

	// Act
	forbidden := suite.do(http.MethodPost, moviesPath, bob, body)
	added := suite.do(http.MethodPost, moviesPath, alice, body)
	occupied := suite.do(http.MethodPost, moviesPath, alice, body)

	// Assert
	suite.Equal(http.StatusForbidden, forbidden.Code)
	suite.Equal(http.StatusCreated, added.Code)
	suite.Equal(http.StatusConflict, occupied.Code)
	suite.Contains(occupied.Body.String(), "Position 1 is already occupied")

	w = suite.do(http.MethodGet, fmt.Sprintf("/api/weeks/%s", created.ID), alice, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var week weekhandler.WeekView
	suite.decode(w, &week)
	suite.Require().Len(week.Movies, 1)
	suite.Equal(1, week.Movies[0].Position)
	suite.Equal("Fight Club", week.Movies[0].Movie.Title)
}
