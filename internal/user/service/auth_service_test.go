package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/narwhalmedia/wrongopinions/internal/user/constants"
	"github.com/narwhalmedia/wrongopinions/internal/user/service"
	"github.com/narwhalmedia/wrongopinions/pkg/auth"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
	"github.com/narwhalmedia/wrongopinions/pkg/logger"
	"github.com/narwhalmedia/wrongopinions/test/mocks"
	"github.com/narwhalmedia/wrongopinions/test/testutil"
)

type AuthServiceTestSuite struct {
	suite.Suite

	ctx         context.Context
	mockRepo    *mocks.MockUserRepository
	authService *service.AuthService
	jwtManager  *auth.JWTManager
	eventBus    *events.LocalEventBus
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockRepo = new(mocks.MockUserRepository)
	suite.eventBus = events.NewLocalEventBus(logger.NewNoopLogger())
	suite.jwtManager = auth.NewJWTManager("test-secret-key-that-is-long-enough!", "test-issuer", 15*time.Minute)

	suite.authService = service.NewAuthService(
		suite.mockRepo,
		suite.jwtManager,
		suite.eventBus,
		logger.NewNoopLogger(),
	)
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	// Arrange
	user := testutil.NewTestUser("testuser")
	suite.mockRepo.On("GetUserByUsername", suite.ctx, "testuser").Return(user, nil)

	received := make(chan interfaces.Event, 1)
	suite.Require().NoError(suite.eventBus.Subscribe(constants.EventUserLoggedIn, &events.HandlerFunc{
		Name: "test",
		Fn: func(_ context.Context, e interfaces.Event) error {
			received <- e
			return nil
		},
	}))

	// Act
	token, err := suite.authService.Login(suite.ctx, "  TestUser ", testutil.TestPassword)

	// Assert
	suite.Require().NoError(err)
	suite.NotEmpty(token.AccessToken)
	suite.Equal("bearer", token.TokenType)
	suite.Equal(900, token.ExpiresIn)

	claims, err := suite.jwtManager.ValidateAccessToken(token.AccessToken)
	suite.Require().NoError(err)
	id, err := claims.UserID()
	suite.Require().NoError(err)
	suite.Equal(user.ID, id)

	select {
	case e := <-received:
		suite.Equal(user.ID.String(), e.AggregateID())
	case <-time.After(time.Second):
		suite.Fail("user.logged_in was not published")
	}
}

func (suite *AuthServiceTestSuite) TestLogin_ByEmail() {
	// Arrange
	user := testutil.NewTestUser("testuser")
	suite.mockRepo.On("GetUserByUsername", suite.ctx, "testuser@example.com").Return(nil, errors.NotFound("User not found"))
	suite.mockRepo.On("GetUserByEmail", suite.ctx, "testuser@example.com").Return(user, nil)

	// Act
	token, err := suite.authService.Login(suite.ctx, "TestUser@Example.com", testutil.TestPassword)

	// Assert
	suite.Require().NoError(err)
	suite.NotEmpty(token.AccessToken)
}

func (suite *AuthServiceTestSuite) TestLogin_InvalidPassword() {
	// Arrange
	user := testutil.NewTestUser("testuser")
	suite.mockRepo.On("GetUserByUsername", suite.ctx, "testuser").Return(user, nil)

	// Act
	token, err := suite.authService.Login(suite.ctx, "testuser", "wrongpassword")

	// Assert
	suite.Require().Error(err)
	suite.Nil(token)
	suite.True(errors.IsUnauthorized(err))
	appErr, _ := errors.As(err)
	suite.Equal("Invalid username or password", appErr.Message)
}

func (suite *AuthServiceTestSuite) TestLogin_UserNotFound() {
	// Arrange
	suite.mockRepo.On("GetUserByUsername", suite.ctx, "nonexistent").Return(nil, errors.NotFound("User not found"))
	suite.mockRepo.On("GetUserByEmail", suite.ctx, "nonexistent").Return(nil, errors.NotFound("User not found"))

	// Act
	token, err := suite.authService.Login(suite.ctx, "nonexistent", "password123")

	// Assert
	suite.Require().Error(err)
	suite.Nil(token)
	suite.True(errors.IsUnauthorized(err))
}

func (suite *AuthServiceTestSuite) TestLogin_InactiveUser() {
	// Arrange
	user := testutil.NewTestUser("testuser")
	user.IsActive = false
	suite.mockRepo.On("GetUserByUsername", suite.ctx, "testuser").Return(user, nil)

	// Act
	token, err := suite.authService.Login(suite.ctx, "testuser", testutil.TestPassword)

	// Assert
	suite.Require().Error(err)
	suite.Nil(token)
	suite.True(errors.IsForbidden(err))
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
