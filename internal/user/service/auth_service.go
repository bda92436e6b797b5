package service

import (
	"context"
	"fmt"

	"github.com/narwhalmedia/wrongopinions/internal/user/constants"
	"github.com/narwhalmedia/wrongopinions/internal/user/domain"
	"github.com/narwhalmedia/wrongopinions/internal/user/repository"
	"github.com/narwhalmedia/wrongopinions/pkg/auth"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// AuthService handles authentication operations
type AuthService struct {
	repo       repository.Repository
	jwtManager *auth.JWTManager
	eventBus   interfaces.EventBus
	logger     interfaces.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	repo repository.Repository,
	jwtManager *auth.JWTManager,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
) *AuthService {
	return &AuthService{
		repo:       repo,
		jwtManager: jwtManager,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// Login authenticates by username or email and issues an access token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*auth.Token, error) {
	identifier = domain.NormalizeIdentifier(identifier)

	user, err := s.lookup(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, errors.Unauthorized("Invalid username or password")
	}

	if !user.IsActive {
		return nil, errors.Forbidden("User account is inactive")
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(constants.EventUserLoggedIn, user.ID.String(), map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
	}))

	s.logger.Info("User logged in",
		interfaces.ID("user_id", user.ID),
		interfaces.String("username", user.Username))

	return token, nil
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	user, err = s.repo.GetUserByEmail(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}
	return nil, errors.Unauthorized("Invalid username or password")
}
