package service

import (
	"context"
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/internal/user/constants"
	"github.com/narwhalmedia/wrongopinions/internal/user/domain"
	"github.com/narwhalmedia/wrongopinions/internal/user/repository"
	"github.com/narwhalmedia/wrongopinions/pkg/auth"
	"github.com/narwhalmedia/wrongopinions/pkg/database"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
	"github.com/narwhalmedia/wrongopinions/pkg/events"
	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// UserService handles account registration and lookup.
type UserService struct {
	repo     repository.Repository
	uow      database.UnitOfWork
	eventBus interfaces.EventBus
	validate *validator.Validate
	logger   interfaces.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	repo repository.Repository,
	uow database.UnitOfWork,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
) *UserService {
	return &UserService{
		repo:     repo,
		uow:      uow,
		eventBus: eventBus,
		validate: newValidator(),
		logger:   logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if r != '_' && r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	})
	return v
}

// Register creates an active account. Username and email are stored
// lowercased.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = domain.NormalizeIdentifier(username)
	email = domain.NormalizeIdentifier(email)

	if err := s.validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	user := &domain.User{
		Username: username,
		Email:    email,
		IsActive: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	err := s.uow.Do(ctx, func(ctx context.Context) error {
		exists, err := s.repo.UsernameExists(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return errors.Conflict("Username already registered")
		}

		exists, err = s.repo.EmailExists(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return errors.Conflict("Email already registered")
		}

		return s.repo.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.eventBus.PublishAsync(ctx, events.NewAggregateEvent(constants.EventUserRegistered, user.ID.String(), map[string]interface{}{
		"user_id":  user.ID.String(),
		"username": user.Username,
	}))

	s.logger.Info("User registered",
		interfaces.ID("user_id", user.ID),
		interfaces.String("username", user.Username))

	return user, nil
}

func (s *UserService) validateRegistration(username, email, password string) error {
	if err := s.validate.Var(username, fmt.Sprintf("min=%d,max=%d", constants.MinUsernameLength, constants.MaxUsernameLength)); err != nil {
		return errors.BadRequest(fmt.Sprintf("Username must be between %d and %d characters", constants.MinUsernameLength, constants.MaxUsernameLength))
	}
	if err := s.validate.Var(username, "username"); err != nil {
		return errors.BadRequest("Username can only contain letters, numbers, underscores, and hyphens")
	}
	if err := s.validate.Var(email, fmt.Sprintf("required,email,max=%d", constants.MaxEmailLength)); err != nil {
		return errors.BadRequest("Invalid email address")
	}
	if err := s.validate.Var(password, fmt.Sprintf("min=%d,max=%d", constants.MinPasswordLength, constants.MaxPasswordLength)); err != nil {
		return errors.BadRequest(fmt.Sprintf("Password must be between %d and %d characters", constants.MinPasswordLength, constants.MaxPasswordLength))
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

// LoadPrincipal resolves the account behind an access token.
func (s *UserService) LoadPrincipal(ctx context.Context, id uuid.UUID) (*auth.Principal, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Principal(), nil
}
