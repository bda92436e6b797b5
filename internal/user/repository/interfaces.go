package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/internal/user/domain"
)

// Repository defines methods for user operations.
type Repository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}
