package domain

import (
	"context"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

// ============ Repository interface ============

// UserRepository is the user data access interface.
type UserRepository interface {
	// Create stores a new user
	Create(ctx context.Context, user *entity.User) (*entity.User, error)

	// GetByUsername looks a user up by username (used for login)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)

	// UpdateLastLogin updates the last login timestamp
	UpdateLastLogin(ctx context.Context, username string) error
}

// ============ Usecase interface ============

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// UserUsecase is the user business logic interface.
type UserUsecase interface {
	// Register creates a new user account
	Register(ctx context.Context, in RegisterInput) (*entity.User, error)

	// Login verifies credentials and returns the user on success
	Login(ctx context.Context, username, password string) (*entity.User, error)

	// GetUser fetches a user by username
	GetUser(ctx context.Context, username string) (*entity.User, error)
}
