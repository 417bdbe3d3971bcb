package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

// userUsecase implements the UserUsecase interface.
type userUsecase struct {
	userRepo domain.UserRepository
	logger   *slog.Logger
}

// NewUserUsecase creates a new UserUsecase instance.
func NewUserUsecase(
	userRepo domain.UserRepository,
	logger *slog.Logger,
) domain.UserUsecase {
	return &userUsecase{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register creates a new user account.
func (u *userUsecase) Register(ctx context.Context, in domain.RegisterInput) (*entity.User, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}

	// Reject duplicate usernames up front for a clean error; the repository
	// enforces uniqueness as well.
	existing, err := u.userRepo.GetByUsername(ctx, in.Username)
	if err == nil && existing != nil {
		return nil, domain.NewAlreadyExistsError("User", in.Username)
	}
	if err != nil && !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	passwordHash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := u.userRepo.Create(ctx, &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u.logger.Info("user registered successfully", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies a username/password pair.
func (u *userUsecase) Login(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := u.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewInvalidInputError("invalid username or password")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := verifyPassword(user.PasswordHash, password); err != nil {
		return nil, domain.NewInvalidInputError("invalid username or password")
	}

	// Update last login asynchronously; a failure here must not fail login.
	go func() {
		if err := u.userRepo.UpdateLastLogin(context.Background(), user.Username); err != nil {
			u.logger.Error("failed to update last login", "error", err, "username", user.Username)
		}
	}()

	u.logger.Info("user logged in successfully", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// GetUser fetches a user by username.
func (u *userUsecase) GetUser(ctx context.Context, username string) (*entity.User, error) {
	user, err := u.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ============ helpers ============

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

func validateRegisterInput(in domain.RegisterInput) error {
	if !usernameRegex.MatchString(in.Username) {
		return domain.NewInvalidInputError("username must be 3-50 characters and contain only letters, numbers, and underscores")
	}

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.NewInvalidInputError("invalid email address")
	}

	if strings.TrimSpace(in.FullName) == "" {
		return domain.NewInvalidInputError("full name is required")
	}

	if len(in.Password) < 6 {
		return domain.NewInvalidInputError("password must be at least 6 characters")
	}
	if len(in.Password) > 72 {
		return domain.NewInvalidInputError("password too long (max 72 characters)")
	}

	return nil
}

// hashPassword hashes a password with bcrypt.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword compares a bcrypt hash against a plaintext password.
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
