package usecase

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

type testUserRepository struct {
	users map[string]*entity.User
}

func newTestUserRepository() *testUserRepository {
	return &testUserRepository{
		users: make(map[string]*entity.User),
	}
}

func (r *testUserRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	stored := *user
	stored.ID = "test-user-id"
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = time.Now()
	r.users[user.Username] = &stored
	return &stored, nil
}

func (r *testUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if user, ok := r.users[username]; ok {
		return user, nil
	}
	return nil, domain.NewNotFoundError("User", username)
}

func (r *testUserRepository) UpdateLastLogin(ctx context.Context, username string) error {
	return nil
}

func validInput() domain.RegisterInput {
	return domain.RegisterInput{
		Username: "testuser",
		Email:    "test@example.com",
		FullName: "Test User",
		Password: "password123",
	}
}

func TestRegister(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name        string
		input       func() domain.RegisterInput
		setupMock   func(*testUserRepository)
		wantErr     bool
		errContains string
	}{
		{
			name:    "successful registration",
			input:   validInput,
			wantErr: false,
		},
		{
			name:  "username already taken",
			input: validInput,
			setupMock: func(m *testUserRepository) {
				m.users["testuser"] = &entity.User{ID: "existing-id", Username: "testuser"}
			},
			wantErr:     true,
			errContains: "already exists",
		},
		{
			name: "username too short",
			input: func() domain.RegisterInput {
				in := validInput()
				in.Username = "ab"
				return in
			},
			wantErr:     true,
			errContains: "3-50 characters",
		},
		{
			name: "username with invalid characters",
			input: func() domain.RegisterInput {
				in := validInput()
				in.Username = "user@name"
				return in
			},
			wantErr:     true,
			errContains: "letters, numbers, and underscores",
		},
		{
			name: "invalid email",
			input: func() domain.RegisterInput {
				in := validInput()
				in.Email = "not-an-email"
				return in
			},
			wantErr:     true,
			errContains: "invalid email",
		},
		{
			name: "missing full name",
			input: func() domain.RegisterInput {
				in := validInput()
				in.FullName = "   "
				return in
			},
			wantErr:     true,
			errContains: "full name",
		},
		{
			name: "password too short",
			input: func() domain.RegisterInput {
				in := validInput()
				in.Password = "12345"
				return in
			},
			wantErr:     true,
			errContains: "at least 6 characters",
		},
		{
			name: "password too long",
			input: func() domain.RegisterInput {
				in := validInput()
				in.Password = strings.Repeat("a", 73)
				return in
			},
			wantErr:     true,
			errContains: "too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := newTestUserRepository()
			if tt.setupMock != nil {
				tt.setupMock(mockRepo)
			}

			uc := NewUserUsecase(mockRepo, logger)
			user, err := uc.Register(context.Background(), tt.input())

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got none")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error = %v, want it to contain %q", err, tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if user == nil {
					t.Fatalf("expected a user, got nil")
				}
				if user.PasswordHash == "password123" {
					t.Error("password stored unhashed")
				}
			}
		})
	}
}

func TestLogin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	testPasswordHash, _ := bcrypt.GenerateFromPassword([]byte("correctpassword"), bcrypt.DefaultCost)

	tests := []struct {
		name        string
		username    string
		password    string
		setupMock   func(*testUserRepository)
		wantErr     bool
		errContains string
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: "correctpassword",
			setupMock: func(m *testUserRepository) {
				m.users["testuser"] = &entity.User{
					ID:           "test-id",
					Username:     "testuser",
					PasswordHash: string(testPasswordHash),
				}
			},
			wantErr: false,
		},
		{
			// The error must not reveal whether the account exists.
			name:        "unknown user",
			username:    "nonexistent",
			password:    "password123",
			wantErr:     true,
			errContains: "invalid username or password",
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			setupMock: func(m *testUserRepository) {
				m.users["testuser"] = &entity.User{
					ID:           "test-id",
					Username:     "testuser",
					PasswordHash: string(testPasswordHash),
				}
			},
			wantErr:     true,
			errContains: "invalid username or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := newTestUserRepository()
			if tt.setupMock != nil {
				tt.setupMock(mockRepo)
			}

			uc := NewUserUsecase(mockRepo, logger)
			user, err := uc.Login(context.Background(), tt.username, tt.password)

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got none")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error = %v, want it to contain %q", err, tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				if user == nil {
					t.Errorf("expected a user, got nil")
				}
			}
		})
	}
}

func TestPasswordSecurity(t *testing.T) {
	t.Run("hash is not the plaintext", func(t *testing.T) {
		password := "securePassword123"
		hash, err := hashPassword(password)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}

		if hash == password {
			t.Error("hash must not equal the plaintext password")
		}

		if len(hash) < 50 {
			t.Error("bcrypt hash unexpectedly short")
		}
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		password := "testPassword"
		hash1, _ := hashPassword(password)
		hash2, _ := hashPassword(password)

		// bcrypt salts every hash
		if hash1 == hash2 {
			t.Error("two hashes of the same password should differ")
		}
	})

	t.Run("verification", func(t *testing.T) {
		password := "correctPassword"
		hash, _ := hashPassword(password)

		if err := verifyPassword(hash, password); err != nil {
			t.Error("correct password failed verification")
		}

		if err := verifyPassword(hash, "wrongPassword"); err == nil {
			t.Error("wrong password passed verification")
		}
	})
}
