package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

const userKeyPrefix = "user:"

// userRecord is the stored form of a user.
type userRecord struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"password_hash"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// userRepository is the badger implementation of UserRepository. Users are
// keyed by username, which is the identity chats are owned by.
type userRepository struct {
	db *badger.DB
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *badger.DB) domain.UserRepository {
	return &userRepository{db: db}
}

func userKey(username string) []byte {
	return []byte(userKeyPrefix + username)
}

// Create stores a new user. The username must be unique.
func (r *userRepository) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	now := time.Now().UTC()
	rec := userRecord{
		ID:           uuid.New().String(),
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		PasswordHash: user.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	value, err := sonic.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}

	key := userKey(user.Username)
	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return domain.NewAlreadyExistsError("User", user.Username)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, value)
	})
	if err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return toUserEntity(rec), nil
}

// GetByUsername looks a user up by username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return sonic.Unmarshal(value, &rec)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.NewNotFoundError("User", username)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return toUserEntity(rec), nil
}

// UpdateLastLogin updates the last login timestamp.
func (r *userRepository) UpdateLastLogin(ctx context.Context, username string) error {
	key := userKey(username)
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		var rec userRecord
		if err := item.Value(func(value []byte) error {
			return sonic.Unmarshal(value, &rec)
		}); err != nil {
			return err
		}

		now := time.Now().UTC()
		rec.LastLoginAt = &now
		rec.UpdatedAt = now

		value, err := sonic.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, value)
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.NewNotFoundError("User", username)
		}
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

func toUserEntity(rec userRecord) *entity.User {
	return &entity.User{
		ID:           rec.ID,
		Username:     rec.Username,
		Email:        rec.Email,
		FullName:     rec.FullName,
		PasswordHash: rec.PasswordHash,
		LastLoginAt:  rec.LastLoginAt,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}
