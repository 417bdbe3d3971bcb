package entity

import "time"

// User is an authenticated principal (domain layer, no serialization tags).
// The username doubles as the identity that owns chats.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
