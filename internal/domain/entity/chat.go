package entity

import "time"

// Chat is a named conversation owned by exactly one user. Identity and
// ownership are immutable after creation.
type Chat struct {
	ID        string
	Name      string
	Owner     string // username of the owning user
	CreatedAt time.Time
	UpdatedAt time.Time
}
