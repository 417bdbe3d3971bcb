package dto

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

// validate is shared by all request DTOs.
var validate = validator.New()

// RegisterRequest is the HTTP registration payload.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=6,max=72"` // bcrypt caps at 72 bytes
}

// Validate checks the payload against its tags.
func (r *RegisterRequest) Validate() error {
	return validate.Struct(r)
}

// LoginRequest is the HTTP login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the HTTP login response.
type LoginResponse struct {
	Token  string        `json:"token"`
	Expire string        `json:"expire"`
	User   *UserResponse `json:"user"`
}

// UserResponse is the HTTP representation of a user.
type UserResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ToUserResponse converts entity.User to UserResponse.
func ToUserResponse(user *entity.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}

	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &lastLogin
	}

	return resp
}
