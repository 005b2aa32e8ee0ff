package auth

import (
	"time"

	"github.com/riderschoice/riderschoice-backend/internal/users"
	"github.com/riderschoice/riderschoice-backend/pkg/types"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest contains the payload required to open an account.
type RegisterRequest struct {
	Name     string         `json:"name" validate:"required"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6"`
	Address  *types.Address `json:"address,omitempty"`
	Phone    *string        `json:"phone,omitempty"`
}

// AuthResponse carries the bearer token issued on register or login.
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *users.UserDTO `json:"user"`
}
