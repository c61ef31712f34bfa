package auth

import (
	"time"

	"github.com/angelmondragon/dealtracker-backend/internal/users"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,min=3,max=50"`
	Username             string `json:"username" validate:"required,min=3,max=20,username"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,max=20"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is a freshly minted access token plus the profile it belongs to.
type Session struct {
	AccessToken string         `json:"-"`
	ExpiresAt   time.Time      `json:"-"`
	User        *users.UserDTO `json:"user"`
}
