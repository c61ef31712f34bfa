package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsSubscriber bool      `json:"is_subscriber"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Username     string
	Email        string
	PasswordHash string
	IsSubscriber bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		IsSubscriber: u.IsSubscriber,
		CreatedAt:    u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:         strings.TrimSpace(c.Name),
		Username:     strings.TrimSpace(c.Username),
		Email:        NormalizeEmail(c.Email),
		PasswordHash: c.PasswordHash,
		IsSubscriber: c.IsSubscriber,
	}
}

// NormalizeEmail is the canonical form stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
