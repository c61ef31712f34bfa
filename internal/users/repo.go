package users

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
)

// Repository persists users. Lookups return gorm.ErrRecordNotFound for misses.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Availability reports which registration identifiers already belong to someone.
type Availability struct {
	EmailTaken    bool
	UsernameTaken bool
}

func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail matches on the normalized address.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", NormalizeEmail(email))
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// Availability checks both identifiers in one query. Usernames compare exactly.
func (r *Repository) Availability(ctx context.Context, email, username string) (Availability, error) {
	email = NormalizeEmail(email)
	username = strings.TrimSpace(username)

	var rows []struct {
		Email    string
		Username string
	}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("email", "username").
		Where("email = ? OR username = ?", email, username).
		Limit(2).
		Find(&rows).Error
	if err != nil {
		return Availability{}, err
	}
	var out Availability
	for _, row := range rows {
		out.EmailTaken = out.EmailTaken || row.Email == email
		out.UsernameTaken = out.UsernameTaken || row.Username == username
	}
	return out, nil
}

// SetSubscriber returns gorm.ErrRecordNotFound for unknown ids.
func (r *Repository) SetSubscriber(ctx context.Context, id uuid.UUID, subscriber bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_subscriber", subscriber)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
