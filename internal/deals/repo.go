package deals

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	"github.com/angelmondragon/dealtracker-backend/pkg/pagination"
)

// Repository encapsulates deal persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a deals repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns deals newest first. It fetches limit+1 rows so callers can detect a next page.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Deal, error) {
	var rows []models.Deal
	err := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Scopes(pagination.Keyset(params.Cursor)).
		Limit(pagination.LimitWithBuffer(params.Limit, DefaultListLimit)).
		Find(&rows).Error
	return rows, err
}

// FindByID loads a deal by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var deal models.Deal
	if err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

// Create inserts a deal.
func (r *Repository) Create(ctx context.Context, deal *models.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

// UpdatePrice sets the live price. Wishlist baselines are left for the alert scanner to compare against.
func (r *Repository) UpdatePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	return r.updateColumn(ctx, id, "price", price)
}

// SetExpired flags the deal expired or live again.
func (r *Repository) SetExpired(ctx context.Context, id uuid.UUID, expired bool) error {
	return r.updateColumn(ctx, id, "is_expired", expired)
}

// SetDisabled flags the deal disabled or enabled again.
func (r *Repository) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	return r.updateColumn(ctx, id, "is_disabled", disabled)
}

func (r *Repository) updateColumn(ctx context.Context, id uuid.UUID, column string, value any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Deal{}).
		Where("id = ?", id).
		Updates(map[string]any{column: value})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
