package wishlist

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
)

const itemColumns = `wi.id, wi.deal_id, wi.alert_enabled, wi.saved_price, wi.created_at,
	d.title, d.description, d.price, d.original_price, d.currency, d.image_url,
	d.is_expired, d.is_disabled, d.created_at AS deal_created_at`

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForUser returns the user's items joined with their deals, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]itemRecord, error) {
	var records []itemRecord
	err := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select(itemColumns).
		Joins("JOIN deals d ON d.id = wi.deal_id").
		Where("wi.user_id = ?", userID).
		Order("wi.created_at DESC").
		Order("wi.id DESC").
		Scan(&records).Error
	return records, err
}

// FindItem loads one joined row by user and deal. It returns gorm.ErrRecordNotFound when absent.
func (r *Repository) FindItem(ctx context.Context, userID, dealID uuid.UUID) (*itemRecord, error) {
	var records []itemRecord
	err := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select(itemColumns).
		Joins("JOIN deals d ON d.id = wi.deal_id").
		Where("wi.user_id = ? AND wi.deal_id = ?", userID, dealID).
		Limit(1).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &records[0], nil
}

// FindByUserAndDeal loads the bare wishlist row.
func (r *Repository) FindByUserAndDeal(ctx context.Context, userID, dealID uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND deal_id = ?", userID, dealID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a wishlist row.
func (r *Repository) Create(ctx context.Context, item *models.WishlistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateAlert toggles alerts on one row. A non-nil seed fills saved_price only when it is still NULL.
func (r *Repository) UpdateAlert(ctx context.Context, id uuid.UUID, enabled bool, seed *decimal.Decimal) error {
	updates := map[string]any{"alert_enabled": enabled}
	if seed != nil {
		updates["saved_price"] = gorm.Expr("COALESCE(saved_price, ?)", *seed)
	}
	return r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the user's row for a deal and reports whether one existed.
func (r *Repository) Delete(ctx context.Context, userID, dealID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND deal_id = ?", userID, dealID).
		Delete(&models.WishlistItem{})
	return res.RowsAffected > 0, res.Error
}
