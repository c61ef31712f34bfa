package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WishlistItem links a user to a saved deal. SavedPrice is the reference price
// for drop detection; NULL means no baseline has been recorded yet.
type WishlistItem struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex:wishlist_items_user_deal_key"`
	DealID       uuid.UUID           `gorm:"column:deal_id;type:uuid;not null;index:idx_wishlist_items_alert_enabled,where:alert_enabled;uniqueIndex:wishlist_items_user_deal_key"`
	AlertEnabled bool                `gorm:"column:alert_enabled;not null;default:false"`
	SavedPrice   decimal.NullDecimal `gorm:"column:saved_price;type:numeric(10,2)"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (w *WishlistItem) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
