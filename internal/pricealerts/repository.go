package pricealerts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealtracker-backend/internal/notifications"
	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	"github.com/angelmondragon/dealtracker-backend/pkg/enums"
)

// Repository reads candidates and applies a drop's two writes.
type Repository struct {
	db            *gorm.DB
	notifications *notifications.Repository
}

// NewRepository binds the scanner storage to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, notifications: notifications.NewRepository(db)}
}

type candidateRecord struct {
	WishlistItemID uuid.UUID
	UserID         uuid.UUID
	DealID         uuid.UUID
	DealTitle      string
	SavedPrice     decimal.NullDecimal
	CurrentPrice   decimal.Decimal
}

// FetchAlertCandidates returns every alert-enabled entry with its deal's title and live price.
func (r *Repository) FetchAlertCandidates(ctx context.Context) ([]Candidate, error) {
	var records []candidateRecord
	err := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select(`wi.id AS wishlist_item_id, wi.user_id, wi.deal_id,
			d.title AS deal_title, wi.saved_price, d.price AS current_price`).
		Joins("JOIN deals d ON d.id = wi.deal_id").
		Where("wi.alert_enabled = ?", true).
		Order("wi.id").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(records))
	for _, rec := range records {
		out = append(out, Candidate(rec))
	}
	return out, nil
}

// UpdateSavedPrice rebases the entry from expected to next. It reports false when the
// row no longer matches: alerts turned off, entry deleted, or the baseline moved.
func (r *Repository) UpdateSavedPrice(ctx context.Context, tx *gorm.DB, wishlistItemID uuid.UUID, expected, next decimal.Decimal) (bool, error) {
	if tx == nil {
		return false, errors.New("transaction required")
	}
	res := tx.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("id = ? AND alert_enabled = ? AND saved_price = ?", wishlistItemID, true, expected).
		Update("saved_price", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreateNotification stores an unread price drop notification for the user.
func (r *Repository) CreateNotification(ctx context.Context, tx *gorm.DB, userID uuid.UUID, title, message string) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return r.notifications.WithTx(tx).Create(ctx, &models.Notification{
		UserID:  userID,
		Type:    enums.NotificationTypePriceDrop,
		Title:   title,
		Message: message,
	})
}
