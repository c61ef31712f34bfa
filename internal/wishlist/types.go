package wishlist

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealtracker-backend/internal/deals"
	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	"github.com/angelmondragon/dealtracker-backend/pkg/enums"
)

// AddItemRequest is the payload for saving a deal.
type AddItemRequest struct {
	DealID       uuid.UUID `json:"deal_id" validate:"required"`
	AlertEnabled *bool     `json:"alert_enabled,omitempty"`
}

// AddOutcome tells the controller which response to send.
type AddOutcome string

const (
	OutcomeAdded          AddOutcome = "added"
	OutcomeAlertUpdated   AddOutcome = "alert_updated"
	OutcomeAlreadyPresent AddOutcome = "already_present"
)

// Message is the human-readable result returned to clients.
func (o AddOutcome) Message() string {
	switch o {
	case OutcomeAdded:
		return "added to wishlist"
	case OutcomeAlertUpdated:
		return "wishlist alert setting updated"
	default:
		return "item already in wishlist"
	}
}

// WishlistItemDTO is one wishlist row joined with its deal.
type WishlistItemDTO struct {
	ID           uuid.UUID        `json:"id"`
	DealID       uuid.UUID        `json:"deal_id"`
	AlertEnabled bool             `json:"alert_enabled"`
	SavedPrice   *string          `json:"saved_price"`
	BestPrice    string           `json:"best_price"`
	Status       enums.DealStatus `json:"status"`
	Deal         deals.DealDTO    `json:"deal"`
	CreatedAt    time.Time        `json:"created_at"`
}

// AddResult carries the outcome and the row as it now stands.
type AddResult struct {
	Outcome AddOutcome      `json:"-"`
	Item    WishlistItemDTO `json:"item"`
}

type itemRecord struct {
	ID            uuid.UUID
	DealID        uuid.UUID
	AlertEnabled  bool
	SavedPrice    decimal.NullDecimal
	CreatedAt     time.Time
	Title         string
	Description   *string
	Price         decimal.Decimal
	OriginalPrice decimal.NullDecimal
	Currency      string
	ImageURL      *string
	IsExpired     bool
	IsDisabled    bool
	DealCreatedAt time.Time
}

func (r itemRecord) toDTO() WishlistItemDTO {
	deal := deals.FromModel(r.dealModel())
	dto := WishlistItemDTO{
		ID:           r.ID,
		DealID:       r.DealID,
		AlertEnabled: r.AlertEnabled,
		BestPrice:    deal.Price,
		Status:       deal.Status,
		Deal:         deal,
		CreatedAt:    r.CreatedAt,
	}
	if r.SavedPrice.Valid {
		saved := r.SavedPrice.Decimal.StringFixed(2)
		dto.SavedPrice = &saved
	}
	return dto
}

func (r itemRecord) dealModel() models.Deal {
	return models.Deal{
		ID:            r.DealID,
		Title:         r.Title,
		Description:   r.Description,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Currency:      r.Currency,
		ImageURL:      r.ImageURL,
		IsExpired:     r.IsExpired,
		IsDisabled:    r.IsDisabled,
		CreatedAt:     r.DealCreatedAt,
	}
}
