package deals

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/dealtracker-backend/pkg/db/models"
	"github.com/angelmondragon/dealtracker-backend/pkg/enums"
)

// DefaultListLimit is the page size for the public deal feed.
const DefaultListLimit = 50

// DealDTO is the public projection of a deal. Prices are rendered with two decimals.
type DealDTO struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Description   *string          `json:"description,omitempty"`
	Price         string           `json:"price"`
	OriginalPrice *string          `json:"original_price,omitempty"`
	Currency      string           `json:"currency"`
	ImageURL      *string          `json:"image_url,omitempty"`
	IsExpired     bool             `json:"is_expired"`
	IsDisabled    bool             `json:"is_disabled"`
	Status        enums.DealStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
}

// DealsPageDTO is one page of the deal feed.
type DealsPageDTO struct {
	Deals      []DealDTO `json:"deals"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// CreateDealInput holds the fields accepted when listing a new deal.
type CreateDealInput struct {
	Title         string
	Description   *string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Currency      string
	ImageURL      *string
}

func (in CreateDealInput) toModel() *models.Deal {
	deal := &models.Deal{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price.Round(2),
		Currency:    strings.ToUpper(strings.TrimSpace(in.Currency)),
		ImageURL:    in.ImageURL,
	}
	if in.OriginalPrice != nil {
		deal.OriginalPrice = decimal.NewNullDecimal(in.OriginalPrice.Round(2))
	}
	return deal
}

// FromModel maps a deal row to its public shape.
func FromModel(d models.Deal) DealDTO {
	dto := DealDTO{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price.StringFixed(2),
		Currency:    d.Currency,
		ImageURL:    d.ImageURL,
		IsExpired:   d.IsExpired,
		IsDisabled:  d.IsDisabled,
		Status:      enums.DealStatusFor(d.IsExpired, d.IsDisabled),
		CreatedAt:   d.CreatedAt,
	}
	if d.OriginalPrice.Valid {
		original := d.OriginalPrice.Decimal.StringFixed(2)
		dto.OriginalPrice = &original
	}
	return dto
}
