package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deal is a listed offer. Price is the live price the alert scanner compares against.
type Deal struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string              `gorm:"column:title;not null"`
	Description   *string             `gorm:"column:description"`
	Price         decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	OriginalPrice decimal.NullDecimal `gorm:"column:original_price;type:numeric(10,2)"`
	Currency      string              `gorm:"column:currency;not null;default:USD"`
	ImageURL      *string             `gorm:"column:image_url"`
	IsExpired     bool                `gorm:"column:is_expired;not null;default:false"`
	IsDisabled    bool                `gorm:"column:is_disabled;not null;default:false"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (d *Deal) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Currency == "" {
		d.Currency = "USD"
	}
	return nil
}
