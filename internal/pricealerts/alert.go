// Package pricealerts holds the rules and storage used by the recurring price
// drop scan over alert-enabled wishlist entries.
package pricealerts

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertTitle is the title of every price drop notification.
const AlertTitle = "Price Drop Alert!"

// Candidate is one alert-enabled wishlist entry joined with its deal.
type Candidate struct {
	WishlistItemID uuid.UUID
	UserID         uuid.UUID
	DealID         uuid.UUID
	DealTitle      string
	SavedPrice     decimal.NullDecimal
	CurrentPrice   decimal.Decimal
}

// Decision is the outcome of comparing a candidate's prices.
type Decision int

const (
	// DecisionSkipNoBaseline means no saved price was recorded yet.
	DecisionSkipNoBaseline Decision = iota
	// DecisionNoDrop means the price is equal or higher.
	DecisionNoDrop
	// DecisionDrop means the current price is strictly below the saved one.
	DecisionDrop
)

func (d Decision) String() string {
	switch d {
	case DecisionSkipNoBaseline:
		return "skip_no_baseline"
	case DecisionNoDrop:
		return "no_drop"
	case DecisionDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// Evaluate compares prices exactly as decimals.
func Evaluate(c Candidate) Decision {
	if !c.SavedPrice.Valid {
		return DecisionSkipNoBaseline
	}
	if c.CurrentPrice.LessThan(c.SavedPrice.Decimal) {
		return DecisionDrop
	}
	return DecisionNoDrop
}

// AlertMessage renders the notification body for a drop from saved to current.
func AlertMessage(title string, current, saved decimal.Decimal) string {
	return fmt.Sprintf("The price of \"%s\" has dropped to $%s! (You saved it at $%s)",
		title, current.StringFixed(2), saved.StringFixed(2))
}
