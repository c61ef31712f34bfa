package deals

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

var (
	seedAdjectives = []string{"Refurbished", "Wireless", "Compact", "Premium", "Ergonomic", "Smart", "Portable", "Vintage"}
	seedProducts   = []string{"Headphones", "Standing Desk", "Coffee Grinder", "Backpack", "Monitor", "Air Fryer", "Keyboard", "Tent"}
)

// RandomDeals builds n plausible deals for local development. The original price
// sits 10-60% above the sale price.
func RandomDeals(n int, rng *rand.Rand) []CreateDealInput {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]CreateDealInput, 0, n)
	for i := 0; i < n; i++ {
		cents := int64(500 + rng.IntN(99500))
		price := decimal.New(cents, -2)
		markup := decimal.NewFromFloat(1.1 + rng.Float64()*0.5)
		original := price.Mul(markup).Round(2)
		description := fmt.Sprintf("Limited time offer #%d", i+1)
		out = append(out, CreateDealInput{
			Title:         fmt.Sprintf("%s %s", seedAdjectives[rng.IntN(len(seedAdjectives))], seedProducts[rng.IntN(len(seedProducts))]),
			Description:   &description,
			Price:         price,
			OriginalPrice: &original,
			Currency:      "USD",
		})
	}
	return out
}
