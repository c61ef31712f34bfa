package enums

// DealStatus is the availability of a deal as shown on a wishlist row.
type DealStatus string

const (
	DealStatusAvailable DealStatus = "AVAILABLE"
	DealStatusExpired   DealStatus = "EXPIRED"
	DealStatusDisabled  DealStatus = "DISABLED"
)

// DealStatusFor derives the status from the deal flags. Disabled takes precedence.
func DealStatusFor(isExpired, isDisabled bool) DealStatus {
	switch {
	case isDisabled:
		return DealStatusDisabled
	case isExpired:
		return DealStatusExpired
	default:
		return DealStatusAvailable
	}
}
