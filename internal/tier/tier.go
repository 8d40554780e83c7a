// Package tier holds the static founding-member tier catalog. Amounts are
// display-only AUD cents shown on the checkout page; nothing here is ever
// used to charge a card.
package tier

// Descriptor describes one purchasable tier on the checkout page.
type Descriptor struct {
	Name        string
	Description string
	Amount      int64 // AUD cents, display only
	PriceLine   string
}

var checkout = map[string]Descriptor{
	"starter": {
		Name:        "Founding Starter — $29 AUD/month (locked for life)",
		Description: "Your card will be saved securely. You will NOT be charged until we launch. Your founding rate of $29/month is locked in for life.",
		Amount:      2900,
		PriceLine:   "$29 AUD/month locked for life.",
	},
	"founding_pro": {
		Name:        "Founding Pro — $49 AUD/month (first year, then $59)",
		Description: "Your card will be saved securely. You will NOT be charged until we launch. Your founding rate of $49/month is locked in for the first year.",
		Amount:      4900,
		PriceLine:   "$49 AUD/month for your first year (then $59).",
	},
}

var submit = map[string]struct{}{
	"waitlist":             {},
	"starter":              {},
	"founding_pro":         {},
	"starter_PENDING":      {},
	"founding_pro_PENDING": {},
}

// ForCheckout returns the descriptor for a purchasable tier.
func ForCheckout(id string) (Descriptor, bool) {
	d, ok := checkout[id]
	return d, ok
}

// ValidForSubmit reports whether id is an accepted waitlist/signup tier.
func ValidForSubmit(id string) bool {
	_, ok := submit[id]
	return ok
}

// ConfirmedSuffix marks ledger rows written by the webhook path, so confirmed
// card captures are distinguishable from pending signups in the same sheet.
const ConfirmedSuffix = "_CONFIRMED"
