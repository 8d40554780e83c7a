// Package capture decides whether a verified Stripe event is a completed
// card capture worth recording, and normalizes it into a ledger record.
package capture

import (
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/tobias915/leadership-companion/internal/ledger"
	"github.com/tobias915/leadership-companion/internal/tier"
)

// Intent carries the fields extracted from a qualifying event. Constructed
// only by Classify, and only from signature-verified events.
type Intent struct {
	EventID     string
	Email       string
	Tier        string // original tier + confirmation suffix
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMContent  string
	CustomerRef string
	SetupRef    string
}

// Classify inspects a verified event and extracts a capture intent.
// Only checkout.session.completed events in setup mode qualify; everything
// else is ignored without error (ok == false).
func Classify(evt stripe.Event) (Intent, bool) {
	if evt.Type != "checkout.session.completed" || evt.Data == nil {
		return Intent{}, false
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		return Intent{}, false
	}
	// Setup mode is the deferred-capture flow; any other mode would mean a
	// live charge, which this pipeline never represents.
	if session.Mode != stripe.CheckoutSessionModeSetup {
		return Intent{}, false
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}
	if email == "" {
		email = "unknown"
	}

	tierID := session.Metadata["tier"]
	if tierID == "" {
		tierID = "unknown"
	}

	customerRef := ""
	if session.Customer != nil {
		customerRef = session.Customer.ID
	}
	setupRef := ""
	if session.SetupIntent != nil {
		setupRef = session.SetupIntent.ID
	}

	return Intent{
		EventID:     evt.ID,
		Email:       email,
		Tier:        tierID + tier.ConfirmedSuffix,
		UTMSource:   session.Metadata["utm_source"],
		UTMMedium:   session.Metadata["utm_medium"],
		UTMCampaign: session.Metadata["utm_campaign"],
		UTMContent:  session.Metadata["utm_content"],
		CustomerRef: customerRef,
		SetupRef:    setupRef,
	}, true
}

// Record builds the append-only ledger row for a capture intent.
func (in Intent) Record(now time.Time) ledger.Record {
	return ledger.Record{
		Timestamp:   now,
		Email:       in.Email,
		Tier:        in.Tier,
		UTMSource:   in.UTMSource,
		UTMMedium:   in.UTMMedium,
		UTMCampaign: in.UTMCampaign,
		UTMContent:  in.UTMContent,
		CustomerRef: in.CustomerRef,
		SetupRef:    in.SetupRef,
		Captured:    true,
		Source:      "stripe_webhook",
		PageURL:     "setup_intent:" + in.SetupRef,
	}
}
