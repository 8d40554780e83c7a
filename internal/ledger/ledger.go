// Package ledger appends signup and capture records to the external record
// store. The store is append-only and human-reconciled; rows are never
// updated or deleted by this service.
package ledger

import (
	"context"
	"time"
)

// Record is one normalized ledger row. Optional fields stay empty strings
// rather than failing the append.
type Record struct {
	Timestamp   time.Time
	Email       string
	Tier        string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMContent  string
	CustomerRef string // Stripe customer id, when known
	SetupRef    string // Stripe setup intent id, when known
	Captured    bool   // true only for confirmed setup-mode captures
	Source      string // "landing_page" or "stripe_webhook"
	PageURL     string // submitting page, or "setup_intent:<id>" on the webhook path
}

// Sink is the uniform contract both ledger backends implement.
//
// Callers on the webhook path treat Append as best-effort: an error is
// logged, never propagated to the payment processor.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

const (
	capturedYes = "YES — card captured"
	capturedNo  = "NO"
)

// Row returns the fixed spreadsheet column layout:
// timestamp, email, tier, utm_source, utm_medium, utm_campaign, utm_content,
// customer ref, setup-intent ref, captured flag.
func (r Record) Row() []any {
	captured := capturedNo
	if r.Captured {
		captured = capturedYes
	}
	return []any{
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Email,
		r.Tier,
		r.UTMSource,
		r.UTMMedium,
		r.UTMCampaign,
		r.UTMContent,
		r.CustomerRef,
		r.SetupRef,
		captured,
	}
}
