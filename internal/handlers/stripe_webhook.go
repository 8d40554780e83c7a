package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/tobias915/leadership-companion/internal/capture"
	"github.com/tobias915/leadership-companion/internal/stream"
	"github.com/tobias915/leadership-companion/libs/httpx"
)

// StripeWebhook handles Stripe event notifications (no auth beyond the
// signature; the gateway exposes this path publicly).
//
// Every signature-valid event is acknowledged with 200, whether or not it
// is of interest and whether or not the ledger write succeeds: Stripe
// redelivers anything else, and the card capture already happened on the
// Stripe side.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}
	if h.stripeWebhookSecret == "" {
		httpx.WriteError(w, http.StatusServiceUnavailable, "Webhook not configured")
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Webhook Error: missing Stripe-Signature header")
		return
	}

	// The raw bytes must reach verification untouched; any re-serialization
	// would break the signature.
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1 MiB hard cap
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Webhook Error: failed to read request body")
		return
	}

	// Verification covers the signature and timestamp only. Stripe sends
	// events at the account's API version, not the SDK's pinned one; a
	// version mismatch on a signature-valid event must not 400, or Stripe
	// keeps redelivering it.
	evt, err := webhook.ConstructEventWithOptions(body, sigHeader, h.stripeWebhookSecret, webhook.ConstructEventOptions{
		Tolerance:                h.stripeWebhookTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		h.logger.Error("webhook signature verification failed", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "Webhook Error: invalid signature")
		return
	}

	if intent, ok := capture.Classify(evt); ok {
		rec := intent.Record(h.now())

		ctx, cancel := context.WithTimeout(r.Context(), h.sinkTimeout)
		err := h.sink.Append(ctx, rec)
		cancel()
		if err != nil {
			// Best-effort bookkeeping: the capture succeeded upstream, so a
			// failed row must not turn into a redelivery storm.
			h.logger.Error("capture ledger append failed", "err", err, "event_id", evt.ID, "tier", intent.Tier)
		} else {
			h.logger.Info("founding member capture recorded", "event_id", evt.ID, "tier", intent.Tier)
		}

		h.stream.Publish(r.Context(), evt.ID, stream.EventCaptureConfirmed, intent.Email, map[string]any{
			"stripe_event_id": evt.ID,
			"email":           intent.Email,
			"tier":            intent.Tier,
			"customer_ref":    intent.CustomerRef,
			"setup_ref":       intent.SetupRef,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"received": true})
}
