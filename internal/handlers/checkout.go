package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/tobias915/leadership-companion/internal/tier"
	"github.com/tobias915/leadership-companion/libs/httpx"
)

type checkoutRequest struct {
	Email   string   `json:"email"`
	Tier    string   `json:"tier"`
	UTMData *UTMData `json:"utmData,omitempty"`
}

// CreateCheckout creates a Stripe Checkout Session in setup mode: the card
// is captured but not charged until launch.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Tier = strings.TrimSpace(req.Tier)

	if req.Email == "" || req.Tier == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email and tier are required")
		return
	}

	utm := UTMData{}
	if req.UTMData != nil {
		utm = *req.UTMData
	}

	params, _, err := h.checkoutParams(req.Email, req.Tier, utm)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid tier for checkout")
		return
	}

	sess, err := h.createSession(params)
	if err != nil {
		h.logger.Error("stripe checkout session create failed", "err", err, "tier", req.Tier)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to create checkout session")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"url": sess.URL})
}

// checkoutParams builds the setup-mode session parameters for a purchasable
// tier. The tier descriptor's amount is display-only and never charged.
func (h *Handler) checkoutParams(email, tierID string, utm UTMData) (*stripe.CheckoutSessionParams, tier.Descriptor, error) {
	desc, ok := tier.ForCheckout(tierID)
	if !ok {
		return nil, tier.Descriptor{}, errUnknownTier
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSetup)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(email),
		Metadata: map[string]string{
			"tier":             tierID,
			"utm_source":       utm.Source,
			"utm_medium":       utm.Medium,
			"utm_campaign":     utm.Campaign,
			"utm_content":      utm.Content,
			"signup_timestamp": h.now().UTC().Format(time.RFC3339),
		},
		CustomText: &stripe.CheckoutSessionCustomTextParams{
			Submit: &stripe.CheckoutSessionCustomTextSubmitParams{
				Message: stripe.String("You will NOT be charged today. Your card is saved securely and will only be charged when Leadership Companion launches. " + desc.PriceLine),
			},
		},
		SuccessURL: stripe.String(h.publicBaseURL + "/success.html?tier=" + tierID + "&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(h.publicBaseURL + "/#founding-members"),
	}
	return params, desc, nil
}

var errUnknownTier = errors.New("unknown checkout tier")
