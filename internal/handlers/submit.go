package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tobias915/leadership-companion/internal/ledger"
	"github.com/tobias915/leadership-companion/internal/stream"
	"github.com/tobias915/leadership-companion/internal/tier"
	"github.com/tobias915/leadership-companion/libs/httpx"
)

type submitRequest struct {
	Email   string   `json:"email"`
	Tier    string   `json:"tier"`
	UTMData *UTMData `json:"utmData,omitempty"`
	PageURL string   `json:"pageUrl,omitempty"`
}

// Submit records a waitlist/signup form submission in the ledger. Unlike the
// webhook path, a sink failure here fails the request: the user's signup
// genuinely did not get recorded anywhere.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Tier = strings.TrimSpace(req.Tier)

	if _, err := mail.ParseAddress(req.Email); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid email")
		return
	}
	if !tier.ValidForSubmit(req.Tier) {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid tier")
		return
	}

	utm := UTMData{}
	if req.UTMData != nil {
		utm = *req.UTMData
	}
	rec := ledger.Record{
		Timestamp:   h.now(),
		Email:       req.Email,
		Tier:        req.Tier,
		UTMSource:   utm.Source,
		UTMMedium:   utm.Medium,
		UTMCampaign: utm.Campaign,
		UTMContent:  utm.Content,
		Source:      "landing_page",
		PageURL:     strings.TrimSpace(req.PageURL),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.sinkTimeout)
	defer cancel()
	if err := h.sink.Append(ctx, rec); err != nil {
		h.logger.Error("signup ledger append failed", "err", err, "tier", req.Tier)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to record signup. Please try again.")
		return
	}

	h.stream.Publish(r.Context(), uuid.NewString(), stream.EventSignupRecorded, req.Email, map[string]any{
		"email":        req.Email,
		"tier":         req.Tier,
		"utm_source":   utm.Source,
		"utm_medium":   utm.Medium,
		"utm_campaign": utm.Campaign,
		"utm_content":  utm.Content,
		"page_url":     rec.PageURL,
		"timestamp":    rec.Timestamp.UTC().Format(time.RFC3339),
	})

	h.logger.Info("signup recorded", "tier", req.Tier)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "You're on the list. We'll be in touch before launch.",
	})
}
