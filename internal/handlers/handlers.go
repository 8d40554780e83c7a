// Package handlers implements the landing-page HTTP surface: signup count,
// checkout creation, waitlist submissions and the Stripe capture webhook.
package handlers

import (
	"log/slog"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/tobias915/leadership-companion/internal/countcache"
	"github.com/tobias915/leadership-companion/internal/ledger"
	"github.com/tobias915/leadership-companion/internal/stream"
)

type Handler struct {
	logger *slog.Logger
	sink   ledger.Sink
	counts *countcache.Cache
	stream *stream.Publisher

	stripeWebhookSecret    string
	stripeWebhookTolerance time.Duration
	publicBaseURL          string
	sinkTimeout            time.Duration

	// createSession is checkoutsession.New in production; tests substitute it.
	createSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	now           func() time.Time
}

type Config struct {
	StripeSecretKey               string
	StripeWebhookSecret           string
	StripeWebhookToleranceSeconds int
	PublicBaseURL                 string
	SinkTimeoutSeconds            int
}

// UTMData carries the campaign-attribution fields the landing page forwards.
// Every field is optional and defaults to empty.
type UTMData struct {
	Source   string `json:"utm_source"`
	Medium   string `json:"utm_medium"`
	Campaign string `json:"utm_campaign"`
	Content  string `json:"utm_content"`
}

func New(logger *slog.Logger, sink ledger.Sink, counts *countcache.Cache, pub *stream.Publisher, cfg Config) *Handler {
	tolSeconds := cfg.StripeWebhookToleranceSeconds
	if tolSeconds <= 0 {
		tolSeconds = 300
	}
	sinkSeconds := cfg.SinkTimeoutSeconds
	if sinkSeconds <= 0 {
		sinkSeconds = 10
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if baseURL == "" {
		baseURL = "https://leadershipcompanion.co"
	}

	stripe.Key = strings.TrimSpace(cfg.StripeSecretKey)

	return &Handler{
		logger:                 logger,
		sink:                   sink,
		counts:                 counts,
		stream:                 pub,
		stripeWebhookSecret:    strings.TrimSpace(cfg.StripeWebhookSecret),
		stripeWebhookTolerance: time.Duration(tolSeconds) * time.Second,
		publicBaseURL:          baseURL,
		sinkTimeout:            time.Duration(sinkSeconds) * time.Second,
		createSession:          checkoutsession.New,
		now:                    time.Now,
	}
}
