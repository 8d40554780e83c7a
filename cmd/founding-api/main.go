package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tobias915/leadership-companion/internal/countcache"
	"github.com/tobias915/leadership-companion/internal/handlers"
	"github.com/tobias915/leadership-companion/internal/ledger"
	"github.com/tobias915/leadership-companion/internal/stream"
	"github.com/tobias915/leadership-companion/libs/config"
	"github.com/tobias915/leadership-companion/libs/httpx"
	"github.com/tobias915/leadership-companion/libs/kafkax"
	otelx "github.com/tobias915/leadership-companion/libs/otel"
	"github.com/tobias915/leadership-companion/libs/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "founding-api")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	sink, sheetsSink, err := buildSink(ctx, logger)
	if err != nil {
		logger.Error("ledger sink setup failed", "err", err)
		panic(err)
	}

	fetch, err := buildCountSource(ctx, sheetsSink)
	if err != nil {
		logger.Error("count source setup failed", "err", err)
		panic(err)
	}
	ttl := time.Duration(config.Int("COUNT_CACHE_TTL_SECONDS", 60)) * time.Second
	counts := countcache.New(fetch, ttl, logger)

	pub := stream.NewPublisher(stream.Config{
		Brokers: config.String("KAFKA_BROKERS", ""),
		Topic:   config.String("SIGNUP_TOPIC", "founding.signups"),
	}, logger)
	defer func() { _ = pub.Close() }()

	h := handlers.New(logger, sink, counts, pub, handlers.Config{
		StripeSecretKey:               config.String("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:           config.String("STRIPE_WEBHOOK_SECRET", ""),
		StripeWebhookToleranceSeconds: config.Int("STRIPE_WEBHOOK_TOLERANCE_SECONDS", 300),
		PublicBaseURL:                 config.String("DOMAIN_URL", "https://leadershipcompanion.co"),
		SinkTimeoutSeconds:            config.Int("SINK_TIMEOUT_SECONDS", 10),
	})

	var readyChecks []runtime.ReadyCheck
	if brokers := config.String("KAFKA_BROKERS", ""); strings.TrimSpace(brokers) != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	var rateLimitMW httpx.Middleware
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})

		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		rateLimitMW = rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
	} else {
		rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
		rateLimitMW = rl.Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	}

	mux := runtime.NewBaseMuxWithReady(readyChecks...)
	mux.HandleFunc("/api/count", h.Count)
	mux.HandleFunc("/api/create-checkout", h.CreateCheckout)
	mux.HandleFunc("/api/submit", h.Submit)
	mux.HandleFunc("/api/stripe-webhook", h.StripeWebhook)

	bodyLimit := int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))
	requestTimeout := time.Duration(config.Int("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second

	handler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			// The landing page is static and served from a CDN; the API is
			// origin-agnostic by default.
			AllowedOrigins: parseList(config.String("CORS_ALLOWED_ORIGINS", "*")),
			AllowedMethods: parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS")),
			AllowedHeaders: parseList(config.String("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id")),
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(bodyLimit),
		httpx.WithTimeout(requestTimeout),
		rateLimitMW,
	)
	handler = otelhttp.NewHandler(handler, service)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// buildSink selects the configured ledger backend. The sheets sink is also
// returned separately because the count cache can reuse its row counter.
func buildSink(ctx context.Context, logger *slog.Logger) (ledger.Sink, *ledger.SheetsSink, error) {
	switch backend := config.String("LEDGER_BACKEND", "sheets"); backend {
	case "form":
		formID, err := config.RequiredString("GOOGLE_FORM_ID")
		if err != nil {
			return nil, nil, err
		}
		sink, err := ledger.NewFormSink(ledger.FormConfig{
			FormID: formID,
			Fields: ledger.FormFields{
				Email:       config.String("EMAIL_FIELD_ID", ""),
				Tier:        config.String("TIER_FIELD_ID", ""),
				Source:      config.String("SOURCE_FIELD_ID", ""),
				UTMSource:   config.String("UTM_SOURCE_FIELD_ID", ""),
				UTMMedium:   config.String("UTM_MEDIUM_FIELD_ID", ""),
				UTMCampaign: config.String("UTM_CAMPAIGN_FIELD_ID", ""),
				UTMContent:  config.String("UTM_CONTENT_FIELD_ID", ""),
				PageURL:     config.String("PAGE_URL_FIELD_ID", ""),
			},
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("ledger backend: google form")
		return sink, nil, nil
	case "sheets":
		sink, err := newSheetsSink(ctx)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("ledger backend: google sheets")
		return sink, sink, nil
	default:
		return nil, nil, fmt.Errorf("unknown LEDGER_BACKEND %q", backend)
	}
}

func buildCountSource(ctx context.Context, sheetsSink *ledger.SheetsSink) (countcache.FetchFunc, error) {
	switch backend := config.String("COUNT_BACKEND", "sheets"); backend {
	case "http":
		endpoint, err := config.RequiredString("COUNT_ENDPOINT_URL")
		if err != nil {
			return nil, err
		}
		return countcache.HTTPSource(endpoint, nil), nil
	case "sheets":
		if sheetsSink == nil {
			// Ledger runs on the form backend; counting still needs a sheet.
			s, err := newSheetsSink(ctx)
			if err != nil {
				return nil, err
			}
			sheetsSink = s
		}
		return countcache.FromCounter(sheetsSink), nil
	default:
		return nil, fmt.Errorf("unknown COUNT_BACKEND %q", backend)
	}
}

func newSheetsSink(ctx context.Context) (*ledger.SheetsSink, error) {
	clientEmail, err := config.RequiredString("GOOGLE_CLIENT_EMAIL")
	if err != nil {
		return nil, err
	}
	sheetID, err := config.RequiredString("GOOGLE_SHEET_ID")
	if err != nil {
		return nil, err
	}
	return ledger.NewSheetsSink(ctx, ledger.SheetsConfig{
		ClientEmail:   clientEmail,
		PrivateKey:    config.MultilineSecret("GOOGLE_PRIVATE_KEY"),
		SpreadsheetID: sheetID,
	})
}

func parseList(raw string) []string {
	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
