package ledger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FormSink posts url-encoded ledger fields to a public Google Forms
// formResponse endpoint. No authentication; the form accepts any field
// entry ids supplied by configuration.
type FormSink struct {
	client  *http.Client
	postURL string
	fields  FormFields
}

// FormFields maps record fields to the form's entry ids. Empty ids are
// skipped rather than posted.
type FormFields struct {
	Email       string
	Tier        string
	Source      string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMContent  string
	PageURL     string
}

type FormConfig struct {
	FormID  string
	Fields  FormFields
	Client  *http.Client // optional; defaults to a 10s-timeout client
	BaseURL string       // optional override for tests
}

func NewFormSink(cfg FormConfig) (*FormSink, error) {
	if cfg.FormID == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("form sink requires a form id")
	}
	postURL := cfg.BaseURL
	if postURL == "" {
		postURL = fmt.Sprintf("https://docs.google.com/forms/d/e/%s/formResponse", cfg.FormID)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FormSink{client: client, postURL: postURL, fields: cfg.Fields}, nil
}

func (s *FormSink) Append(ctx context.Context, rec Record) error {
	form := url.Values{}
	set := func(field, value string) {
		if field != "" {
			form.Set(field, value)
		}
	}
	set(s.fields.Email, rec.Email)
	set(s.fields.Tier, rec.Tier)
	set(s.fields.Source, rec.Source)
	set(s.fields.UTMSource, rec.UTMSource)
	set(s.fields.UTMMedium, rec.UTMMedium)
	set(s.fields.UTMCampaign, rec.UTMCampaign)
	set(s.fields.UTMContent, rec.UTMContent)
	set(s.fields.PageURL, rec.PageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.postURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("form request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("form post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("form post: unexpected status %d", resp.StatusCode)
	}
	return nil
}
